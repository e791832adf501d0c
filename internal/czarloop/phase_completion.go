package czarloop

import (
	"context"
	"fmt"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// checkPhaseCompletion implements spec.md §4.2 step 7 and §4.4: on the
// false->true transition of the phase completion predicate, emit
// PHASE_COMPLETE exactly once, archive via PhaseController, then launch the
// next phase if one is declared in config.phases.
func (l *Loop) checkPhaseCompletion(ctx context.Context, snap *workerstatus.Snapshot) error {
	if !workerstatus.PhaseComplete(snap, workerstatus.CompletionMode(l.Config.EffectivePhaseCompletionMode())) {
		return nil
	}

	statePath := l.Layout.PhaseStatePath()
	state, err := phase.LoadState(statePath)
	if err != nil {
		return fmt.Errorf("load phase state: %w", err)
	}

	phaseN := l.Config.Project.Phase
	now := l.now()
	if !state.MarkComplete(phaseN, now) {
		return nil // already handled this phase's completion
	}
	if err := phase.SaveState(statePath, state); err != nil {
		return fmt.Errorf("save phase state: %w", err)
	}

	l.Events.Emit(eventlog.SourceCzar, eventlog.KindPhaseComplete, eventlog.SeveritySuccess,
		map[string]string{"phase": fmt.Sprintf("%d", phaseN)})

	if err := l.Phase.Archive(ctx, l.Config, snap, phaseN, l.Config.Project.Version); err != nil {
		return fmt.Errorf("archive phase %d: %w", phaseN, err)
	}

	blueprint, ok := l.Config.Phases[fmt.Sprintf("phase_%d", phaseN+1)]
	if !ok {
		return nil
	}
	if err := l.launchNextPhase(ctx, phaseN+1, blueprint, state); err != nil {
		return fmt.Errorf("launch phase %d: %w", phaseN+1, err)
	}
	return nil
}

// launchNextPhase rewrites config.json from a declared blueprint, ensures
// branches/worktrees for the new workers, and starts their sessions. It
// writes no worker prompt files into workers/. This is CzarLoop's own responsibility (not
// LaunchController's, which only ever boots the first phase of a run), per
// spec.md §4.2 step 7's "optionally launch next phase if declared".
func (l *Loop) launchNextPhase(ctx context.Context, nextPhase int, blueprint configstore.PhaseBlueprint, state *phase.State) error {
	l.Config.Project.Phase = nextPhase
	l.Config.Project.OmnibusBranch = blueprint.OmnibusBranch
	l.Config.Workers = blueprint.Workers

	if err := configstore.Save(l.Layout.CzarinaDir, l.Config); err != nil {
		return fmt.Errorf("save config for phase %d: %w", nextPhase, err)
	}

	if l.GitOK {
		if err := repolayout.EnsureBranches(ctx, l.Git, l.Config, "origin", l.Events); err != nil {
			return fmt.Errorf("ensure branches: %w", err)
		}
	}
	if _, err := repolayout.EnsureWorktrees(ctx, l.Git, l.Layout, l.Config, l.GitOK); err != nil {
		return fmt.Errorf("ensure worktrees: %w", err)
	}

	agentCommand := ""
	if l.Config.WiggumConfig != nil {
		agentCommand = l.Config.WiggumConfig.AgentCommand
	}
	for _, w := range l.Config.Workers {
		name := session.Name(l.Config.Project.Slug, w.ID)
		dir := l.Layout.WorktreePath(w.ID)
		if err := l.Sessions.Start(ctx, name, dir, agentCommand); err != nil {
			l.Events.Emit(eventlog.SourceCzar, "SESSION_START_FAILED", eventlog.SeverityError,
				map[string]string{"worker": w.ID, "error": err.Error()})
			continue
		}
	}

	state.MarkLaunched(nextPhase, l.now())
	if err := phase.SaveState(l.Layout.PhaseStatePath(), state); err != nil {
		return fmt.Errorf("save phase state after launch: %w", err)
	}

	l.previousSnapshot = nil
	l.Events.Emit(eventlog.SourceCzar, eventlog.KindPhaseLaunched, eventlog.SeveritySuccess,
		map[string]string{"phase": fmt.Sprintf("%d", nextPhase)})
	return nil
}
