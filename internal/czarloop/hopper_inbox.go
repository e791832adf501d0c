package czarloop

import (
	"fmt"

	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/hopper"
)

// assessHopperInbox implements spec.md §4.5's project-tier monitoring: new
// items get assessed against the current phase and idle-worker count, then
// either promoted to the phase hopper, deferred back to the project hopper,
// or left for a human to triage. Already-assessed items (tracked by the
// ledger's mtime) are skipped so a human's manual edits don't cause re-churn.
func (l *Loop) assessHopperInbox(idleCount int) error {
	if !l.hopperEnabled() {
		return nil
	}

	projectDir := l.projectHopperDir()
	items, err := hopper.ListProjectItems(projectDir)
	if err != nil {
		return fmt.Errorf("list project hopper items: %w", err)
	}

	ledger, err := hopper.LoadLedger(projectDir)
	if err != nil {
		return fmt.Errorf("load hopper ledger: %w", err)
	}

	dirty := false
	for _, item := range items {
		if !ledger.NeedsAssessment(item) {
			continue
		}

		l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperNewItem, eventlog.SeverityInfo,
			map[string]string{"item": item.Title, "path": item.Path})

		outcome := hopper.Assess(item, l.Config.Project.Phase, idleCount)
		switch outcome {
		case hopper.OutcomeAutoInclude:
			newPath, err := hopper.PromoteToPhase(item, l.phaseHopperDir())
			if err != nil {
				return fmt.Errorf("promote hopper item %s: %w", item.Path, err)
			}
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperAutoInclude, eventlog.SeverityAction,
				map[string]string{"item": item.Title, "path": newPath})
		case hopper.OutcomeAutoDefer:
			newPath, err := hopper.Defer(item, projectDir)
			if err != nil {
				return fmt.Errorf("defer hopper item %s: %w", item.Path, err)
			}
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperAutoDefer, eventlog.SeverityInfo,
				map[string]string{"item": item.Title, "path": newPath})
		case hopper.OutcomeAskHuman:
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperAskHuman, eventlog.SeverityAlert,
				map[string]string{"item": item.Title, "path": item.Path})
		}

		ledger.Record(item, outcome)
		dirty = true
	}

	if dirty {
		if err := ledger.Save(projectDir); err != nil {
			return fmt.Errorf("save hopper ledger: %w", err)
		}
	}
	return nil
}
