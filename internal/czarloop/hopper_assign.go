package czarloop

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/hopper"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// idleWorkerIDs returns workers currently in StatusIdle, sorted.
func (l *Loop) idleWorkerIDs(snap *workerstatus.Snapshot) []string {
	var idle []string
	for _, id := range sortedWorkerIDs(snap) {
		if snap.Workers[id].Status == workerstatus.StatusIdle {
			idle = append(idle, id)
		}
	}
	return idle
}

// projectHopperDir and phaseHopperDir resolve the two hopper tiers
// (spec.md §4.5), honoring config overrides and falling back to the
// well-known layout.
func (l *Loop) projectHopperDir() string {
	if l.Config.HopperConfig != nil && l.Config.HopperConfig.ProjectHopper != "" {
		return filepath.Join(l.Layout.CzarinaDir, l.Config.HopperConfig.ProjectHopper)
	}
	return filepath.Join(l.Layout.HopperDir(), "project")
}

func (l *Loop) phaseHopperDir() string {
	if l.Config.HopperConfig != nil && l.Config.HopperConfig.PhaseHopper != "" {
		return filepath.Join(l.Layout.CzarinaDir, l.Config.HopperConfig.PhaseHopper)
	}
	return filepath.Join(l.Layout.HopperDir(), "phase")
}

func (l *Loop) hopperEnabled() bool {
	return l.Config.HopperConfig != nil && l.Config.HopperConfig.Enabled
}

// assignHopperWork implements spec.md §4.2 step 4's second half: idle
// workers pull from the phase hopper's todo bucket, priority first.
func (l *Loop) assignHopperWork(ctx context.Context, idle []string) error {
	if !l.hopperEnabled() || len(idle) == 0 {
		return nil
	}

	sessionName := func(workerID string) string {
		return session.Name(l.Config.Project.Slug, workerID)
	}

	assignments, err := hopper.Assign(ctx, l.phaseHopperDir(), idle, sessionName, l.Sessions)
	if err != nil {
		return fmt.Errorf("assign hopper work: %w", err)
	}
	if len(assignments) == 0 {
		return nil
	}

	for _, a := range assignments {
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperAssignTask, eventlog.SeverityAction,
			map[string]string{"worker": a.WorkerID, "item": a.Item.Title, "path": a.NewPath})
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindTaskInjected, eventlog.SeverityInfo,
			map[string]string{"worker": a.WorkerID, "item": a.Item.Title})
	}
	l.Events.Emit(eventlog.SourceCzar, eventlog.KindHopperAssignedTasks, eventlog.SeverityInfo,
		map[string]string{"count": fmt.Sprintf("%d", len(assignments))})
	return nil
}
