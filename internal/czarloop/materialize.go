package czarloop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

const maxConcurrentHealthChecks = 8

// materializeStatus reads last activity from git reflog, log file mtime,
// and session liveness for every worker, concurrently bounded by
// min(8, len(workers)) so a large worker count still fits the tick's soft
// time budget (SPEC_FULL.md §4.2 supplement).
func (l *Loop) materializeStatus(ctx context.Context) (*workerstatus.Snapshot, error) {
	records, err := eventlog.Reader(l.Layout.LogsDir())
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}

	deriver := &workerstatus.Deriver{Now: l.now}

	g, gctx := errgroup.WithContext(ctx)
	limit := maxConcurrentHealthChecks
	if len(l.Config.Workers) < limit {
		limit = len(l.Config.Workers)
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	states := make(map[string]workerstatus.WorkerState, len(l.Config.Workers))

	for _, w := range l.Config.Workers {
		w := w
		g.Go(func() error {
			state := l.materializeWorker(gctx, w, records, deriver)
			mu.Lock()
			states[w.ID] = state
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &workerstatus.Snapshot{
		GeneratedAt: l.now(),
		Phase:       l.Config.Project.Phase,
		Workers:     states,
	}
	if err := workerstatus.Save(l.Layout.WorkerStatusPath(), snap); err != nil {
		return nil, fmt.Errorf("save worker-status.json: %w", err)
	}
	return snap, nil
}

func (l *Loop) materializeWorker(ctx context.Context, w configstore.Worker, records []eventlog.Record, deriver *workerstatus.Deriver) workerstatus.WorkerState {
	sessionName := session.Name(l.Config.Project.Slug, w.ID)
	alive := l.Sessions.AliveConfirmed(ctx, sessionName)

	lastActivity := l.lastActivity(ctx, w)
	commits := l.commitsAhead(ctx, w)

	var previousStatus workerstatus.Status
	if l.previousSnapshot != nil {
		previousStatus = l.previousSnapshot.Workers[w.ID].Status
	}

	completion := workerstatus.EvaluateCompletion(ctx, records, l.Git, l.GitOK, w.Branch, l.Config.Project.OmnibusBranch, l.previousSnapshot, w.ID)
	completionMet := completion.Satisfies(workerstatus.CompletionMode(l.Config.EffectivePhaseCompletionMode()))

	status, health := deriver.Derive(workerstatus.Signals{
		SessionAlive:    alive,
		LastActivity:    lastActivity,
		CommitsOnBranch: commits,
		PreviousStatus:  previousStatus,
	}, completionMet)

	return workerstatus.WorkerState{
		WorkerID:     w.ID,
		Status:       status,
		Health:       health,
		SessionAlive: alive,
		LastActivity: lastActivity,
		Commits:      commits,
		Completion:   completion,
	}
}

func (l *Loop) lastActivity(ctx context.Context, w configstore.Worker) time.Time {
	var latest time.Time
	if l.GitOK {
		if t, err := l.Git.LastActivity(ctx, w.Branch); err == nil && t.After(latest) {
			latest = t
		}
	}
	logPath := filepath.Join(l.Layout.LogsDir(), "workers", w.ID+".log")
	if info, err := os.Stat(logPath); err == nil {
		if mt := info.ModTime(); mt.After(latest) {
			latest = mt
		}
	}
	return latest
}

func (l *Loop) commitsAhead(ctx context.Context, w configstore.Worker) int {
	if !l.GitOK {
		return 0
	}
	n, err := l.Git.CommitCount(ctx, w.Branch, l.Config.Project.OmnibusBranch)
	if err != nil {
		return 0
	}
	return n
}
