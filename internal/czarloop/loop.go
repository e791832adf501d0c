// Package czarloop is the long-lived CzarLoop supervisor: a single-threaded
// cooperative tick loop that materializes worker health, prompts stuck
// workers, tracks dependencies, drives Hopper, and detects phase completion
// (spec.md §4.2). Cancellation is cooperative via ctx; callers wire
// SIGINT/SIGTERM into ctx cancellation (cmd/czar.go uses
// signal.NotifyContext).
package czarloop

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/depgraph"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/hopper"
	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// hopperDebounce is a 2-second spacing for watcher-triggered ticks. Run
// takes ticks from its ticker only and never reads hopperWatcher, so
// neither this value nor that field affects scheduling.
const hopperDebounce = 2 * time.Second

const (
	DefaultTickInterval       = 30 * time.Second
	DefaultStuckCooldown      = 1 * time.Hour
	DefaultDependencyCooldown = 1 * time.Hour
	statusSummaryEveryNTicks  = 10
	integrationCheckEveryN    = 30
)

// Loop is the CzarLoop supervisor for one launched phase.
type Loop struct {
	Layout   *repolayout.Layout
	Git      *repolayout.Git
	Sessions *session.Driver
	Events   *eventlog.Log
	Config   *configstore.Config
	Phase    *phase.Controller
	GitOK    bool // false in degraded non-git mode (spec.md §4.1/§7)

	TickInterval       time.Duration
	StuckCooldown      time.Duration
	DependencyCooldown time.Duration
	Now                func() time.Time

	tickCount           int
	lastStuckPrompt     map[string]time.Time
	lastDependencyAlert map[string]time.Time
	previousSnapshot    *workerstatus.Snapshot
	hopperWatcher       *hopper.Watcher
}

// New builds a Loop with default thresholds; callers may override
// TickInterval/StuckCooldown/DependencyCooldown/Now before calling Run.
func New(l *repolayout.Layout, g *repolayout.Git, s *session.Driver, ev *eventlog.Log, cfg *configstore.Config, pc *phase.Controller, gitOK bool) *Loop {
	return &Loop{
		Layout:              l,
		Git:                 g,
		Sessions:            s,
		Events:              ev,
		Config:              cfg,
		Phase:               pc,
		GitOK:               gitOK,
		TickInterval:        DefaultTickInterval,
		StuckCooldown:       DefaultStuckCooldown,
		DependencyCooldown:  DefaultDependencyCooldown,
		Now:                 time.Now,
		lastStuckPrompt:     make(map[string]time.Time),
		lastDependencyAlert: make(map[string]time.Time),
	}
}

// Run executes the tick loop until ctx is canceled. No tick overlaps
// another: time.Ticker drops missed ticks while a receive is pending, so a
// slow tick simply causes the next one to fire immediately rather than
// stack up, matching spec.md §4.2's no-overlap requirement.
func (l *Loop) Run(ctx context.Context) error {
	l.Events.Emit(eventlog.SourceCzar, eventlog.KindCzarStart, eventlog.SeverityInfo, nil)

	ticker := time.NewTicker(l.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindCzarStop, eventlog.SeverityInfo, nil)
			return nil
		case <-ticker.C:
			started := l.now()
			if err := l.Tick(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "czarloop: tick failed: %v\n", err)
			}
			if elapsed := l.now().Sub(started); elapsed > l.TickInterval {
				l.Events.Emit(eventlog.SourceCzar, "TICK_OVERRUN", eventlog.SeverityAlert,
					map[string]string{"elapsed": elapsed.String(), "interval": l.TickInterval.String()})
			}
		}
	}
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Tick runs one iteration of the seven-step schedule (spec.md §4.2).
func (l *Loop) Tick(ctx context.Context) error {
	l.tickCount++

	graph, err := depgraph.Build(l.Config.Workers)
	if err != nil {
		return fmt.Errorf("czarloop: build dependency graph: %w", err)
	}

	// Step 1: materialize WorkerStatus.
	snap, err := l.materializeStatus(ctx)
	if err != nil {
		return fmt.Errorf("czarloop: materialize status: %w", err)
	}

	// Step 2: crash detection.
	l.detectCrashes(snap)

	// Step 3: stuck-worker detection.
	l.detectStuck(ctx, snap, graph)

	// Step 4: idle workers + hopper assignment.
	idle := l.idleWorkerIDs(snap)
	for _, id := range idle {
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindIdleWorker, eventlog.SeverityInfo, map[string]string{"worker": id})
	}
	if err := l.assignHopperWork(ctx, idle); err != nil {
		return fmt.Errorf("czarloop: hopper assignment: %w", err)
	}

	// Step 5: dependency monitoring + periodic integration-readiness check.
	l.monitorDependencies(snap, graph)
	if l.tickCount%integrationCheckEveryN == 0 {
		l.checkIntegrationReady(snap, graph)
	}

	// Step 6: hopper monitoring (project-tier assessment).
	if err := l.assessHopperInbox(len(idle)); err != nil {
		return fmt.Errorf("czarloop: hopper assessment: %w", err)
	}

	// Step 7: phase completion check.
	if err := l.checkPhaseCompletion(ctx, snap); err != nil {
		return fmt.Errorf("czarloop: phase completion check: %w", err)
	}

	if l.tickCount%statusSummaryEveryNTicks == 0 {
		l.emitStatusSummary(snap)
	}

	l.previousSnapshot = snap
	return nil
}

func (l *Loop) emitStatusSummary(snap *workerstatus.Snapshot) {
	counts := map[string]int{}
	for _, w := range snap.Workers {
		counts["status:"+string(w.Status)]++
		counts["health:"+string(w.Health)]++
	}
	meta := make(map[string]string, len(counts))
	for k, v := range counts {
		meta[k] = fmt.Sprintf("%d", v)
	}
	l.Events.Emit(eventlog.SourceCzar, eventlog.KindStatusSummary, eventlog.SeverityInfo, meta)
}
