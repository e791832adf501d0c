package czarloop

import (
	"context"
	"strings"

	"github.com/czarina-dev/czarina/internal/depgraph"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// stuckPromptText is injected into a worker's session when it is prompted
// after being stuck past cooldown (spec.md §4.2 step 3).
const stuckPromptText = "[czar] no activity detected for a while. If you are blocked, say so; " +
	"otherwise continue with the current task and report progress."

// detectStuck implements spec.md §4.2 step 3: every stuck, alive worker
// emits STUCK_WORKER; dependency-blocked ones get WORKER_BLOCKED instead of
// a prompt, otherwise a prompt is injected once per StuckCooldown.
func (l *Loop) detectStuck(ctx context.Context, snap *workerstatus.Snapshot, graph *depgraph.Graph) {
	done := workerstatus.MetSet(snap)
	now := l.now()

	for _, id := range sortedWorkerIDs(snap) {
		w := snap.Workers[id]
		if w.Health != workerstatus.HealthStuck || !w.SessionAlive {
			continue
		}

		l.Events.Emit(eventlog.SourceCzar, eventlog.KindStuckWorker, eventlog.SeverityDetect,
			map[string]string{"worker": id})

		if blocked, unmet := graph.Blocked(id, done); blocked {
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindWorkerBlocked, eventlog.SeverityDetect,
				map[string]string{"worker": id, "unmet_dependencies": strings.Join(unmet, ",")})
			continue
		}

		last := l.lastStuckPrompt[id]
		if !last.IsZero() && now.Sub(last) < l.StuckCooldown {
			l.Events.Emit(eventlog.SourceCzar, eventlog.KindCooldownActive, eventlog.SeverityInfo,
				map[string]string{"worker": id, "remaining": (l.StuckCooldown - now.Sub(last)).String()})
			continue
		}

		name := session.Name(l.Config.Project.Slug, id)
		if err := l.Sessions.Inject(ctx, name, stuckPromptText); err != nil {
			l.Events.Emit(eventlog.SourceCzar, "STUCK_PROMPT_FAILED", eventlog.SeverityError,
				map[string]string{"worker": id, "error": err.Error()})
			continue
		}
		l.lastStuckPrompt[id] = now
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindPromptStuckWorker, eventlog.SeverityAction,
			map[string]string{"worker": id})
	}
}
