package czarloop

import (
	"strings"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/depgraph"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// monitorDependencies emits WORKER_DEPENDENCY_BLOCKED for any worker whose
// status is itself working/idle but has an unmet dependency, once per
// DependencyCooldown per worker to avoid flooding the log every tick
// (spec.md §4.2 step 5, §4.4).
func (l *Loop) monitorDependencies(snap *workerstatus.Snapshot, graph *depgraph.Graph) {
	done := workerstatus.MetSet(snap)
	now := l.now()

	for _, id := range sortedWorkerIDs(snap) {
		if !done[id] {
			continue
		}
		blocked, unmet := graph.Blocked(id, done)
		if !blocked {
			continue
		}
		last := l.lastDependencyAlert[id]
		if !last.IsZero() && now.Sub(last) < l.DependencyCooldown {
			continue
		}
		l.lastDependencyAlert[id] = now
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindWorkerDependencyBlocked, eventlog.SeverityDetect,
			map[string]string{"worker": id, "unmet_dependencies": strings.Join(unmet, ",")})
	}
}

// checkIntegrationReady scans every integration-role worker and emits
// INTEGRATION_READY plus the merge order it would use once all of its
// feature dependencies are done (spec.md §4.2 step 5, §4.4).
func (l *Loop) checkIntegrationReady(snap *workerstatus.Snapshot, graph *depgraph.Graph) {
	done := workerstatus.MetSet(snap)
	order, err := graph.TopologicalOrder()
	if err != nil {
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindDependencyCycle, eventlog.SeverityError,
			map[string]string{"error": err.Error()})
		return
	}

	for _, w := range l.Config.Workers {
		if w.Role != configstore.RoleIntegration {
			continue
		}
		if done[w.ID] || !graph.IntegrationReady(w.ID, done) {
			continue
		}
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindIntegrationReady, eventlog.SeverityDetect,
			map[string]string{"worker": w.ID})
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindIntegrationStrategy, eventlog.SeverityInfo,
			map[string]string{"worker": w.ID, "merge_order": strings.Join(order, ",")})
	}
}
