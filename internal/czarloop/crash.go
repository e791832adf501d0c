package czarloop

import (
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// detectCrashes emits WORKER_CRASHED once per transition into
// HealthCrashed, not on every tick a worker stays crashed, so the event
// stream reflects state changes rather than a steady drumbeat.
func (l *Loop) detectCrashes(snap *workerstatus.Snapshot) {
	for id, w := range snap.Workers {
		if w.Health != workerstatus.HealthCrashed {
			continue
		}
		if l.previousSnapshot != nil {
			if prev, ok := l.previousSnapshot.Workers[id]; ok && prev.Health == workerstatus.HealthCrashed {
				continue
			}
		}
		l.Events.Emit(eventlog.SourceCzar, eventlog.KindWorkerCrashed, eventlog.SeverityAlert,
			map[string]string{"worker": id, "status": string(w.Status)})
	}
}
