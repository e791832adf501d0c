package workerstatus

// Met reports whether a worker's status satisfies depgraph's dependency-met
// predicate (spec.md §4.4: "A dependency is met when the dependency
// worker's status ∈ {working, idle}").
func Met(s Status) bool {
	return s == StatusWorking || s == StatusIdle
}

// MetSet builds the "done" map depgraph.Graph.Blocked/Ready/IntegrationReady
// expect, derived from a snapshot's per-worker statuses.
func MetSet(snap *Snapshot) map[string]bool {
	done := make(map[string]bool)
	if snap == nil {
		return done
	}
	for id, w := range snap.Workers {
		done[id] = Met(w.Status)
	}
	return done
}

// PhaseComplete reports whether the completion predicate holds for every
// worker in the snapshot (spec.md §4.4). An empty snapshot is never
// complete.
func PhaseComplete(snap *Snapshot, mode CompletionMode) bool {
	if snap == nil || len(snap.Workers) == 0 {
		return false
	}
	for _, w := range snap.Workers {
		if !w.Completion.Satisfies(mode) {
			return false
		}
	}
	return true
}
