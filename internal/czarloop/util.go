package czarloop

import (
	"sort"

	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// sortedWorkerIDs returns a snapshot's worker ids in alphabetical order, so
// every scan over a map produces deterministic event ordering.
func sortedWorkerIDs(snap *workerstatus.Snapshot) []string {
	ids := make([]string, 0, len(snap.Workers))
	for id := range snap.Workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
