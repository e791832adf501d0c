package hopper

import (
	"context"
	"fmt"
	"sort"
)

// Injector delivers a notification message into a worker's session. It is
// the minimal slice of session.Driver this package needs, kept narrow so
// hopper does not import session directly.
type Injector interface {
	Inject(ctx context.Context, sessionName, text string) error
}

// Assignment is one todo-item-to-worker pairing produced by Assign.
type Assignment struct {
	Item     *Item
	WorkerID string
	NewPath  string // in-progress/ path after the move
}

// Assign selects up to min(len(idleWorkerIDs), len(todo items)) items from
// phaseHopperDir's todo/ bucket and assigns one to each idle worker, highest
// Priority first, then smallest Complexity, then alphabetical by filename
// (spec.md §4.5). Each assignment atomically moves the file to
// in-progress/ and injects a notification naming the item's title and path
// into the worker's session.
func Assign(ctx context.Context, phaseHopperDir string, idleWorkerIDs []string, sessionName func(workerID string) string, injector Injector) ([]Assignment, error) {
	todo, err := ListPhaseItems(phaseHopperDir, StateTodo)
	if err != nil {
		return nil, err
	}
	if len(todo) == 0 || len(idleWorkerIDs) == 0 {
		return nil, nil
	}

	sort.SliceStable(todo, func(i, j int) bool {
		if todo[i].Priority.rank() != todo[j].Priority.rank() {
			return todo[i].Priority.rank() < todo[j].Priority.rank()
		}
		if todo[i].Complexity.rank() != todo[j].Complexity.rank() {
			return todo[i].Complexity.rank() < todo[j].Complexity.rank()
		}
		return todo[i].Path < todo[j].Path
	})

	workers := append([]string(nil), idleWorkerIDs...)
	sort.Strings(workers)

	n := len(todo)
	if len(workers) < n {
		n = len(workers)
	}

	assignments := make([]Assignment, 0, n)
	for i := 0; i < n; i++ {
		item := todo[i]
		workerID := workers[i]
		newPath, err := Advance(item, phaseHopperDir, StateInProgress)
		if err != nil {
			return assignments, fmt.Errorf("hopper: assign %s to %s: %w", item.Path, workerID, err)
		}
		if injector != nil {
			name := workerID
			if sessionName != nil {
				name = sessionName(workerID)
			}
			msg := fmt.Sprintf("[hopper] assigned: %s (%s)", item.Title, newPath)
			if err := injector.Inject(ctx, name, msg); err != nil {
				return assignments, fmt.Errorf("hopper: inject assignment notice for %s: %w", workerID, err)
			}
		}
		assignments = append(assignments, Assignment{Item: item, WorkerID: workerID, NewPath: newPath})
	}
	return assignments, nil
}
