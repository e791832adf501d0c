package hopper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeInjector struct {
	injected []string
}

func (f *fakeInjector) Inject(ctx context.Context, sessionName, text string) error {
	f.injected = append(f.injected, sessionName+": "+text)
	return nil
}

func TestAssignOrdersByPriorityThenComplexityThenFilename(t *testing.T) {
	phaseDir := t.TempDir()
	todoDir := filepath.Join(phaseDir, "todo")
	require.NoError(t, os.MkdirAll(todoDir, 0o755))

	writeItem(t, todoDir, "c-medium.md", "# C\n\n**Priority:** Medium\n**Complexity:** Small\n")
	writeItem(t, todoDir, "a-high-large.md", "# A\n\n**Priority:** High\n**Complexity:** Large\n")
	writeItem(t, todoDir, "b-high-small.md", "# B\n\n**Priority:** High\n**Complexity:** Small\n")

	inj := &fakeInjector{}
	assignments, err := Assign(context.Background(), phaseDir, []string{"worker-2", "worker-1"}, func(id string) string { return "proj:" + id }, inj)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	// Highest priority, smallest complexity, alphabetical first: b-high-small.
	require.Equal(t, "b-high-small.md", filepath.Base(assignments[0].Item.Path))
	require.Equal(t, "worker-1", assignments[0].WorkerID)
	require.Equal(t, "a-high-large.md", filepath.Base(assignments[1].Item.Path))
	require.Equal(t, "worker-2", assignments[1].WorkerID)

	require.FileExists(t, filepath.Join(phaseDir, "in-progress", "b-high-small.md"))
	require.FileExists(t, filepath.Join(phaseDir, "in-progress", "a-high-large.md"))
	require.FileExists(t, filepath.Join(todoDir, "c-medium.md"))

	require.Len(t, inj.injected, 2)
}

func TestAssignCapsAtFewerOfIdleOrTodo(t *testing.T) {
	phaseDir := t.TempDir()
	todoDir := filepath.Join(phaseDir, "todo")
	require.NoError(t, os.MkdirAll(todoDir, 0o755))
	writeItem(t, todoDir, "only.md", "# Only\n\n**Priority:** High\n**Complexity:** Small\n")

	assignments, err := Assign(context.Background(), phaseDir, []string{"worker-1", "worker-2", "worker-3"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
}

func TestAssignNoTodoItemsIsNoOp(t *testing.T) {
	phaseDir := t.TempDir()
	assignments, err := Assign(context.Background(), phaseDir, []string{"worker-1"}, nil, nil)
	require.NoError(t, err)
	require.Empty(t, assignments)
}
