package hopper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListProjectItemsSkipsNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "a.md", "# A\n\n**Priority:** High\n")
	writeItem(t, dir, "b.md", "# B\n\n**Priority:** Low\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "todo"), 0o755))

	items, err := ListProjectItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestPromoteToPhaseMovesFile(t *testing.T) {
	projectDir := t.TempDir()
	phaseDir := t.TempDir()
	path := writeItem(t, projectDir, "fix.md", "# Fix\n\n**Priority:** High\n**Complexity:** Small\n")
	item, err := ParseFile(path)
	require.NoError(t, err)

	newPath, err := PromoteToPhase(item, phaseDir)
	require.NoError(t, err)
	require.FileExists(t, newPath)
	require.NoFileExists(t, path)
	require.Equal(t, filepath.Join(phaseDir, "todo", "fix.md"), newPath)
}

func TestAdvanceEnforcesMonotonicity(t *testing.T) {
	phaseDir := t.TempDir()
	todoDir := filepath.Join(phaseDir, "todo")
	require.NoError(t, os.MkdirAll(todoDir, 0o755))
	path := writeItem(t, todoDir, "task.md", "# Task\n")
	item, err := ParseFile(path)
	require.NoError(t, err)

	newPath, err := Advance(item, phaseDir, StateInProgress)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(phaseDir, "in-progress", "task.md"), newPath)

	item2, err := ParseFile(newPath)
	require.NoError(t, err)
	_, err = Advance(item2, phaseDir, StateTodo)
	require.Error(t, err)

	newPath2, err := Advance(item2, phaseDir, StateDone)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(phaseDir, "done", "task.md"), newPath2)
}

func TestDeferReturnsItemToProjectTier(t *testing.T) {
	hopperDir := t.TempDir()
	phaseDir := t.TempDir()
	todoDir := filepath.Join(phaseDir, "todo")
	require.NoError(t, os.MkdirAll(todoDir, 0o755))
	path := writeItem(t, todoDir, "task.md", "# Task\n")
	item, err := ParseFile(path)
	require.NoError(t, err)

	newPath, err := Defer(item, hopperDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(hopperDir, "task.md"), newPath)
	require.NoFileExists(t, path)
}
