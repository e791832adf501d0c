package phase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
	"github.com/stretchr/testify/require"
)

func testConfig() *configstore.Config {
	return &configstore.Config{
		Project: configstore.Project{Name: "Demo", Slug: "demo", Version: "0.1.0", Phase: 1, OmnibusBranch: "cz1/release/v0.1.0"},
		Workers: []configstore.Worker{
			{ID: "worker-a", Agent: "claude", Branch: "cz1/feat/worker-a"},
		},
	}
}

func TestCanInitEmptyOrMissingWorkersDir(t *testing.T) {
	root := t.TempDir()
	l := repolayout.New(root, "")
	require.NoError(t, l.Scaffold())

	ok, err := CanInit(l.WorkersDir())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(l.WorkerPromptPath("worker-a"), []byte("# prompt"), 0o644))
	ok, err = CanInit(l.WorkersDir())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArchiveCopiesStateAndEmptiesWorkers(t *testing.T) {
	root := t.TempDir()
	l := repolayout.New(root, "")
	require.NoError(t, l.Scaffold())
	cfg := testConfig()
	require.NoError(t, configstore.Save(l.CzarinaDir, cfg))
	require.NoError(t, os.WriteFile(l.WorkerPromptPath("worker-a"), []byte("# prompt"), 0o644))

	ctrl := &Controller{
		Layout:   l,
		Git:      repolayout.NewGit(root),
		Sessions: session.New(root),
	}
	snap := &workerstatus.Snapshot{Workers: map[string]workerstatus.WorkerState{
		"worker-a": {Status: workerstatus.StatusComplete, Commits: 4, Completion: workerstatus.CompletionSignals{BranchMerged: true}},
	}}

	require.NoError(t, ctrl.Archive(context.Background(), cfg, snap, 1, "0.1.0"))

	archiveDir := l.PhaseArchiveDir(1, "0.1.0")
	require.FileExists(t, filepath.Join(archiveDir, "config.json"))
	require.FileExists(t, filepath.Join(archiveDir, "PHASE_SUMMARY.md"))

	entries, err := os.ReadDir(l.WorkersDir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBuildSummaryListsWorkers(t *testing.T) {
	cfg := testConfig()
	snap := &workerstatus.Snapshot{Workers: map[string]workerstatus.WorkerState{
		"worker-a": {Status: workerstatus.StatusIdle, Commits: 2},
	}}
	summary := BuildSummary(cfg, snap)
	require.Contains(t, summary, "worker-a")
	require.Contains(t, summary, "idle")
}
