package repolayout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScaffoldCreatesWellKnownDirs(t *testing.T) {
	root := t.TempDir()
	l := New(root, "")
	require.Equal(t, filepath.Join(root, ".czarina"), l.CzarinaDir)

	require.NoError(t, l.Scaffold())

	for _, dir := range []string{
		l.CzarinaDir,
		l.WorkersDir(),
		l.WorktreesDir(),
		l.LogsDir(),
		filepath.Join(l.LogsDir(), "workers"),
		l.StatusDir(),
		l.HopperDir(),
		l.PhasesDir(),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestScaffoldIdempotent(t *testing.T) {
	root := t.TempDir()
	l := New(root, "")
	require.NoError(t, l.Scaffold())
	require.NoError(t, l.Scaffold())
}

func TestPhaseArchiveDirNaming(t *testing.T) {
	l := New("/repo", "")
	require.Equal(t, "/repo/.czarina/phases/phase-1-v0.1.0", l.PhaseArchiveDir(1, "0.1.0"))
}

func TestCustomCzarinaDirOverride(t *testing.T) {
	l := New("/repo", "/alt/czarina")
	require.Equal(t, "/alt/czarina/config.json", l.ConfigPath())
}
