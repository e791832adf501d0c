package phase

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkCompleteTransitionsOnce(t *testing.T) {
	s := &State{Complete: map[int]bool{}, Launched: map[int]bool{}}
	now := time.Now()
	require.True(t, s.MarkComplete(1, now))
	require.False(t, s.MarkComplete(1, now))
	require.True(t, s.IsComplete(1))
}

func TestStateRoundTripsThroughJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phase-state.json")
	s := &State{CurrentPhase: 2, Complete: map[int]bool{}, Launched: map[int]bool{}}
	s.MarkComplete(1, time.Now().Truncate(time.Second))
	s.MarkLaunched(2, time.Now().Truncate(time.Second))

	require.NoError(t, SaveState(path, s))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.CurrentPhase)
	require.True(t, loaded.IsComplete(1))
	require.True(t, loaded.Launched[2])
	require.False(t, loaded.IsComplete(2))
}

func TestLoadStateMissingFileReturnsZeroValue(t *testing.T) {
	s, err := LoadState(filepath.Join(t.TempDir(), "phase-state.json"))
	require.NoError(t, err)
	require.Equal(t, 0, s.CurrentPhase)
	require.False(t, s.IsComplete(1))
}
