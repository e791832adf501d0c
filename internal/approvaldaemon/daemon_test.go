package approvaldaemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/session"
)

func testConfig() *configstore.Config {
	return &configstore.Config{
		Project: configstore.Project{Slug: "proj"},
		Workers: []configstore.Worker{
			{ID: "a", Agent: "claude"},
		},
		Daemon: &configstore.Daemon{Enabled: true},
	}
}

func newTestLog(t *testing.T) *eventlog.Log {
	t.Helper()
	l, err := eventlog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestResolveProfileMergesBuiltinAndConfig(t *testing.T) {
	configured := map[string]configstore.AgentProfile{
		"claude": {
			ApprovalPatterns: map[string]string{"custom": "foo"},
		},
	}
	profile, ok := ResolveProfile("claude", configured)
	require.True(t, ok)
	require.Contains(t, profile.ApprovalPatterns, "custom")
	require.Contains(t, profile.ApprovalPatterns, "file_access") // builtin survives
}

func TestResolveProfileUnknownKindWithNoConfig(t *testing.T) {
	_, ok := ResolveProfile("made-up-agent", nil)
	require.False(t, ok)
}

func TestEvaluateSessionSendsKeysOnMatch(t *testing.T) {
	cfg := testConfig()
	d := New(session.New(""), newTestLog(t), cfg)
	now := time.Now()
	d.Now = func() time.Time { return now }

	profiles := d.compiledProfiles()
	profile := profiles["claude"]

	// Direct unit test of the matching/bookkeeping logic without a real
	// tmux session: evaluateSession only needs Sessions.SendKeys to not
	// panic, which is harmless against a non-existent session (fails open).
	ctx := context.Background()
	d.evaluateSession(ctx, "proj:a", "a", "Do you want to edit foo.go?", profile)

	d.mu.Lock()
	st := d.state["proj:a"]["file_access"]
	d.mu.Unlock()
	require.NotNil(t, st)
	require.Equal(t, 1, st.attempts)
}

func TestEvaluateSessionMarksStuckAfterThreeAttempts(t *testing.T) {
	cfg := testConfig()
	d := New(session.New(""), newTestLog(t), cfg)
	base := time.Now()
	d.Now = func() time.Time { return base }
	d.DebounceWindow = 0 // isolate the stuck-attempt counter from debounce

	profile := d.compiledProfiles()["claude"]
	ctx := context.Background()
	text := "Do you want to edit foo.go?"

	for i := 0; i < 3; i++ {
		base = base.Add(2 * time.Second)
		d.evaluateSession(ctx, "proj:a", "a", text, profile)
	}

	d.mu.Lock()
	st := d.state["proj:a"]["file_access"]
	d.mu.Unlock()
	require.True(t, st.stuck)
}

func TestEvaluateSessionResetsWhenTextChanges(t *testing.T) {
	cfg := testConfig()
	d := New(session.New(""), newTestLog(t), cfg)
	base := time.Now()
	d.Now = func() time.Time { return base }
	d.DebounceWindow = 0

	profile := d.compiledProfiles()["claude"]
	ctx := context.Background()
	text := "Do you want to edit foo.go?"
	for i := 0; i < 3; i++ {
		base = base.Add(2 * time.Second)
		d.evaluateSession(ctx, "proj:a", "a", text, profile)
	}
	// Prompt clears from the pane.
	d.evaluateSession(ctx, "proj:a", "a", "all done, no prompts here", profile)

	d.mu.Lock()
	st := d.state["proj:a"]["file_access"]
	d.mu.Unlock()
	require.False(t, st.stuck)
	require.Equal(t, 0, st.attempts)
}
