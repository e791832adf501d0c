package session

import (
	"context"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	require.Equal(t, "myproj:worker-a", Name("myproj", "worker-a"))
}

func TestParseSessionList(t *testing.T) {
	now := time.Now().Unix()
	raw := "myproj:a\t" + strconv.FormatInt(now-60, 10)
	raw += "\nmyproj:b\t" + strconv.FormatInt(now-120, 10)
	raw += "\nmalformed-line"

	sessions := parseSessionList(raw)
	require.Len(t, sessions, 2)
	require.Equal(t, "myproj:a", sessions[0].Name)
	require.Equal(t, "myproj:b", sessions[1].Name)
}

func TestParseSessionListEmpty(t *testing.T) {
	require.Empty(t, parseSessionList(""))
	require.Empty(t, parseSessionList("   \n  "))
}

func tmuxAvailableForTest(t *testing.T) bool {
	t.Helper()
	_, err := exec.LookPath("tmux")
	return err == nil
}

func TestDriverStartAliveKillRoundTrip(t *testing.T) {
	if !tmuxAvailableForTest(t) {
		t.Skip("tmux not available in test environment")
	}
	d := New(t.TempDir())
	ctx := context.Background()
	name := "czarina-test:" + t.Name()

	require.NoError(t, d.Start(ctx, name, "", ""))
	defer d.Kill(ctx, name)

	require.True(t, d.Alive(ctx, name))

	require.NoError(t, d.Inject(ctx, name, "echo hello"))

	out, err := d.Capture(ctx, name)
	require.NoError(t, err)
	require.Contains(t, out, "echo hello")

	require.NoError(t, d.Kill(ctx, name))
	require.False(t, d.Alive(ctx, name))
}

func TestDriverMissingTmuxFailsOpenOnList(t *testing.T) {
	d := New("")
	sessions, err := d.List(context.Background())
	require.NoError(t, err)
	_ = sessions // either nil (no tmux / no server) or actual list; must not panic
}
