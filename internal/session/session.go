// Package session drives isolated terminal sessions for workers via tmux:
// launch, inject keystrokes, capture visible output, list, and kill. Every
// worker gets a detached tmux session named deterministically from the
// project slug and worker id (spec.md §3 SessionHandle).
package session

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name derives the logical tmux session name for a worker, deterministic
// from {project.slug, worker.id} per spec.md §3.
func Name(projectSlug, workerID string) string {
	return projectSlug + ":" + workerID
}

// Disambiguate appends a short random suffix to base. Used only in
// degraded non-git mode, where every worker shares one working directory
// and so has no worktree path to tell a stale foreign session apart from
// this run's own — a logical-name collision there must not attach to
// whatever session already holds the name.
func Disambiguate(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// Info describes one live tmux session as reported by `tmux list-sessions`.
type Info struct {
	Name      string
	CreatedAt time.Time
}

// Driver launches and controls tmux sessions. The query operations fail
// open on a missing tmux binary (treated as "no sessions"/"not alive") so
// Czarina can still degrade gracefully rather than crash a tick; Start,
// Inject, SendKeys and Capture return an error instead.
type Driver struct {
	// WorkDir is the default working directory for newly started sessions.
	WorkDir string
}

func New(workDir string) *Driver { return &Driver{WorkDir: workDir} }

func tmuxAvailable() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// Start creates a detached tmux session named name, running command inside
// dir (or d.WorkDir if dir is empty). A no-op success if the session
// already exists.
func (d *Driver) Start(ctx context.Context, name, dir, command string) error {
	if !tmuxAvailable() {
		return fmt.Errorf("session: tmux not found in PATH")
	}
	if d.Alive(ctx, name) {
		return nil
	}
	if dir == "" {
		dir = d.WorkDir
	}
	args := []string{"new-session", "-d", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	if command != "" {
		args = append(args, command)
	}
	cmd := exec.CommandContext(ctx, "tmux", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux new-session %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Alive reports whether a session named name currently exists.
func (d *Driver) Alive(ctx context.Context, name string) bool {
	if !tmuxAvailable() {
		return false
	}
	cmd := exec.CommandContext(ctx, "tmux", "has-session", "-t", name)
	return cmd.Run() == nil
}

// Kill destroys a session. A missing session is not an error.
func (d *Driver) Kill(ctx context.Context, name string) error {
	if !tmuxAvailable() || !d.Alive(ctx, name) {
		return nil
	}
	cmd := exec.CommandContext(ctx, "tmux", "kill-session", "-t", name)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux kill-session %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Inject sends text into a session followed by Enter, used for stuck-worker
// nudges (spec.md §4.2 step 3) and Hopper task assignment notifications
// (§4.5). Text is sent literally (tmux send-keys -l) so the agent sees it
// exactly as written, then Enter is sent as a separate key.
func (d *Driver) Inject(ctx context.Context, name, text string) error {
	if !tmuxAvailable() {
		return fmt.Errorf("session: tmux not found in PATH")
	}
	cmd := exec.CommandContext(ctx, "tmux", "send-keys", "-t", name, "-l", text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux send-keys %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	enter := exec.CommandContext(ctx, "tmux", "send-keys", "-t", name, "Enter")
	if out, err := enter.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux send-keys %s Enter: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SendKeys sends a raw key sequence (may include tmux key names like
// "Enter" or "C-c") without the literal-text wrapping Inject uses. This
// backs ApprovalDaemon's key_sequences delivery (spec.md §4.6).
func (d *Driver) SendKeys(ctx context.Context, name, keys string) error {
	if !tmuxAvailable() {
		return fmt.Errorf("session: tmux not found in PATH")
	}
	cmd := exec.CommandContext(ctx, "tmux", "send-keys", "-t", name, keys)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux send-keys %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Capture returns the most recent visible text of a session's pane, used by
// ApprovalDaemon's 2-second poll (spec.md §4.6).
func (d *Driver) Capture(ctx context.Context, name string) (string, error) {
	if !tmuxAvailable() {
		return "", fmt.Errorf("session: tmux not found in PATH")
	}
	cmd := exec.CommandContext(ctx, "tmux", "capture-pane", "-p", "-t", name)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane %s: %w", name, err)
	}
	return string(out), nil
}

// List returns every live tmux session.
func (d *Driver) List(ctx context.Context) ([]Info, error) {
	if !tmuxAvailable() {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, "tmux", "list-sessions", "-F", "#{session_name}\t#{session_created}")
	out, err := cmd.Output()
	if err != nil {
		// No server running yet reads as "no sessions", not an error.
		return nil, nil
	}
	return parseSessionList(string(out)), nil
}

func parseSessionList(output string) []Info {
	var sessions []Info
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			continue
		}
		epoch, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			continue
		}
		sessions = append(sessions, Info{
			Name:      strings.TrimSpace(fields[0]),
			CreatedAt: time.Unix(epoch, 0),
		})
	}
	return sessions
}
