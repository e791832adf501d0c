package repolayout

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Git is a thin wrapper around the git CLI scoped to one repository root.
// Every method shells out rather than linking a git library, matching the
// teacher's own BranchManager/GitQuerier pattern throughout the pack.
type Git struct {
	Dir string
}

func NewGit(dir string) *Git { return &Git{Dir: dir} }

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmdArgs := append([]string{"-C", g.Dir}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsGitRepo reports whether Dir is inside a git work tree.
func (g *Git) IsGitRepo(ctx context.Context) bool {
	_, err := g.run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// LocalBranchExists reports whether branch exists locally.
func (g *Git) LocalBranchExists(ctx context.Context, branch string) bool {
	out, err := g.run(ctx, "branch", "--list", branch)
	return err == nil && out != ""
}

// RemoteBranchExists reports whether branch exists on remote.
func (g *Git) RemoteBranchExists(ctx context.Context, remote, branch string) bool {
	out, err := g.run(ctx, "ls-remote", "--heads", remote, branch)
	return err == nil && out != ""
}

// HasRemote reports whether remote is configured.
func (g *Git) HasRemote(ctx context.Context, remote string) bool {
	out, err := g.run(ctx, "remote")
	if err != nil {
		return false
	}
	for _, r := range strings.Split(out, "\n") {
		if strings.TrimSpace(r) == remote {
			return true
		}
	}
	return false
}

// DefaultRemoteBranch resolves whichever of main/master exists on remote.
func (g *Git) DefaultRemoteBranch(ctx context.Context, remote string) (string, error) {
	for _, candidate := range []string{"main", "master"} {
		if g.RemoteBranchExists(ctx, remote, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("repolayout: neither main nor master found on remote %q", remote)
}

// Fetch fetches branch from remote.
func (g *Git) Fetch(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "fetch", remote, branch)
	return err
}

// CreateLocalBranch creates branch from startPoint (may be empty for HEAD).
func (g *Git) CreateLocalBranch(ctx context.Context, branch, startPoint string) error {
	args := []string{"branch", branch}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	_, err := g.run(ctx, args...)
	return err
}

// Push pushes branch to remote. Failure is not escalated by callers per
// spec.md's BranchCreateFailed policy (BRANCH_PUSH_SKIPPED, warn+continue).
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "push", "-u", remote, branch)
	return err
}

// WorktreeAdd creates a worktree at path checked out to branch. If the
// branch does not exist locally yet, it is created from startPoint.
func (g *Git) WorktreeAdd(ctx context.Context, path, branch, startPoint string) error {
	if g.LocalBranchExists(ctx, branch) {
		_, err := g.run(ctx, "worktree", "add", path, branch)
		return err
	}
	args := []string{"worktree", "add", "-b", branch, path}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	_, err := g.run(ctx, args...)
	return err
}

// WorktreeRemove removes a worktree, optionally forcing past a dirty tree.
func (g *Git) WorktreeRemove(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := g.run(ctx, args...)
	return err
}

// IsWorktreeDirty reports whether path's worktree has uncommitted changes.
func (g *Git) IsWorktreeDirty(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "status", "--porcelain")
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status --porcelain: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// LastActivity returns the timestamp of the most recent reflog entry for
// branch, used by WorkerStatus to derive staleness (spec.md §4.2 step 1).
func (g *Git) LastActivity(ctx context.Context, branch string) (time.Time, error) {
	out, err := g.run(ctx, "reflog", "show", "--date=unix", branch, "-1")
	if err != nil {
		return time.Time{}, err
	}
	if out == "" {
		return time.Time{}, fmt.Errorf("repolayout: no reflog entries for %q", branch)
	}
	idx := strings.Index(out, "@{")
	if idx < 0 {
		return time.Time{}, fmt.Errorf("repolayout: unexpected reflog format for %q: %q", branch, out)
	}
	end := strings.Index(out[idx:], "}")
	if end < 0 {
		return time.Time{}, fmt.Errorf("repolayout: unexpected reflog format for %q: %q", branch, out)
	}
	ts := out[idx+2 : idx+end]
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("repolayout: parse reflog timestamp %q: %w", ts, err)
	}
	return time.Unix(sec, 0), nil
}

// CommitCount returns the number of commits on branch not on baseBranch.
func (g *Git) CommitCount(ctx context.Context, branch, baseBranch string) (int, error) {
	out, err := g.run(ctx, "rev-list", "--count", baseBranch+".."+branch)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("repolayout: parse commit count %q: %w", out, err)
	}
	return n, nil
}

// IsAncestor reports whether commit/branch ancestor is an ancestor of
// descendant — used to detect "branch merged to omnibus".
func (g *Git) IsAncestor(ctx context.Context, ancestor, descendant string) bool {
	_, err := g.run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil
}

// MergeBranch merges source into the currently checked-out branch at dir
// using strategy ∈ {merge, squash, rebase}, used by WiggumController.
func (g *Git) MergeBranch(ctx context.Context, source string, strategy string) error {
	switch strategy {
	case "squash":
		if _, err := g.run(ctx, "merge", "--squash", source); err != nil {
			return err
		}
		_, err := g.run(ctx, "commit", "-m", "wiggum: squash merge "+source)
		return err
	case "rebase":
		if _, err := g.run(ctx, "rebase", source); err != nil {
			return err
		}
		return nil
	default: // "merge"
		_, err := g.run(ctx, "merge", "--no-edit", source)
		return err
	}
}

// CheckoutFile restores path to its HEAD content, used by WiggumController's
// protected-files enforcement.
func (g *Git) CheckoutFile(ctx context.Context, path string) error {
	_, err := g.run(ctx, "checkout", "--", path)
	return err
}

// Diff returns the unified diff against ref, used for WiggumController
// cycle detection (the caller hashes it).
func (g *Git) Diff(ctx context.Context, ref string) (string, error) {
	return g.run(ctx, "diff", ref)
}

// CurrentBranch returns the branch checked out at Dir, used by
// WiggumController to identify the invoking branch before spawning a
// sandbox attempt.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// DeleteBranch force-deletes a local branch, used by WiggumController to
// remove a spent wiggum/attempt-<n> branch after its worktree is gone.
func (g *Git) DeleteBranch(ctx context.Context, branch string) error {
	_, err := g.run(ctx, "branch", "-D", branch)
	return err
}
