package wiggum

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/czarina-dev/czarina/internal/repolayout"
)

// missionBriefName is the file a spawned sandbox consults for cumulative
// wisdom from earlier failed attempts, per spec.md §4.7 step 1.
const missionBriefName = ".czarina/mission_brief.md"

// wisdomFileName is the persistent, cross-run wisdom ledger appended to on
// every failure (spec.md §4.7 step 5).
const wisdomFileName = ".czarina/wiggum-wisdom.md"

// spawn creates attempt n's sandbox worktree off invokingBranch's current
// HEAD and seeds its mission brief with everything accumulated so far.
func spawn(ctx context.Context, git *repolayout.Git, repoRoot, sandboxPrefix, invokingBranch string, n int, directive, wisdomPath string) (Attempt, error) {
	branch := fmt.Sprintf("wiggum/attempt-%d", n)
	path := filepath.Join(sandboxPrefix, fmt.Sprintf("attempt-%d", n))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Attempt{}, fmt.Errorf("wiggum: create sandbox parent dir: %w", err)
	}
	if err := git.WorktreeAdd(ctx, path, branch, invokingBranch); err != nil {
		return Attempt{}, fmt.Errorf("wiggum: spawn sandbox worktree: %w", err)
	}

	if err := writeMissionBrief(path, directive, wisdomPath); err != nil {
		return Attempt{}, err
	}

	return Attempt{ID: newAttemptID(), Number: n, SandboxPath: path, Branch: branch}, nil
}

// writeMissionBrief writes the task directive plus any accumulated wisdom
// notes into the sandbox worktree. Append semantics per step 1 refer to the
// persistent wisdom ledger (wisdomFileName); the mission brief itself is
// regenerated fresh each attempt from the directive and current wisdom.
func writeMissionBrief(sandboxPath, directive, wisdomPath string) error {
	dir := filepath.Join(sandboxPath, filepath.Dir(missionBriefName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("wiggum: create mission brief dir: %w", err)
	}

	content := "# Mission\n\n" + directive + "\n"
	if wisdom, err := os.ReadFile(wisdomPath); err == nil && len(wisdom) > 0 {
		content += "\n# Accumulated wisdom from prior attempts\n\n" + string(wisdom)
	}

	if err := os.WriteFile(filepath.Join(sandboxPath, missionBriefName), []byte(content), 0o644); err != nil {
		return fmt.Errorf("wiggum: write mission brief: %w", err)
	}
	return nil
}

// appendWisdom appends one paragraph summarizing a failed attempt to the
// persistent wisdom ledger (not the sandbox's own mission brief, which is
// destroyed with the worktree).
func appendWisdom(wisdomPath string, a Attempt, excerpt string) error {
	if err := os.MkdirAll(filepath.Dir(wisdomPath), 0o755); err != nil {
		return fmt.Errorf("wiggum: create wisdom dir: %w", err)
	}
	f, err := os.OpenFile(wisdomPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("wiggum: open wisdom ledger: %w", err)
	}
	defer f.Close()

	note := fmt.Sprintf(
		"## Attempt %d — %s\n\nDiff hash: %s\n\n%s\n\n",
		a.Number, a.Outcome, a.DiffHash, excerpt,
	)
	if _, err := f.WriteString(note); err != nil {
		return fmt.Errorf("wiggum: append wisdom note: %w", err)
	}
	return nil
}

// destroy removes the sandbox worktree and deletes its attempt branch,
// always called after step 5 regardless of outcome (spec.md §4.7 invariant).
func destroy(ctx context.Context, git *repolayout.Git, a Attempt) error {
	if err := git.WorktreeRemove(ctx, a.SandboxPath, true); err != nil {
		return fmt.Errorf("wiggum: remove sandbox worktree: %w", err)
	}
	if err := git.DeleteBranch(ctx, a.Branch); err != nil {
		return fmt.Errorf("wiggum: delete attempt branch: %w", err)
	}
	return nil
}
