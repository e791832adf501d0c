package repolayout

import (
	"context"
	"fmt"
	"os"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
)

// Worktree describes a currently registered worker worktree.
type Worktree struct {
	WorkerID string
	Path     string
	Branch   string
	Owner    string
}

// EnsureBranches implements spec.md §4.1's branch bootstrap: each declared
// worker branch either exists locally, exists on remote (fetched), or is
// created from the remote default branch; new branches are pushed if a
// remote is configured. A missing remote is not an error. Push failures are
// downgraded to a logged BRANCH_PUSH_SKIPPED event rather than a hard error,
// per spec.md's error table ("warn, continue locally"); log may be nil.
func EnsureBranches(ctx context.Context, g *Git, cfg *configstore.Config, remote string, log *eventlog.Log) error {
	for _, w := range cfg.Workers {
		if g.LocalBranchExists(ctx, w.Branch) {
			continue
		}
		if remote != "" && g.HasRemote(ctx, remote) && g.RemoteBranchExists(ctx, remote, w.Branch) {
			if err := g.Fetch(ctx, remote, w.Branch); err != nil {
				return fmt.Errorf("repolayout: fetch %s: %w", w.Branch, err)
			}
			if err := g.CreateLocalBranch(ctx, w.Branch, remote+"/"+w.Branch); err != nil {
				return fmt.Errorf("repolayout: create local branch %s from remote: %w", w.Branch, err)
			}
			continue
		}

		startPoint := ""
		if remote != "" && g.HasRemote(ctx, remote) {
			if base, err := g.DefaultRemoteBranch(ctx, remote); err == nil {
				startPoint = remote + "/" + base
			}
		}
		if err := g.CreateLocalBranch(ctx, w.Branch, startPoint); err != nil {
			return fmt.Errorf("repolayout: create branch %s: %w", w.Branch, err)
		}
		if remote != "" && g.HasRemote(ctx, remote) {
			if err := g.Push(ctx, remote, w.Branch); err != nil && log != nil {
				log.Emit(eventlog.SourceCzar, eventlog.KindBranchPushSkipped, eventlog.SeverityAlert,
					map[string]string{"branch": w.Branch, "error": err.Error()})
			}
		}
	}
	return nil
}

// EnsureWorktrees creates one worktree per worker under layout.WorktreesDir(),
// recording an owner lockfile, per SPEC_FULL.md §4.1's supplement. gitOK
// indicates whether the repository is a git repo at all; when false, worker
// worktree creation is skipped entirely (degraded non-git mode, spec.md §4.1).
func EnsureWorktrees(ctx context.Context, g *Git, l *Layout, cfg *configstore.Config, gitOK bool) ([]Worktree, error) {
	if !gitOK {
		return nil, nil
	}
	var created []Worktree
	for _, w := range cfg.Workers {
		path := l.WorktreePath(w.ID)
		if _, err := os.Stat(path); err == nil {
			created = append(created, Worktree{WorkerID: w.ID, Path: path, Branch: w.Branch})
			continue
		}
		if err := g.WorktreeAdd(ctx, path, w.Branch, ""); err != nil {
			return created, fmt.Errorf("repolayout: create worktree for %s: %w", w.ID, err)
		}
		if err := os.WriteFile(l.WorktreeOwnerFile(w.ID), []byte(w.ID+"\n"), 0o644); err != nil {
			return created, fmt.Errorf("repolayout: write owner lockfile for %s: %w", w.ID, err)
		}
		created = append(created, Worktree{WorkerID: w.ID, Path: path, Branch: w.Branch, Owner: w.ID})
	}
	return created, nil
}

// CleanupWorktree removes a worker's worktree at phase close. If the
// worktree is dirty and force is false, it is kept and WORKTREE_DIRTY_KEPT
// is emitted rather than discarding work (spec.md §7 WorktreeDirty policy).
func CleanupWorktree(ctx context.Context, g *Git, l *Layout, workerID string, force bool, log *eventlog.Log) error {
	path := l.WorktreePath(workerID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if !force {
		dirty, err := g.IsWorktreeDirty(ctx, path)
		if err != nil {
			return fmt.Errorf("repolayout: check worktree dirty for %s: %w", workerID, err)
		}
		if dirty {
			if log != nil {
				log.Emit(eventlog.SourceCzar, eventlog.KindWorktreeDirtyKept, eventlog.SeverityAlert,
					map[string]string{"worker": workerID, "path": path})
			}
			return nil
		}
	}
	return g.WorktreeRemove(ctx, path, force)
}
