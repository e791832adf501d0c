// Package launch implements LaunchController: the boot sequence that turns
// a validated config.json into a running phase — branches, worktrees,
// sessions, the approval daemon, and CzarLoop (spec.md's component table,
// "LaunchController").
package launch

import (
	"context"
	"fmt"

	"github.com/czarina-dev/czarina/internal/approvaldaemon"
	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/depgraph"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/session"
)

// Options controls how Launch wires a phase's components.
type Options struct {
	// Remote is the git remote name consulted during branch bootstrap
	// (empty disables remote interaction entirely).
	Remote string
	// Go, when true, additionally starts CzarLoop as a background
	// supervisor (the `launch --go` CLI flag).
	Go bool
}

// Result reports what Launch brought up, for the `launch` CLI command to
// print and for tests to assert against.
type Result struct {
	Worktrees    []repolayout.Worktree
	SessionNames []string
	DaemonStarted bool
}

// Validate runs every pre-launch check spec.md requires before any session
// is started: config validity, branch naming, and dependency acyclicity.
// A DependencyCycle or InvalidBranchName failure here must map to CLI exit
// code 2 (validation error), never 1.
func Validate(cfg *configstore.Config) error {
	if err := configstore.Validate(cfg); err != nil {
		return err
	}
	for _, w := range cfg.Workers {
		if err := repolayout.ValidateBranch(w, cfg.Project.Phase, cfg.Project.OmnibusBranch); err != nil {
			return err
		}
	}
	if err := repolayout.ValidateOmnibus(cfg.Project.Phase, cfg.Project.OmnibusBranch); err != nil {
		return err
	}
	graph, err := depgraph.Build(cfg.Workers)
	if err != nil {
		return err
	}
	if err := graph.Validate(); err != nil {
		return fmt.Errorf("DependencyCycle: %w", err)
	}
	return nil
}

// Launch implements the boot sequence: ensure branches, create worktrees,
// start one session per worker, and (when enabled in config, whether or not
// gitOK) start the approval daemon. gitOK indicates whether repoRoot is a git repository;
// when false, worktree creation is skipped and every worker session runs in
// repoRoot directly (spec.md §4.1 degraded mode).
func Launch(ctx context.Context, layout *repolayout.Layout, git *repolayout.Git, sessions *session.Driver, events *eventlog.Log, cfg *configstore.Config, gitOK bool, opts Options) (Result, error) {
	if err := Validate(cfg); err != nil {
		return Result{}, err
	}

	if gitOK {
		if err := repolayout.EnsureBranches(ctx, git, cfg, opts.Remote, events); err != nil {
			return Result{}, fmt.Errorf("launch: ensure branches: %w", err)
		}
	}

	worktrees, err := repolayout.EnsureWorktrees(ctx, git, layout, cfg, gitOK)
	if err != nil {
		return Result{}, fmt.Errorf("launch: ensure worktrees: %w", err)
	}

	var sessionNames []string
	for _, w := range cfg.Workers {
		name := session.Name(cfg.Project.Slug, w.ID)
		dir := layout.RepoRoot
		if gitOK {
			dir = layout.WorktreePath(w.ID)
		} else if sessions.Alive(ctx, name) {
			// No worktree path to confirm the existing session is this
			// worker's own; treat the collision as foreign rather than
			// silently attaching to it.
			name = session.Disambiguate(name)
		}
		if err := sessions.Start(ctx, name, dir, ""); err != nil {
			return Result{Worktrees: worktrees, SessionNames: sessionNames}, fmt.Errorf("launch: start session for %s: %w", w.ID, err)
		}
		sessionNames = append(sessionNames, name)
	}

	result := Result{Worktrees: worktrees, SessionNames: sessionNames}

	if cfg.Daemon != nil && cfg.Daemon.Enabled {
		selfExe, exeErr := selfExecutable()
		if exeErr == nil {
			if err := approvaldaemon.StartDetached(layout.CzarinaDir, selfExe, []string{"daemon", "run"}); err == nil {
				result.DaemonStarted = true
			}
		}
	}

	events.Emit(eventlog.SourceCzar, eventlog.KindPhaseLaunched, eventlog.SeverityAction,
		map[string]string{"phase": fmt.Sprint(cfg.Project.Phase), "omnibus": cfg.Project.OmnibusBranch})

	if opts.Go {
		if selfExe, exeErr := selfExecutable(); exeErr == nil {
			StartCzarLoopDetached(layout.CzarinaDir, selfExe)
		}
	}

	return result, nil
}
