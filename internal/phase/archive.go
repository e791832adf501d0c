package phase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

// Controller owns phase-state.json and the archive/init lifecycle
// (spec.md §4.1, §4.4). It is the sole writer of that file, matching
// spec.md §7's single-writer-file ownership table.
type Controller struct {
	Layout   *repolayout.Layout
	Git      *repolayout.Git
	Sessions *session.Driver
	Events   *eventlog.Log
	ForceClean bool
}

// Archive implements PhaseController.archive(phaseN, version): kill
// sessions, copy state into a phase archive directory, generate
// PHASE_SUMMARY.md, and clean worktrees (spec.md §4.4 steps 1-6).
func (c *Controller) Archive(ctx context.Context, cfg *configstore.Config, snap *workerstatus.Snapshot, phaseN int, version string) error {
	// 1. Kill all sessions owned by this phase.
	for _, w := range cfg.Workers {
		name := session.Name(cfg.Project.Slug, w.ID)
		if err := c.Sessions.Kill(ctx, name); err != nil && c.Events != nil {
			c.Events.Emit(eventlog.SourceCzar, "SESSION_KILL_FAILED", eventlog.SeverityError,
				map[string]string{"worker": w.ID, "error": err.Error()})
		}
	}

	// 2. Stopping ApprovalDaemon for this phase is the caller's
	// responsibility (it owns the daemon's lifecycle); Archive only
	// guarantees sessions are gone so the daemon has nothing left to watch.

	// 3. Copy config.json, workers/, logs/, status/ into the archive dir via
	// a temp dir + atomic rename, matching spec.md's other atomic-write idioms.
	archiveDir := c.Layout.PhaseArchiveDir(phaseN, version)
	if err := os.MkdirAll(c.Layout.PhasesDir(), 0o755); err != nil {
		return fmt.Errorf("phase: create phases dir: %w", err)
	}
	tmpDir, err := os.MkdirTemp(c.Layout.PhasesDir(), ".archive.tmp-*")
	if err != nil {
		return fmt.Errorf("phase: create temp archive dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, rel := range []string{"config.json", "workers", "logs", "status"} {
		src := filepath.Join(c.Layout.CzarinaDir, rel)
		dst := filepath.Join(tmpDir, rel)
		if err := copyPath(src, dst); err != nil {
			return fmt.Errorf("phase: archive %s: %w", rel, err)
		}
	}

	// 4. Generate PHASE_SUMMARY.md.
	summary := BuildSummary(cfg, snap)
	if err := os.WriteFile(filepath.Join(tmpDir, "PHASE_SUMMARY.md"), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("phase: write PHASE_SUMMARY.md: %w", err)
	}

	if err := os.Rename(tmpDir, archiveDir); err != nil {
		return fmt.Errorf("phase: rename archive into place: %w", err)
	}
	if c.Events != nil {
		c.Events.Emit(eventlog.SourceCzar, eventlog.KindPhaseArchived, eventlog.SeveritySuccess,
			map[string]string{"phase": fmt.Sprintf("%d", phaseN), "version": version, "dir": archiveDir})
	}

	// 5. Clean worktrees: remove clean ones, keep dirty ones (logged).
	for _, w := range cfg.Workers {
		if err := repolayout.CleanupWorktree(ctx, c.Git, c.Layout, w.ID, c.ForceClean, c.Events); err != nil {
			return fmt.Errorf("phase: cleanup worktree for %s: %w", w.ID, err)
		}
	}

	// 6. Empty workers/ to signal "previous phase closed" to subsequent init.
	if err := emptyDir(c.Layout.WorkersDir()); err != nil {
		return fmt.Errorf("phase: empty workers dir: %w", err)
	}

	return nil
}

// BuildSummary renders PHASE_SUMMARY.md: each worker, terminal status,
// commit count, and whether it merged (spec.md §4.4 step 4).
func BuildSummary(cfg *configstore.Config, snap *workerstatus.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Phase %d summary\n\n", cfg.Project.Phase)
	fmt.Fprintf(&b, "Omnibus branch: `%s`\n\n", cfg.Project.OmnibusBranch)
	fmt.Fprintf(&b, "| Worker | Status | Commits | Merged |\n|---|---|---|---|\n")
	for _, w := range cfg.Workers {
		status := "unknown"
		commits := 0
		merged := "no"
		if snap != nil {
			if ws, ok := snap.Workers[w.ID]; ok {
				status = string(ws.Status)
				commits = ws.Commits
				if ws.Completion.BranchMerged {
					merged = "yes"
				}
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", w.ID, status, commits, merged)
	}
	return b.String()
}

func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := copyPath(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// CanInit reports whether a fresh phase init may proceed without --force:
// true if .czarina/workers/ is absent or empty ("prior phase closed"),
// false if it's non-empty (spec.md §4.4 "Phase init").
func CanInit(workersDir string) (bool, error) {
	entries, err := os.ReadDir(workersDir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("phase: read %s: %w", workersDir, err)
	}
	return len(entries) == 0, nil
}
