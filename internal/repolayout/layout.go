// Package repolayout owns everything under a project's .czarina/ directory:
// directory scaffolding, branch-naming enforcement, worktree lifecycle, and
// phase archives. It is the sole writer of that tree (spec.md §3 Ownership).
package repolayout

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Layout resolves every well-known path under a project's .czarina/ root.
type Layout struct {
	RepoRoot   string // absolute path to the git repository root
	CzarinaDir string // absolute path to .czarina (or an override directory)
}

// New returns a Layout rooted at repoRoot, using czarinaDir (typically
// filepath.Join(repoRoot, ".czarina")) for orchestration state, honoring a
// project's optional orchestration_dir override.
func New(repoRoot, czarinaDir string) *Layout {
	if czarinaDir == "" {
		czarinaDir = filepath.Join(repoRoot, ".czarina")
	}
	return &Layout{RepoRoot: repoRoot, CzarinaDir: czarinaDir}
}

func (l *Layout) ConfigPath() string           { return filepath.Join(l.CzarinaDir, "config.json") }
func (l *Layout) WorkersDir() string           { return filepath.Join(l.CzarinaDir, "workers") }
func (l *Layout) WorkerPromptPath(id string) string {
	return filepath.Join(l.WorkersDir(), id+".md")
}
func (l *Layout) WorktreesDir() string         { return filepath.Join(l.CzarinaDir, "worktrees") }
func (l *Layout) WorktreePath(id string) string { return filepath.Join(l.WorktreesDir(), id) }
func (l *Layout) WorktreeOwnerFile(id string) string {
	return filepath.Join(l.WorktreePath(id), ".czarina-owner")
}
func (l *Layout) LogsDir() string              { return filepath.Join(l.CzarinaDir, "logs") }
func (l *Layout) StatusDir() string            { return filepath.Join(l.CzarinaDir, "status") }
func (l *Layout) WorkerStatusPath() string      { return filepath.Join(l.StatusDir(), "worker-status.json") }
func (l *Layout) PhaseStatePath() string        { return filepath.Join(l.StatusDir(), "phase-state.json") }
func (l *Layout) DecisionsLogPath() string {
	return filepath.Join(l.StatusDir(), "autonomous-decisions.log")
}
func (l *Layout) HopperDir() string  { return filepath.Join(l.CzarinaDir, "hopper") }
func (l *Layout) PhasesDir() string  { return filepath.Join(l.CzarinaDir, "phases") }
func (l *Layout) PhaseArchiveDir(phase int, version string) string {
	return filepath.Join(l.PhasesDir(), fmt.Sprintf("phase-%d-v%s", phase, version))
}

// Scaffold creates every well-known directory under CzarinaDir, idempotently.
func (l *Layout) Scaffold() error {
	dirs := []string{
		l.CzarinaDir,
		l.WorkersDir(),
		l.WorktreesDir(),
		l.LogsDir(),
		filepath.Join(l.LogsDir(), "workers"),
		l.StatusDir(),
		l.HopperDir(),
		l.PhasesDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("repolayout: create %s: %w", d, err)
		}
	}
	return nil
}

var workerIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateWorkerID enforces the worker id shape from spec.md §3.
func ValidateWorkerID(id string) error {
	if !workerIDPattern.MatchString(id) {
		return fmt.Errorf("repolayout: worker id %q must match ^[a-z0-9-]+$", id)
	}
	return nil
}
