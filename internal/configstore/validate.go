package configstore

import "fmt"

// Validate checks config.json invariants that matter for every downstream
// component: slug shape, worker id uniqueness, and dependency references.
func Validate(cfg *Config) error {
	if cfg.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if cfg.Project.Slug == "" {
		return fmt.Errorf("project.slug is required")
	}
	if !slugPattern.MatchString(cfg.Project.Slug) {
		return fmt.Errorf("project.slug %q must match ^[A-Za-z0-9_-]+$ (dots are forbidden, they corrupt session names)", cfg.Project.Slug)
	}
	if cfg.Project.OmnibusBranch == "" {
		return fmt.Errorf("project.omnibus_branch is required")
	}
	if len(cfg.Workers) == 0 {
		return fmt.Errorf("workers must not be empty")
	}

	seen := make(map[string]bool, len(cfg.Workers))
	for _, w := range cfg.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker with empty id")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate worker id %q", w.ID)
		}
		seen[w.ID] = true
		if w.Role != "" && w.Role != RoleFeature && w.Role != RoleIntegration {
			return fmt.Errorf("worker %q: invalid role %q", w.ID, w.Role)
		}
	}
	for _, w := range cfg.Workers {
		for _, dep := range w.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("worker %q depends on unknown worker %q", w.ID, dep)
			}
			if dep == w.ID {
				return fmt.Errorf("worker %q cannot depend on itself", w.ID)
			}
		}
	}

	switch cfg.PhaseCompletionMode {
	case "", CompletionAny, CompletionAll, CompletionStrict:
	default:
		return fmt.Errorf("invalid phase_completion_mode %q", cfg.PhaseCompletionMode)
	}

	if cfg.Orchestration != nil {
		switch cfg.Orchestration.Mode {
		case "", ModeParallelSpike, ModeSequentialDependencies, ModeHybrid:
		default:
			return fmt.Errorf("invalid orchestration.mode %q", cfg.Orchestration.Mode)
		}
	}

	if cfg.WiggumConfig != nil && cfg.WiggumConfig.MergeStrategy != "" {
		switch cfg.WiggumConfig.MergeStrategy {
		case MergeMerge, MergeSquash, MergeRebase:
		default:
			return fmt.Errorf("invalid wiggum.merge_strategy %q", cfg.WiggumConfig.MergeStrategy)
		}
	}

	return nil
}

// ValidateSlug exposes the slug rule for callers constructing session names
// or branch prefixes outside of a full Config.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q must match ^[A-Za-z0-9_-]+$", slug)
	}
	return nil
}
