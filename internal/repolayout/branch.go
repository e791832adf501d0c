package repolayout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/czarina-dev/czarina/internal/configstore"
)

var featureBranchPattern = regexp.MustCompile(`^cz(\d+)/feat/(.+)$`)
var releaseBranchPattern = regexp.MustCompile(`^cz(\d+)/release/v(.+)$`)

// FeatureBranch returns the enforced branch name for a feature-role worker
// in the given phase: cz<N>/feat/<id>.
func FeatureBranch(phase int, workerID string) string {
	return fmt.Sprintf("cz%d/feat/%s", phase, workerID)
}

// ReleaseBranch returns the enforced omnibus branch name for a phase:
// cz<N>/release/v<X.Y.Z>.
func ReleaseBranch(phase int, version string) string {
	return fmt.Sprintf("cz%d/release/v%s", phase, version)
}

// ValidateBranch checks a worker's configured branch against the naming
// convention in spec.md §4.1 and the omnibus branch for its phase. Returns
// an error identifying InvalidBranchName violations.
func ValidateBranch(w configstore.Worker, phase int, omnibusBranch string) error {
	if w.Role == configstore.RoleIntegration {
		if w.Branch != omnibusBranch {
			return fmt.Errorf("InvalidBranchName: integration worker %q branch %q must equal omnibus branch %q", w.ID, w.Branch, omnibusBranch)
		}
		return nil
	}

	m := featureBranchPattern.FindStringSubmatch(w.Branch)
	if m == nil {
		return fmt.Errorf("InvalidBranchName: worker %q branch %q does not match cz<N>/feat/<id>", w.ID, w.Branch)
	}
	branchPhase, err := strconv.Atoi(m[1])
	if err != nil || branchPhase != phase {
		return fmt.Errorf("InvalidBranchName: worker %q branch %q phase prefix does not match current phase %d", w.ID, w.Branch, phase)
	}
	if m[2] != w.ID {
		return fmt.Errorf("InvalidBranchName: worker %q branch %q id segment does not match worker id", w.ID, w.Branch)
	}
	return nil
}

// ValidateOmnibus checks the release branch naming convention.
func ValidateOmnibus(phase int, branch string) error {
	m := releaseBranchPattern.FindStringSubmatch(branch)
	if m == nil {
		return fmt.Errorf("InvalidBranchName: omnibus branch %q does not match cz<N>/release/v<X.Y.Z>", branch)
	}
	branchPhase, err := strconv.Atoi(m[1])
	if err != nil || branchPhase != phase {
		return fmt.Errorf("InvalidBranchName: omnibus branch %q phase prefix does not match current phase %d", branch, phase)
	}
	return nil
}

// PhaseIsolated reports whether branch belongs to a prefix distinct from any
// other phase's prefix up to /feat/ or /release/, satisfying spec.md §8
// property 2 (no shared prefixes across phases).
func PhaseIsolated(branch string, phase int) bool {
	prefix := fmt.Sprintf("cz%d/", phase)
	return strings.HasPrefix(branch, prefix)
}
