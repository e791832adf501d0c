package wiggum

import (
	"context"
	"fmt"

	"github.com/czarina-dev/czarina/internal/repolayout"
)

// protect reverts any change to a protected file inside the sandbox,
// per spec.md §4.7 step 3, before verification looks at the diff.
func protect(ctx context.Context, git *repolayout.Git, protectedFiles []string) error {
	for _, f := range protectedFiles {
		if err := git.CheckoutFile(ctx, f); err != nil {
			// A protected file the agent never touched has nothing to revert;
			// git checkout -- on a clean path still succeeds, so an error here
			// means something else went wrong.
			return fmt.Errorf("wiggum: revert protected file %q: %w", f, err)
		}
	}
	return nil
}

// verdict is the result of step 4's verification pipeline.
type verdict struct {
	Outcome  Outcome
	DiffHash string
	Excerpt  string
}

// verify implements spec.md §4.7 step 4: cycle detection first, then the
// verify_command gate.
func verify(ctx context.Context, git *repolayout.Git, ledger *Ledger, sandboxPath, headRef, verifyCommand string) (verdict, error) {
	diff, err := git.Diff(ctx, headRef)
	if err != nil {
		return verdict{}, fmt.Errorf("wiggum: compute diff: %w", err)
	}
	hash := HashDiff(diff)

	seen, err := ledger.SeenHash(ctx, hash)
	if err != nil {
		return verdict{}, err
	}
	if seen {
		return verdict{Outcome: OutcomeCycleDetected, DiffHash: hash}, nil
	}

	if verifyCommand == "" {
		return verdict{Outcome: OutcomeSuccess, DiffHash: hash}, nil
	}

	result, err := runVerify(ctx, sandboxPath, verifyCommand)
	if err != nil {
		return verdict{}, err
	}
	if result.ExitCode != 0 {
		return verdict{Outcome: OutcomeVerifyFailed, DiffHash: hash, Excerpt: tailLines(result.Output, 20)}, nil
	}
	return verdict{Outcome: OutcomeSuccess, DiffHash: hash}, nil
}
