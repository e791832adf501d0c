package wiggum

import (
	"context"
	"fmt"

	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/repolayout"
)

// Controller runs the disposable-worker retry loop described by spec.md
// §4.7. It does not touch the worker/phase machinery: it is invoked as a
// single foreground command against one repository and one task directive.
type Controller struct {
	Git    *repolayout.Git
	Events *eventlog.Log
	Params Params

	// RepoRoot is the repository the invoking branch lives in; sandbox
	// worktrees are created relative to it via Params.SandboxPrefix.
	RepoRoot string
}

// Run executes the retry loop for directive and returns the final list of
// attempts. A nil error with the last attempt's Outcome == OutcomeSuccess
// means the task landed; any other outcome on the final attempt means the
// retry budget was exhausted (WIGGUM_ABORTED already emitted).
func (c *Controller) Run(ctx context.Context, directive string) ([]Attempt, error) {
	invokingBranch, err := c.Git.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("wiggum: resolve invoking branch: %w", err)
	}

	ledger, err := OpenLedger(ctx, c.Params.ledgerPath())
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	wisdomPath := c.RepoRoot + "/" + wisdomFileName

	var attempts []Attempt
	retries := c.Params.retries()

	for n := 1; n <= retries; n++ {
		attempt, err := c.runAttempt(ctx, n, directive, invokingBranch, wisdomPath, ledger)
		if err != nil {
			return attempts, err
		}
		attempts = append(attempts, attempt)

		if attempt.Outcome == OutcomeSuccess {
			return attempts, nil
		}
	}

	c.Events.Emit(eventlog.SourceWiggum, eventlog.KindWiggumAborted, eventlog.SeverityAlert,
		map[string]string{"attempts": fmt.Sprint(len(attempts))})
	return attempts, fmt.Errorf("wiggum: exhausted %d retries without success", retries)
}

// runAttempt executes one full spawn/execute/protect/verify/resolve cycle.
func (c *Controller) runAttempt(ctx context.Context, n int, directive, invokingBranch, wisdomPath string, ledger *Ledger) (Attempt, error) {
	attempt, err := spawn(ctx, c.Git, c.RepoRoot, c.Params.SandboxPrefix, invokingBranch, n, directive, wisdomPath)
	if err != nil {
		return Attempt{}, err
	}
	c.Events.Emit(eventlog.SourceWiggum, eventlog.KindWiggumAttempt, eventlog.SeverityAction,
		map[string]string{"attempt": fmt.Sprint(n), "attempt_id": attempt.ID, "branch": attempt.Branch})

	sandboxGit := repolayout.NewGit(attempt.SandboxPath)

	result, err := runAgent(ctx, attempt.SandboxPath, c.Params.AgentCommand, c.Params.timeout())
	if err != nil {
		destroy(ctx, c.Git, attempt)
		return Attempt{}, err
	}
	if result.TimedOut {
		attempt.Outcome = OutcomeTimeout
		return c.resolveFailure(ctx, attempt, "attempt timed out after "+c.Params.timeout().String(), ledger, wisdomPath)
	}

	if err := protect(ctx, sandboxGit, c.Params.ProtectedFiles); err != nil {
		destroy(ctx, c.Git, attempt)
		return Attempt{}, err
	}

	v, err := verify(ctx, sandboxGit, ledger, attempt.SandboxPath, invokingBranch, c.Params.VerifyCommand)
	if err != nil {
		destroy(ctx, c.Git, attempt)
		return Attempt{}, err
	}
	attempt.Outcome = v.Outcome
	attempt.DiffHash = v.DiffHash

	if v.Outcome == OutcomeSuccess {
		return c.resolveSuccess(ctx, attempt, ledger)
	}
	return c.resolveFailure(ctx, attempt, v.Excerpt, ledger, wisdomPath)
}

// resolveSuccess implements step 5's success path: merge, destroy sandbox,
// emit WIGGUM_SUCCESS.
func (c *Controller) resolveSuccess(ctx context.Context, attempt Attempt, ledger *Ledger) (Attempt, error) {
	if err := ledger.Record(ctx, attempt); err != nil {
		return attempt, err
	}
	if err := c.Git.MergeBranch(ctx, attempt.Branch, c.Params.mergeStrategy()); err != nil {
		return attempt, fmt.Errorf("wiggum: merge attempt branch: %w", err)
	}
	if err := destroy(ctx, c.Git, attempt); err != nil {
		return attempt, err
	}
	c.Events.Emit(eventlog.SourceWiggum, eventlog.KindWiggumSuccess, eventlog.SeveritySuccess,
		map[string]string{"attempt": fmt.Sprint(attempt.Number), "attempt_id": attempt.ID, "diff_hash": attempt.DiffHash})
	return attempt, nil
}

// resolveFailure implements step 5's failure path: append wisdom, destroy
// sandbox, emit the matching failure event.
func (c *Controller) resolveFailure(ctx context.Context, attempt Attempt, excerpt string, ledger *Ledger, wisdomPath string) (Attempt, error) {
	if err := appendWisdom(wisdomPath, attempt, excerpt); err != nil {
		return attempt, err
	}
	if err := ledger.Record(ctx, attempt); err != nil {
		return attempt, err
	}
	if err := destroy(ctx, c.Git, attempt); err != nil {
		return attempt, err
	}

	kind := eventlog.KindWiggumVerifyFailed
	switch attempt.Outcome {
	case OutcomeCycleDetected:
		kind = eventlog.KindWiggumCycle
	case OutcomeTimeout:
		kind = eventlog.KindWiggumTimeout
	}
	c.Events.Emit(eventlog.SourceWiggum, kind, eventlog.SeverityAlert,
		map[string]string{"attempt": fmt.Sprint(attempt.Number), "attempt_id": attempt.ID, "diff_hash": attempt.DiffHash})
	return attempt, nil
}
