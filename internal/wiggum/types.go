// Package wiggum implements WiggumController: a disposable-worker retry
// engine independent of the worker/phase machinery (spec.md §4.7). Each
// attempt runs in a fresh sandbox worktree, is verified by cycle detection
// plus a test gate, and either merges on success or accumulates a wisdom
// note fed into the next attempt's mission brief.
package wiggum

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal disposition of one attempt.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeCycleDetected Outcome = "cycle-detected"
	OutcomeVerifyFailed  Outcome = "verify-failed"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeAborted       Outcome = "aborted"
)

// Attempt records one iteration of the retry loop. ID disambiguates the
// attempt across restarts of the controller (the ledger is keyed on
// Number alone, but ID is what gets logged to the event
// stream so two attempts never look identical in an external viewer).
type Attempt struct {
	ID          string
	Number      int
	SandboxPath string
	Branch      string
	Outcome     Outcome
	DiffHash    string
	Wisdom      string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// newAttemptID returns a fresh attempt identifier.
func newAttemptID() string {
	return uuid.NewString()
}

// Params mirrors config.json:wiggum (spec.md §6), resolved with defaults
// applied by Controller.
type Params struct {
	AgentCommand   string
	SandboxPrefix  string
	DefaultRetries int
	TimeoutSeconds int
	ProtectedFiles []string
	VerifyCommand  string
	MergeStrategy  string // merge | squash | rebase
	LedgerPath     string
}

const (
	DefaultRetries       = 3
	DefaultTimeoutSecond = 600
)

func (p Params) retries() int {
	if p.DefaultRetries > 0 {
		return p.DefaultRetries
	}
	return DefaultRetries
}

func (p Params) timeout() time.Duration {
	if p.TimeoutSeconds > 0 {
		return time.Duration(p.TimeoutSeconds) * time.Second
	}
	return DefaultTimeoutSecond * time.Second
}

func (p Params) mergeStrategy() string {
	if p.MergeStrategy != "" {
		return p.MergeStrategy
	}
	return "merge"
}

func (p Params) ledgerPath() string {
	if p.LedgerPath != "" {
		return p.LedgerPath
	}
	return p.SandboxPrefix + "/ledger.db"
}
