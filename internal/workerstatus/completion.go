package workerstatus

import (
	"context"

	"github.com/czarina-dev/czarina/internal/eventlog"
)

// LogMarker reports whether a WORKER_COMPLETE event for workerID exists
// anywhere in the event log (spec.md §4.4). The "worker" metadata key
// matches eventlog.Log.Emit's own routing key for source=worker events
// (used to split per-worker human logs), kept consistent here so a single
// metadata convention identifies a worker across the whole event stream.
func LogMarker(records []eventlog.Record, workerID string) bool {
	for _, r := range records {
		if r.Event == eventlog.KindWorkerComplete && r.Metadata["worker"] == workerID {
			return true
		}
	}
	return false
}

// BranchMerged reports whether the worker's branch is an ancestor of the
// current omnibus branch.
func BranchMerged(ctx context.Context, git interface {
	IsAncestor(ctx context.Context, ancestor, descendant string) bool
}, workerBranch, omnibusBranch string) bool {
	return git.IsAncestor(ctx, workerBranch, omnibusBranch)
}

// StatusFileComplete reports whether a previous snapshot already recorded
// this worker's own completion report (status="complete", a terminal state
// distinct from idle — set only by the worker itself, never derived).
func StatusFileComplete(previous *Snapshot, workerID string) bool {
	if previous == nil {
		return false
	}
	w, ok := previous.Workers[workerID]
	return ok && w.Status == StatusComplete
}

// EvaluateCompletion gathers the three independent completion signals for
// one worker (spec.md §4.4). gitOK false (non-git/degraded mode, spec.md
// §7 "Non-git and degraded modes") skips the BranchMerged check, falling
// back to LogMarker/StatusFile only.
func EvaluateCompletion(ctx context.Context, records []eventlog.Record, git interface {
	IsAncestor(ctx context.Context, ancestor, descendant string) bool
}, gitOK bool, workerBranch, omnibusBranch string, previous *Snapshot, workerID string) CompletionSignals {
	sig := CompletionSignals{
		LogMarker:  LogMarker(records, workerID),
		StatusFile: StatusFileComplete(previous, workerID),
	}
	if gitOK && git != nil {
		sig.BranchMerged = BranchMerged(ctx, git, workerBranch, omnibusBranch)
	}
	return sig
}
