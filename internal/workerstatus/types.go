// Package workerstatus materializes each worker's status and health from
// activity signals (session liveness, git reflog, worker log mtime) and
// persists the result atomically to status/worker-status.json
// (spec.md §4.3, §4.4). It also evaluates completion signals and the
// phase-completion predicate used by CzarLoop.
package workerstatus

import "time"

// Status is a worker's lifecycle stage.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWorking  Status = "working"
	StatusIdle     Status = "idle"
	StatusComplete Status = "complete" // terminal, set only by the worker's own report
)

// Health is a worker's activity health.
type Health string

const (
	HealthHealthy Health = "healthy"
	HealthSlow    Health = "slow"
	HealthStuck   Health = "stuck"
	HealthCrashed Health = "crashed"
)

// Default thresholds for health derivation (spec.md §4.3).
const (
	DefaultWorkingThreshold = 1 * time.Hour
	DefaultSlowThreshold    = 2 * time.Hour
	DefaultStuckThreshold   = 30 * time.Minute
)

// CompletionMode parametrises the phase-completion predicate (spec.md §4.4).
type CompletionMode string

const (
	CompletionAny    CompletionMode = "any"
	CompletionAll    CompletionMode = "all"
	CompletionStrict CompletionMode = "strict"
)

// Signals are the raw inputs read per worker before deriving status/health
// (spec.md §4.3 "Inputs per worker").
type Signals struct {
	SessionAlive    bool
	LastActivity    time.Time // max of newest branch reflog entry and worker log mtime; no status-file mtime
	CommitsOnBranch int       // ahead of the omnibus branch
	PreviousStatus  Status    // last known status, used when session-alive=false
}

// CompletionSignals records the three independent pieces of completion
// evidence spec.md §4.4 defines.
type CompletionSignals struct {
	LogMarker    bool
	BranchMerged bool
	StatusFile   bool
}

// Satisfies reports whether these signals satisfy the phase completion
// predicate for the given mode.
func (c CompletionSignals) Satisfies(mode CompletionMode) bool {
	switch mode {
	case CompletionAll:
		return c.LogMarker && c.BranchMerged && c.StatusFile
	case CompletionStrict:
		return c.LogMarker && (c.BranchMerged || c.StatusFile)
	case CompletionAny, "":
		return c.LogMarker || c.BranchMerged || c.StatusFile
	default:
		return c.LogMarker || c.BranchMerged || c.StatusFile
	}
}

// WorkerState is one worker's materialized status/health, the unit recorded
// in worker-status.json.
type WorkerState struct {
	WorkerID     string    `json:"worker_id"`
	Status       Status    `json:"status"`
	Health       Health    `json:"health"`
	SessionAlive bool      `json:"session_alive"`
	LastActivity time.Time `json:"last_activity"`
	Commits      int       `json:"commits"`
	Completion   CompletionSignals `json:"completion"`
}

// Snapshot is the full contents of status/worker-status.json — the single
// artifact CzarLoop writes each tick and every other component reads.
type Snapshot struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Phase       int                    `json:"phase"`
	Workers     map[string]WorkerState `json:"workers"`
}
