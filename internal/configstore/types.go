// Package configstore parses and validates the authoritative .czarina/config.json
// project manifest, and layers operational runtime knobs (tick interval, daemon
// poll interval, log verbosity) over it via environment variables and flags.
//
// config.json itself is a checked-in project artifact, read once at launch and
// treated as read-only for the lifetime of a run (spec.md §5); it is parsed
// directly with encoding/json rather than through viper, mirroring the split
// the teacher keeps between its manifest parsing (internal/nebula) and its
// environment-layered operational settings (internal/config).
package configstore

// OrchestrationMode selects how CzarLoop schedules worker dispatch.
type OrchestrationMode string

const (
	ModeParallelSpike          OrchestrationMode = "parallel_spike"
	ModeSequentialDependencies OrchestrationMode = "sequential_dependencies"
	ModeHybrid                 OrchestrationMode = "hybrid"
)

// CompletionMode selects how a phase's worker completion predicates combine.
type CompletionMode string

const (
	CompletionAny    CompletionMode = "any"
	CompletionAll    CompletionMode = "all"
	CompletionStrict CompletionMode = "strict"
)

// WorkerRole distinguishes ordinary feature workers from integration workers
// that depend on the full set of feature branches.
type WorkerRole string

const (
	RoleFeature     WorkerRole = "feature"
	RoleIntegration WorkerRole = "integration"
)

// MergeStrategy selects how WiggumController lands a successful attempt.
type MergeStrategy string

const (
	MergeMerge  MergeStrategy = "merge"
	MergeSquash MergeStrategy = "squash"
	MergeRebase MergeStrategy = "rebase"
)

// Project describes the overall repository and release under orchestration.
type Project struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Repository      string `json:"repository"`
	OrchestrationDir string `json:"orchestration_dir,omitempty"`
	Version         string `json:"version"`
	Phase           int    `json:"phase"`
	OmnibusBranch   string `json:"omnibus_branch"`
	Description     string `json:"description,omitempty"`
}

// Worker describes a single worker slot in the current phase.
type Worker struct {
	ID           string     `json:"id"`
	Agent        string     `json:"agent"`
	Branch       string     `json:"branch"`
	Description  string     `json:"description,omitempty"`
	Phase        int        `json:"phase,omitempty"`
	Role         WorkerRole `json:"role,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
	TokenBudget  int        `json:"token_budget,omitempty"`
}

// Orchestration holds scheduling-mode knobs for CzarLoop.
type Orchestration struct {
	Mode                     OrchestrationMode `json:"mode,omitempty"`
	AllowParallelWhenPossible bool             `json:"allow_parallel_when_possible,omitempty"`
	TimeoutHours             float64           `json:"timeout_hours,omitempty"`
}

// AgentProfile declares the prompt-recognition vocabulary for one agent kind.
// Added by SPEC_FULL.md §6 to make the daemon.auto_approve sketch concrete.
type AgentProfile struct {
	ApprovalPatterns map[string]string `json:"approval_patterns,omitempty"`
	KeySequences     map[string]string `json:"key_sequences,omitempty"`
}

// Daemon configures the ApprovalDaemon.
type Daemon struct {
	Enabled       bool                    `json:"enabled,omitempty"`
	AutoApprove   []string                `json:"auto_approve,omitempty"`
	AgentProfiles map[string]AgentProfile `json:"agent_profiles,omitempty"`
}

// CzarMonitoring configures phase-hopper watch cadence.
type CzarMonitoring struct {
	Enabled       bool `json:"enabled,omitempty"`
	CheckInterval int  `json:"check_interval,omitempty"`
}

// Hopper configures the two-tier backlog.
type Hopper struct {
	Enabled        bool           `json:"enabled,omitempty"`
	ProjectHopper  string         `json:"project_hopper,omitempty"`
	PhaseHopper    string         `json:"phase_hopper,omitempty"`
	CzarMonitoring CzarMonitoring `json:"czar_monitoring,omitempty"`
}

// Wiggum configures the disposable retry engine.
type Wiggum struct {
	AgentCommand    string        `json:"agent_command,omitempty"`
	SandboxPrefix   string        `json:"sandbox_prefix,omitempty"`
	DefaultRetries  int           `json:"default_retries,omitempty"`
	TimeoutSeconds  int           `json:"timeout_seconds,omitempty"`
	ProtectedFiles  []string      `json:"protected_files,omitempty"`
	VerifyCommand   string        `json:"verify_command,omitempty"`
	MergeStrategy   MergeStrategy `json:"merge_strategy,omitempty"`
	LedgerPath      string        `json:"ledger_path,omitempty"`
}

// PhaseBlueprint is an optional pre-declared next-phase plan.
type PhaseBlueprint struct {
	OmnibusBranch string   `json:"omnibus_branch"`
	Workers       []Worker `json:"workers"`
}

// Config is the full config.json schema. Unknown fields are ignored by
// encoding/json for forward-compatibility, per spec.md §6.
type Config struct {
	Project              Project                   `json:"project"`
	Workers               []Worker                 `json:"workers"`
	Orchestration         *Orchestration            `json:"orchestration,omitempty"`
	Daemon                *Daemon                   `json:"daemon,omitempty"`
	PhaseCompletionMode   CompletionMode            `json:"phase_completion_mode,omitempty"`
	HopperConfig          *Hopper                   `json:"hopper,omitempty"`
	WiggumConfig          *Wiggum                   `json:"wiggum,omitempty"`
	Phases                map[string]PhaseBlueprint `json:"phases,omitempty"`

	// Passed through untouched to external collaborators; never interpreted
	// by the core (spec.md §6).
	AgentRules   map[string]any `json:"agent_rules,omitempty"`
	Memory       map[string]any `json:"memory,omitempty"`
	RoleMappings map[string]any `json:"role_mappings,omitempty"`
}

// EffectivePhaseCompletionMode returns the configured mode or the "any"
// default spec.md §6 specifies.
func (c *Config) EffectivePhaseCompletionMode() CompletionMode {
	if c.PhaseCompletionMode == "" {
		return CompletionAny
	}
	return c.PhaseCompletionMode
}

// WorkerByID looks up a worker by id, returning ok=false if absent.
func (c *Config) WorkerByID(id string) (Worker, bool) {
	for _, w := range c.Workers {
		if w.ID == id {
			return w, true
		}
	}
	return Worker{}, false
}
