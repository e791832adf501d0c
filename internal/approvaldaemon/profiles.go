package approvaldaemon

import "github.com/czarina-dev/czarina/internal/configstore"

// DefaultProfiles ships two built-in agent profiles (spec.md §4.6, SPEC_FULL
// §6 daemon.agent_profiles). They are pure data, generalized from the gate
// prompt shapes the teacher's own terminal Gater recognizes
// ("[a]ccept [r]eject re[t]ry [s]kip"-style single-key prompts) into
// patterns the daemon matches in another agent's terminal output.
//
// config.json:daemon.agent_profiles overrides or extends these by agent
// kind; a kind absent from both the config and this map has no recognized
// patterns and is left alone by the daemon.
func DefaultProfiles() map[string]configstore.AgentProfile {
	return map[string]configstore.AgentProfile{
		"claude": {
			ApprovalPatterns: map[string]string{
				"file_access": `Do you want to (?:create|edit) .+\?`,
				"edit_accept": `❯\s*1\.\s*Yes`,
				"yes_no":      `\(y/n\)\s*$`,
			},
			KeySequences: map[string]string{
				"file_access": "1\n",
				"edit_accept": "1\n",
				"yes_no":      "y\n",
			},
		},
		"aider": {
			ApprovalPatterns: map[string]string{
				"edit_accept": `Apply edit to .+\? \(Y\)es/\(N\)o`,
				"yes_no":      `\(Y\)es/\(N\)o/\(D\)on't ask again`,
			},
			KeySequences: map[string]string{
				"edit_accept": "Y\n",
				"yes_no":      "Y\n",
			},
		},
	}
}

// ResolveProfile merges a config-declared profile for agentKind over the
// built-in default for the same kind, config values winning field-by-field.
// An agent kind present only in config.json gets exactly what config
// declares, nothing implied.
func ResolveProfile(agentKind string, configured map[string]configstore.AgentProfile) (configstore.AgentProfile, bool) {
	builtin, hasBuiltin := DefaultProfiles()[agentKind]
	custom, hasCustom := configured[agentKind]
	if !hasBuiltin && !hasCustom {
		return configstore.AgentProfile{}, false
	}
	if !hasCustom {
		return builtin, true
	}
	if !hasBuiltin {
		return custom, true
	}
	merged := configstore.AgentProfile{
		ApprovalPatterns: map[string]string{},
		KeySequences:     map[string]string{},
	}
	for k, v := range builtin.ApprovalPatterns {
		merged.ApprovalPatterns[k] = v
	}
	for k, v := range custom.ApprovalPatterns {
		merged.ApprovalPatterns[k] = v
	}
	for k, v := range builtin.KeySequences {
		merged.KeySequences[k] = v
	}
	for k, v := range custom.KeySequences {
		merged.KeySequences[k] = v
	}
	return merged, true
}
