// Package phase implements PhaseController: phase initialization, the
// phase-state.json single-writer file, completion archival, and
// PHASE_SUMMARY.md generation (spec.md §4.1, §4.4).
package phase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// State is the full contents of status/phase-state.json. The file's actual
// wire shape mixes fixed keys (current_phase, last_check) with dynamic
// per-phase keys (phase_N_complete, phase_N_launched) per spec.md §4.1's
// literal layout comment; Complete/Launched hold the parsed form of those
// dynamic keys keyed by phase number.
type State struct {
	CurrentPhase int
	LastCheck    time.Time
	Complete     map[int]bool
	Launched     map[int]bool
}

var phaseKeyPattern = regexp.MustCompile(`^phase_(\d+)_(complete|launched)$`)

func (s State) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"current_phase": s.CurrentPhase,
		"last_check":    s.LastCheck,
	}
	for n, v := range s.Complete {
		out[fmt.Sprintf("phase_%d_complete", n)] = v
	}
	for n, v := range s.Launched {
		out[fmt.Sprintf("phase_%d_launched", n)] = v
	}
	return json.Marshal(out)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Complete = make(map[int]bool)
	s.Launched = make(map[int]bool)
	for key, value := range raw {
		switch key {
		case "current_phase":
			if err := json.Unmarshal(value, &s.CurrentPhase); err != nil {
				return err
			}
			continue
		case "last_check":
			if err := json.Unmarshal(value, &s.LastCheck); err != nil {
				return err
			}
			continue
		}
		m := phaseKeyPattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			continue
		}
		if m[2] == "complete" {
			s.Complete[n] = b
		} else {
			s.Launched[n] = b
		}
	}
	return nil
}

// IsComplete reports whether phase n has already been marked complete.
func (s *State) IsComplete(n int) bool {
	if s == nil || s.Complete == nil {
		return false
	}
	return s.Complete[n]
}

// MarkComplete records phase n as complete. Idempotent: returns false if it
// was already complete, so callers can detect the false->true transition
// spec.md §4.4 requires for exactly-once PHASE_COMPLETE emission.
func (s *State) MarkComplete(n int, now time.Time) (transitioned bool) {
	if s.Complete == nil {
		s.Complete = make(map[int]bool)
	}
	if s.Complete[n] {
		return false
	}
	s.Complete[n] = true
	s.LastCheck = now
	return true
}

// MarkLaunched records phase n as launched.
func (s *State) MarkLaunched(n int, now time.Time) {
	if s.Launched == nil {
		s.Launched = make(map[int]bool)
	}
	s.Launched[n] = true
	s.LastCheck = now
}

// LoadState reads phase-state.json. A missing file returns a zero-value
// State for phase 0 (pre-launch), not an error.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Complete: map[int]bool{}, Launched: map[int]bool{}}, nil
		}
		return nil, fmt.Errorf("phase: read %s: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("phase: parse %s: %w", path, err)
	}
	return &s, nil
}

// SaveState writes State atomically (write temp + rename), the pattern
// shared with every other single-writer state file in this module.
func SaveState(path string, s *State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("phase: marshal state: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".phase-state.json.tmp-*")
	if err != nil {
		return fmt.Errorf("phase: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("phase: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("phase: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("phase: rename into place: %w", err)
	}
	return nil
}
