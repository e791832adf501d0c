package hopper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ledgerRecord is what's persisted per item so re-assessment is skipped
// when a file hasn't changed (spec.md §4.5 "idempotent; re-assessment only
// runs when file mtime changes").
type ledgerRecord struct {
	ModTimeUnix int64   `json:"mod_time_unix"`
	Outcome     Outcome `json:"outcome"`
}

// Ledger tracks the last assessment outcome per project-tier item path.
type Ledger struct {
	Records map[string]ledgerRecord `json:"records"`
}

func ledgerPath(hopperDir string) string {
	return filepath.Join(hopperDir, ".assessed.json")
}

// LoadLedger reads the assessment ledger, returning an empty one if absent.
func LoadLedger(hopperDir string) (*Ledger, error) {
	data, err := os.ReadFile(ledgerPath(hopperDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{Records: make(map[string]ledgerRecord)}, nil
		}
		return nil, fmt.Errorf("hopper: read ledger: %w", err)
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("hopper: parse ledger: %w", err)
	}
	if l.Records == nil {
		l.Records = make(map[string]ledgerRecord)
	}
	return &l, nil
}

// Save persists the ledger atomically (write temp + rename).
func (l *Ledger) Save(hopperDir string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("hopper: marshal ledger: %w", err)
	}
	path := ledgerPath(hopperDir)
	tmp, err := os.CreateTemp(hopperDir, ".assessed.json.tmp-*")
	if err != nil {
		return fmt.Errorf("hopper: create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("hopper: write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("hopper: close temp ledger: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("hopper: rename ledger into place: %w", err)
	}
	return nil
}

// NeedsAssessment reports whether item has no recorded outcome, or its mtime
// has advanced since the recorded assessment.
func (l *Ledger) NeedsAssessment(item *Item) bool {
	rec, ok := l.Records[item.Path]
	if !ok {
		return true
	}
	return item.ModTime.Unix() != rec.ModTimeUnix
}

// Record stores the outcome of assessing item at its current mtime.
func (l *Ledger) Record(item *Item, outcome Outcome) {
	l.Records[item.Path] = ledgerRecord{ModTimeUnix: item.ModTime.Unix(), Outcome: outcome}
}
