package workerstatus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads status/worker-status.json. A missing file is not an error: it
// returns a nil snapshot, matching "never started" semantics for a freshly
// launched phase.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("workerstatus: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("workerstatus: parse %s: %w", path, err)
	}
	return &snap, nil
}

// Save writes snap to path atomically (write temp + rename), matching
// spec.md §7's "single-writer files ... readers tolerate stale reads"
// requirement: CzarLoop is the only writer, so no file locking is needed,
// only atomicity against a concurrent reader.
func Save(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("workerstatus: marshal snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".worker-status.json.tmp-*")
	if err != nil {
		return fmt.Errorf("workerstatus: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("workerstatus: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("workerstatus: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("workerstatus: rename into place: %w", err)
	}
	return nil
}
