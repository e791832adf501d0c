package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Load reads and validates config.json from dir (typically ".czarina").
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configstore: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configstore: parse %s: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configstore: %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to dir/config.json atomically (write temp + rename), the
// same pattern the teacher uses for its own state files.
func Save(dir string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("configstore: refusing to save invalid config: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("configstore: marshal config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	tmp, err := os.CreateTemp(dir, ".config.json.tmp-*")
	if err != nil {
		return fmt.Errorf("configstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("configstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("configstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("configstore: rename into place: %w", err)
	}
	return nil
}
