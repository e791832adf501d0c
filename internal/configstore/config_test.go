package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string, cfg Config) {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644))
}

func baseConfig() Config {
	return Config{
		Project: Project{
			Name:          "Example",
			Slug:          "example",
			Repository:    "git@example.com:org/example.git",
			Version:       "0.1.0",
			Phase:         1,
			OmnibusBranch: "cz1/release/v0.1.0",
		},
		Workers: []Worker{
			{ID: "a", Agent: "claude", Branch: "cz1/feat/a", Role: RoleFeature},
			{ID: "b", Agent: "claude", Branch: "cz1/feat/b", Role: RoleFeature, Dependencies: []string{"a"}},
			{ID: "qa", Agent: "claude", Branch: "cz1/feat/qa", Role: RoleIntegration, Dependencies: []string{"a", "b"}},
		},
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, baseConfig())

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "example", cfg.Project.Slug)
	require.Equal(t, CompletionAny, cfg.EffectivePhaseCompletionMode())

	w, ok := cfg.WorkerByID("b")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, w.Dependencies)
}

func TestLoadRejectsDottedSlug(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Project.Slug = "ex.ample"
	writeConfig(t, dir, cfg)

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "slug")
}

func TestLoadRejectsUnknownDependency(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Workers[1].Dependencies = []string{"ghost"}
	writeConfig(t, dir, cfg)

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown worker")
}

func TestLoadRejectsSelfDependency(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Workers[0].Dependencies = []string{"a"}
	writeConfig(t, dir, cfg)

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot depend on itself")
}

func TestLoadRejectsDuplicateWorkerID(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Workers = append(cfg.Workers, Worker{ID: "a", Agent: "claude", Branch: "cz1/feat/a2"})
	writeConfig(t, dir, cfg)

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate worker id")
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	require.NoError(t, Save(dir, &cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, cfg.Project.Slug, loaded.Project.Slug)
	require.Len(t, loaded.Workers, 3)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Project.Slug = ""
	require.Error(t, Save(dir, &cfg))

	_, statErr := os.Stat(filepath.Join(dir, "config.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestValidateSlug(t *testing.T) {
	require.NoError(t, ValidateSlug("my-project_01"))
	require.Error(t, ValidateSlug("my.project"))
	require.Error(t, ValidateSlug(""))
}

func TestLoadOperationalDefaults(t *testing.T) {
	op, err := LoadOperational(viper.New())
	require.NoError(t, err)
	require.Equal(t, ".czarina", op.CzarinaDir)
	require.False(t, op.Verbose)
}

func TestLoadOperationalEnvOverride(t *testing.T) {
	t.Setenv("CZARINA_VERBOSE", "true")
	t.Setenv("CZARINA_CZARINA_DIR", "/tmp/alt-czarina")

	op, err := LoadOperational(viper.New())
	require.NoError(t, err)
	require.True(t, op.Verbose)
	require.Equal(t, "/tmp/alt-czarina", op.CzarinaDir)
}
