package launch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/czarina-dev/czarina/internal/configstore"
)

func baseConfig() *configstore.Config {
	return &configstore.Config{
		Project: configstore.Project{
			Name:          "demo",
			Slug:          "demo",
			OmnibusBranch: "cz1/release/v0.1.0",
			Phase:         1,
		},
		Workers: []configstore.Worker{
			{ID: "a", Agent: "claude", Branch: "cz1/feat/a", Role: configstore.RoleFeature},
			{ID: "b", Agent: "claude", Branch: "cz1/feat/b", Role: configstore.RoleFeature, Dependencies: []string{"a"}},
			{ID: "qa", Agent: "claude", Branch: "cz1/release/v0.1.0", Role: configstore.RoleIntegration, Dependencies: []string{"a", "b"}},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, Validate(baseConfig()))
}

func TestValidateRejectsDependencyCycle(t *testing.T) {
	cfg := &configstore.Config{
		Project: configstore.Project{Name: "demo", Slug: "demo", OmnibusBranch: "cz1/release/v0.1.0", Phase: 1},
		Workers: []configstore.Worker{
			{ID: "a", Agent: "claude", Branch: "cz1/feat/a", Dependencies: []string{"b"}},
			{ID: "b", Agent: "claude", Branch: "cz1/feat/b", Dependencies: []string{"a"}},
		},
	}
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsBadBranchName(t *testing.T) {
	cfg := baseConfig()
	cfg.Workers[0].Branch = "wrong-branch-name"
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidBranchName")
}

func TestValidateRejectsOmnibusMismatch(t *testing.T) {
	cfg := baseConfig()
	cfg.Project.OmnibusBranch = "cz2/release/v0.1.0"
	err := Validate(cfg)
	require.Error(t, err)
}
