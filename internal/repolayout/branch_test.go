package repolayout

import (
	"testing"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/stretchr/testify/require"
)

func TestFeatureBranchNaming(t *testing.T) {
	require.Equal(t, "cz1/feat/a", FeatureBranch(1, "a"))
	require.Equal(t, "cz2/release/v0.2.0", ReleaseBranch(2, "0.2.0"))
}

func TestValidateBranchFeatureWorker(t *testing.T) {
	w := configstore.Worker{ID: "a", Role: configstore.RoleFeature, Branch: "cz1/feat/a"}
	require.NoError(t, ValidateBranch(w, 1, "cz1/release/v0.1.0"))

	bad := configstore.Worker{ID: "a", Role: configstore.RoleFeature, Branch: "cz2/feat/a"}
	require.Error(t, ValidateBranch(bad, 1, "cz1/release/v0.1.0"))

	mismatchID := configstore.Worker{ID: "a", Role: configstore.RoleFeature, Branch: "cz1/feat/b"}
	require.Error(t, ValidateBranch(mismatchID, 1, "cz1/release/v0.1.0"))
}

func TestValidateBranchIntegrationWorker(t *testing.T) {
	w := configstore.Worker{ID: "qa", Role: configstore.RoleIntegration, Branch: "cz1/release/v0.1.0"}
	require.NoError(t, ValidateBranch(w, 1, "cz1/release/v0.1.0"))

	bad := configstore.Worker{ID: "qa", Role: configstore.RoleIntegration, Branch: "cz1/feat/qa"}
	require.Error(t, ValidateBranch(bad, 1, "cz1/release/v0.1.0"))
}

func TestValidateOmnibus(t *testing.T) {
	require.NoError(t, ValidateOmnibus(1, "cz1/release/v0.1.0"))
	require.Error(t, ValidateOmnibus(2, "cz1/release/v0.1.0"))
	require.Error(t, ValidateOmnibus(1, "release/v0.1.0"))
}

func TestPhaseIsolated(t *testing.T) {
	require.True(t, PhaseIsolated("cz1/feat/a", 1))
	require.False(t, PhaseIsolated("cz2/feat/a", 1))
}

func TestValidateWorkerID(t *testing.T) {
	require.NoError(t, ValidateWorkerID("worker-1"))
	require.Error(t, ValidateWorkerID("Worker_1"))
	require.Error(t, ValidateWorkerID(""))
}
