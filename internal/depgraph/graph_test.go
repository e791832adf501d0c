package depgraph

import (
	"testing"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/stretchr/testify/require"
)

func workers() []configstore.Worker {
	return []configstore.Worker{
		{ID: "a", Role: configstore.RoleFeature},
		{ID: "b", Role: configstore.RoleFeature, Dependencies: []string{"a"}},
		{ID: "qa", Role: configstore.RoleIntegration, Dependencies: []string{"a", "b"}},
	}
}

func TestComputeWavesOrdersByDependency(t *testing.T) {
	g, err := Build(workers())
	require.NoError(t, err)

	waves, err := g.ComputeWaves()
	require.NoError(t, err)
	require.Len(t, waves, 3)
	require.Equal(t, []string{"a"}, waves[0].Workers)
	require.Equal(t, []string{"b"}, waves[1].Workers)
	require.Equal(t, []string{"qa"}, waves[2].Workers)
}

func TestTopologicalOrderStableAlphabetical(t *testing.T) {
	g, err := Build([]configstore.Worker{
		{ID: "z"},
		{ID: "y"},
		{ID: "x"},
	})
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "z"}, order)
}

func TestCycleDetected(t *testing.T) {
	_, err := Build([]configstore.Worker{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	})
	require.NoError(t, err) // Build itself doesn't reject; ComputeWaves does

	g, _ := Build([]configstore.Worker{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	})
	_, err = g.ComputeWaves()
	require.ErrorIs(t, err, ErrCycle)
}

func TestBlockedAndReady(t *testing.T) {
	g, err := Build(workers())
	require.NoError(t, err)

	blocked, unmet := g.Blocked("b", map[string]bool{})
	require.True(t, blocked)
	require.Equal(t, []string{"a"}, unmet)

	blocked, _ = g.Blocked("b", map[string]bool{"a": true})
	require.False(t, blocked)

	require.Equal(t, []string{"a"}, g.Ready(map[string]bool{}))
	require.Equal(t, []string{"b"}, g.Ready(map[string]bool{"a": true}))
}

func TestIntegrationReadyWaitsForAllFeatureWorkers(t *testing.T) {
	g, err := Build(workers())
	require.NoError(t, err)

	require.False(t, g.IntegrationReady("qa", map[string]bool{"a": true}))
	require.True(t, g.IntegrationReady("qa", map[string]bool{"a": true, "b": true}))
	require.False(t, g.IntegrationReady("a", map[string]bool{"a": true, "b": true}))
}

func TestIntegrationReadyDefaultsToAllFeatureWorkersWhenNoExplicitDeps(t *testing.T) {
	g, err := Build([]configstore.Worker{
		{ID: "a", Role: configstore.RoleFeature},
		{ID: "b", Role: configstore.RoleFeature},
		{ID: "qa", Role: configstore.RoleIntegration},
	})
	require.NoError(t, err)

	require.False(t, g.IntegrationReady("qa", map[string]bool{"a": true}))
	require.True(t, g.IntegrationReady("qa", map[string]bool{"a": true, "b": true}))
}

func TestDepsForSortedAlphabetically(t *testing.T) {
	g, err := Build([]configstore.Worker{
		{ID: "x"},
		{ID: "y", Dependencies: []string{"x"}},
		{ID: "z", Dependencies: []string{"x", "y"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, g.DepsFor("z"))
	require.Nil(t, g.DepsFor("x"))
}
