// Package depgraph computes topological ordering, wave batching, and
// blocked/ready sets over a phase's worker dependency edges. Its core
// algorithm is adapted from a general-purpose DAG engine; here it is
// specialized to worker IDs and the integration-role predicate CzarLoop and
// LaunchController need.
package depgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/czarina-dev/czarina/internal/configstore"
)

// ErrCycle is returned when the dependency graph contains a cycle. Callers
// surface this as DEPENDENCY_CYCLE per spec.md §4.2/§7.
var ErrCycle = errors.New("dependency cycle")

// Wave is a batch of worker IDs whose dependencies all fall in prior waves,
// sorted alphabetically for determinism (spec.md §8 property 3).
type Wave struct {
	Number int
	Workers []string
}

// Graph is the dependency graph for a single phase's workers.
type Graph struct {
	workers   map[string]configstore.Worker
	adjacency map[string]map[string]bool // worker -> its dependencies
	reverse   map[string]map[string]bool // worker -> its dependents
}

// Build constructs a Graph from a phase's worker list. It does not itself
// validate acyclicity; call Validate or ComputeWaves to detect cycles.
func Build(workers []configstore.Worker) (*Graph, error) {
	g := &Graph{
		workers:   make(map[string]configstore.Worker, len(workers)),
		adjacency: make(map[string]map[string]bool, len(workers)),
		reverse:   make(map[string]map[string]bool, len(workers)),
	}
	for _, w := range workers {
		if _, exists := g.workers[w.ID]; exists {
			return nil, fmt.Errorf("depgraph: duplicate worker id %q", w.ID)
		}
		g.workers[w.ID] = w
		g.adjacency[w.ID] = make(map[string]bool)
		g.reverse[w.ID] = make(map[string]bool)
	}
	for _, w := range workers {
		for _, dep := range w.Dependencies {
			if _, ok := g.workers[dep]; !ok {
				return nil, fmt.Errorf("depgraph: worker %q depends on unknown worker %q", w.ID, dep)
			}
			if dep == w.ID {
				return nil, fmt.Errorf("depgraph: worker %q cannot depend on itself", w.ID)
			}
			g.adjacency[w.ID][dep] = true
			g.reverse[dep][w.ID] = true
		}
	}
	return g, nil
}

// Validate reports ErrCycle if the graph is not a DAG.
func (g *Graph) Validate() error {
	_, err := g.ComputeWaves()
	return err
}

// Workers returns every worker id in the graph, sorted alphabetically.
func (g *Graph) Workers() []string {
	ids := make([]string, 0, len(g.workers))
	for id := range g.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DepsFor returns id's direct dependency ids, sorted alphabetically.
func (g *Graph) DepsFor(id string) []string {
	adj := g.adjacency[id]
	if len(adj) == 0 {
		return nil
	}
	deps := make([]string, 0, len(adj))
	for dep := range adj {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// ComputeWaves groups workers into dependency layers using Kahn's algorithm.
// Node ids within a wave are sorted alphabetically. Returns ErrCycle if the
// graph cannot be fully ordered.
func (g *Graph) ComputeWaves() ([]Wave, error) {
	if len(g.workers) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.workers))
	for id := range g.workers {
		inDegree[id] = len(g.adjacency[id])
	}

	var current []string
	for id, deg := range inDegree {
		if deg == 0 {
			current = append(current, id)
		}
	}
	sort.Strings(current)

	var waves []Wave
	processed := 0
	for len(current) > 0 {
		waves = append(waves, Wave{Number: len(waves), Workers: current})
		processed += len(current)

		var next []string
		for _, id := range current {
			for dependent := range g.reverse[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		sort.Strings(next)
		current = next
	}

	if processed != len(g.workers) {
		return nil, fmt.Errorf("%w: %d of %d workers could not be ordered", ErrCycle, processed, len(g.workers))
	}
	return waves, nil
}

// TopologicalOrder flattens ComputeWaves into a single stable order:
// dependencies before dependents, ties broken alphabetically (spec.md §8
// property 3).
func (g *Graph) TopologicalOrder() ([]string, error) {
	waves, err := g.ComputeWaves()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.workers))
	for _, w := range waves {
		order = append(order, w.Workers...)
	}
	return order, nil
}

// Blocked reports whether id has at least one dependency not present in
// done, and returns the unmet dependency ids (sorted) for diagnostics
// (WORKER_DEPENDENCY_BLOCKED / DEPENDENCY_NOT_READY metadata).
func (g *Graph) Blocked(id string, done map[string]bool) (blocked bool, unmet []string) {
	for dep := range g.adjacency[id] {
		if !done[dep] {
			unmet = append(unmet, dep)
		}
	}
	sort.Strings(unmet)
	return len(unmet) > 0, unmet
}

// Ready returns worker ids with every dependency satisfied by done,
// excluding ids already in done, sorted alphabetically.
func (g *Graph) Ready(done map[string]bool) []string {
	var ready []string
	for id := range g.workers {
		if done[id] {
			continue
		}
		if blocked, _ := g.Blocked(id, done); !blocked {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}

// IntegrationReady reports whether every feature-role worker the
// integration worker id depends on (or, absent explicit dependencies, every
// feature-role worker in the graph) is present in done. This backs
// INTEGRATION_READY/INTEGRATION_STRATEGY emission in CzarLoop.
func (g *Graph) IntegrationReady(id string, done map[string]bool) bool {
	w, ok := g.workers[id]
	if !ok || w.Role != configstore.RoleIntegration {
		return false
	}
	deps := w.Dependencies
	if len(deps) == 0 {
		for wid, other := range g.workers {
			if other.Role == configstore.RoleFeature {
				deps = append(deps, wid)
			}
		}
	}
	for _, dep := range deps {
		if !done[dep] {
			return false
		}
	}
	return true
}
