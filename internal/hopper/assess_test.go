package hopper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssessFutureTagDefers(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexitySmall, Tags: []string{"future"}}
	require.Equal(t, OutcomeAutoDefer, Assess(item, 1, 2))
}

func TestAssessSuggestedPhaseAheadDefers(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexitySmall, SuggestedPhase: "v0.5.0"}
	require.Equal(t, OutcomeAutoDefer, Assess(item, 2, 2))
}

func TestAssessLowPriorityDefers(t *testing.T) {
	item := &Item{Priority: PriorityLow, Complexity: ComplexitySmall}
	require.Equal(t, OutcomeAutoDefer, Assess(item, 1, 2))
}

func TestAssessLargeComplexityNoIdleWorkersDefers(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexityLarge}
	require.Equal(t, OutcomeAutoDefer, Assess(item, 1, 0))
}

func TestAssessHighPrioritySmallWithIdleWorkerIncludes(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexitySmall}
	require.Equal(t, OutcomeAutoInclude, Assess(item, 1, 1))
}

func TestAssessHighPriorityMediumWithIdleWorkerIncludes(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexityMedium}
	require.Equal(t, OutcomeAutoInclude, Assess(item, 1, 1))
}

func TestAssessMediumPriorityAsksHuman(t *testing.T) {
	item := &Item{Priority: PriorityMedium, Complexity: ComplexitySmall}
	require.Equal(t, OutcomeAskHuman, Assess(item, 1, 1))
}

func TestAssessMissingMetadataAsksHuman(t *testing.T) {
	item := &Item{}
	require.Equal(t, OutcomeAskHuman, Assess(item, 1, 1))
}

func TestAssessUnparsableSuggestedPhaseAsksHuman(t *testing.T) {
	item := &Item{Priority: PriorityHigh, Complexity: ComplexitySmall, SuggestedPhase: "soon"}
	require.Equal(t, OutcomeAskHuman, Assess(item, 1, 1))
}

func TestAssessHighLargeWithIdleWorkersStillAsksHuman(t *testing.T) {
	// High+Large isn't covered by auto-include (that rule requires Small
	// or Medium); with idle workers available it falls through to ask-human
	// rather than defer (the defer rule only fires when idle workers == 0).
	item := &Item{Priority: PriorityHigh, Complexity: ComplexityLarge}
	require.Equal(t, OutcomeAskHuman, Assess(item, 1, 1))
}
