package hopper

import (
	"strconv"
	"strings"
)

// suggestedPhaseNumber extracts the phase-comparable component from a
// SuggestedPhase string of the form "v0.X.Y" (spec.md §6 example format),
// where X is the phase number. Returns ok=false if the string doesn't
// parse, which Assess treats as ambiguous metadata.
func suggestedPhaseNumber(suggested string) (int, bool) {
	parts := strings.Split(strings.TrimPrefix(strings.ToLower(suggested), "v"), ".")
	if len(parts) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func hasTag(item *Item, tag string) bool {
	for _, t := range item.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Assess applies spec.md §4.5's assessment rules to a project-tier item,
// evaluated top-down in the order the spec lists them.
func Assess(item *Item, currentPhase int, idleWorkers int) Outcome {
	if hasTag(item, "future") {
		return OutcomeAutoDefer
	}
	if item.SuggestedPhase != "" {
		n, ok := suggestedPhaseNumber(item.SuggestedPhase)
		if !ok {
			return OutcomeAskHuman
		}
		if n > currentPhase {
			return OutcomeAutoDefer
		}
	}
	if item.Priority == PriorityLow {
		return OutcomeAutoDefer
	}

	if item.Complexity == ComplexityLarge && idleWorkers == 0 {
		return OutcomeAutoDefer
	}

	if item.Priority == PriorityHigh && (item.Complexity == ComplexitySmall || item.Complexity == ComplexityMedium) && idleWorkers >= 1 {
		return OutcomeAutoInclude
	}

	// Missing/conflicting metadata: neither Priority nor Complexity
	// recognized, or Priority=Medium with no other discriminator above.
	if item.Priority == "" || item.Complexity == "" {
		return OutcomeAskHuman
	}
	if item.Priority == PriorityMedium {
		return OutcomeAskHuman
	}

	return OutcomeAskHuman
}
