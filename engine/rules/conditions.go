// Package rules evaluates visibility conditions against player state.
package rules

import (
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// EvalCondition evaluates a condition against the current state.
// The zero condition is vacuously true. All present clauses must hold.
func EvalCondition(c types.Condition, s *types.PlayerState) bool {
	if c.ExactDay != nil || c.MinDay != nil || c.MaxDay != nil ||
		c.HourStart != nil || c.HourEnd != nil {
		day := state.Day(s)
		hour := state.Hour(s)

		if c.ExactDay != nil && day != *c.ExactDay {
			return false
		}
		if c.MinDay != nil && day < *c.MinDay {
			return false
		}
		if c.MaxDay != nil && day > *c.MaxDay {
			return false
		}
		if c.HourStart != nil && hour < *c.HourStart {
			return false
		}
		if c.HourEnd != nil && hour > *c.HourEnd {
			return false
		}
	}

	if c.Flag != "" {
		actual, ok := state.Lookup(s, c.Flag)
		if c.Value == nil {
			// Bare flag: must be set to something truthy.
			return ok && state.Truthy(actual)
		}
		if !ok || state.Stringify(actual) != state.Stringify(c.Value) {
			return false
		}
	}

	return true
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.PlayerState) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s) {
			return false
		}
	}
	return true
}

// VisiblePOIs filters a POI list down to those whose condition holds.
func VisiblePOIs(pois []types.POI, s *types.PlayerState) []types.POI {
	var out []types.POI
	for _, p := range pois {
		if EvalCondition(p.Condition, s) {
			out = append(out, p)
		}
	}
	return out
}
