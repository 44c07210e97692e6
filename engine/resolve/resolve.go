// Package resolve maps a typed target name to one of the points of
// interest visible at the player's location.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/navishell/types"
)

// AmbiguityError indicates multiple points of interest matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("nothing like %q here", e.Name)
}

// POI resolves name against pois. An exact ID always wins; otherwise the
// name is compared case-insensitively against display names and IDs.
func POI(pois []types.POI, name string) (types.POI, error) {
	// 1. Exact ID match.
	for _, p := range pois {
		if p.ID == name {
			return p, nil
		}
	}

	// 2. Looser matches by name.
	var matches []types.POI
	nameLower := strings.ToLower(strings.TrimSpace(name))
	for _, p := range pois {
		if matchesName(p, nameLower) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return types.POI{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return types.POI{}, &AmbiguityError{Name: name, Candidates: ids}
	}
}

// matchesName checks a POI against a lower-cased query. Supports exact
// name match, word-based partial match, and ID match.
func matchesName(p types.POI, nameLower string) bool {
	if nameLower == "" {
		return false
	}
	if p.Name != "" {
		entityNameLower := strings.ToLower(p.Name)
		if entityNameLower == nameLower {
			return true
		}
		// Word-based partial match: "chip" matches "Psyche chip".
		for _, word := range strings.Fields(entityNameLower) {
			if word == nameLower {
				return true
			}
		}
	}
	idLower := strings.ToLower(p.ID)
	if idLower == nameLower {
		return true
	}
	// Underscore normalization: "bear suit" matches ID "bear_suit".
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}
