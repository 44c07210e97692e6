package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/navishell/engine/state"
)

var titleCaser = cases.Title(language.Und)

// locationDisplayName prefers the world map's name for a location and
// falls back to a title-cased ID: "lain_room" -> "Lain Room".
func locationDisplayName(defs *state.Defs, id string) string {
	if loc, ok := defs.World[id]; ok && loc.Name != "" {
		return loc.Name
	}
	if id == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// renderStatusBar produces a full-width inverted status line showing the
// location, working directory, game clock, credit level and inventory.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	left := fmt.Sprintf(" %s | %s", locationDisplayName(m.defs, s.Location), s.Cwd)
	clock := fmt.Sprintf("Day %d %02d:%02d", state.Day(s), state.Hour(s), s.Clock%60)
	right := fmt.Sprintf("%s | Credit: %d ", clock, s.CreditLevel)

	// Show inventory items if they fit, otherwise just count.
	if owned := state.OwnedItems(s); len(owned) > 0 {
		names := make([]string, 0, len(owned))
		for _, id := range owned {
			name := id
			if it, ok := m.defs.Items[id]; ok && it.Name != "" {
				name = it.Name
			}
			names = append(names, name)
		}
		candidate := fmt.Sprintf("Inv: %s | %s", strings.Join(names, ", "), right)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | %s", len(owned), right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
