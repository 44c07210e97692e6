package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/navishell/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleStory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true)

	styleDisabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindStory lineKind = iota
	kindChoice
	kindDisabled
	kindShell
	kindNotice
	kindError
	kindSystem
	kindTrace
	kindInput
)

// messageKind maps an engine message to its line style. Shell output is
// plain text; bracketed lines such as "[Acquired: ...]" read as notices.
func messageKind(msg types.Message) lineKind {
	switch msg.Kind {
	case types.MsgNotice:
		return kindNotice
	case types.MsgError:
		return kindError
	}
	if strings.HasPrefix(msg.Text, "[") && strings.HasSuffix(msg.Text, "]") {
		return kindNotice
	}
	return kindShell
}

// render applies the style for a given lineKind.
func (k lineKind) render(line string) string {
	switch k {
	case kindChoice:
		return styleChoice.Render(line)
	case kindDisabled:
		return styleDisabled.Render(line)
	case kindShell:
		return line
	case kindNotice:
		return styleNotice.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindSystem:
		return styleSystem.Render("[" + line + "]")
	case kindTrace:
		return styleTrace.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	default:
		return styleStory.Render(line)
	}
}
