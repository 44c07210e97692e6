package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/navishell/engine"
	"github.com/nathoo/navishell/engine/parser"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/session"
	"github.com/nathoo/navishell/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text string
	kind lineKind
}

// pendingLine is a line waiting to be revealed after delay.
type pendingLine struct {
	line  rawLine
	delay time.Duration
}

// revealMsg reveals the next pending line.
type revealMsg struct{}

// Model is the Bubble Tea model for the navishell TUI.
type Model struct {
	engine  *engine.Engine
	defs    *state.Defs
	store   session.Store
	session string
	log     *slog.Logger

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines  []rawLine     // revealed lines (unstyled, for re-wrapping)
	pending   []pendingLine // lines still to be revealed, in order
	revealing bool

	width    int
	height   int
	ready    bool
	trace    bool
	ended    bool
	quitting bool
}

// New creates a TUI model wired to the given engine and session store.
func New(eng *engine.Engine, store session.Store, name string) Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		engine:  eng,
		defs:    eng.Defs,
		store:   store,
		session: name,
		log:     slog.Default(),
		input:   ti,
		history: NewHistory(100),
	}
	m.input.Prompt = m.prompt()
	return m
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, store session.Store, name string) error {
	m := New(eng, store, name)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init queues the title, intro and first document.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return introMsg{} })
}

// introMsg starts the opening reveal once the program is running.
type introMsg struct{}

func (m Model) intro() (Model, tea.Cmd) {
	g := m.defs.Game
	title := g.Title
	if g.Version != "" {
		title += " v" + g.Version
	}
	if g.Author != "" {
		title += " by " + g.Author
	}
	lines := []pendingLine{{line: rawLine{text: title, kind: kindSystem}}, {}}
	if g.Intro != "" {
		lines = append(lines, pendingLine{line: rawLine{text: g.Intro}}, pendingLine{})
	}
	lines = append(lines, documentLines(m.engine.Document())...)
	if m.engine.Ended() {
		m.ended = true
		lines = append(lines, endLines()...)
	}
	return m.queue(lines)
}

// Update handles messages (key presses, window resize, reveal ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case introMsg:
		return m.intro()

	case revealMsg:
		return m.reveal()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Older(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if !m.history.Browsing() {
				return m, nil
			}
			next, _ := m.history.Newer()
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Record(input)

	echo := pendingLine{line: rawLine{text: m.prompt() + input, kind: kindInput}}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		lines := append([]pendingLine{echo}, output...)
		return m.queue(append(lines, pendingLine{}))
	}

	if m.ended {
		return m.queue([]pendingLine{echo, system("The story has ended. Type /quit to exit."), {}})
	}

	result := m.engine.Step(input)
	lines := append([]pendingLine{echo}, resultLines(result)...)
	if m.trace {
		lines = append(lines, traceLines(result)...)
	}
	m.autosave()

	if result.Redraw {
		lines = append(lines, documentLines(m.engine.Document())...)
	}
	if result.Ended {
		m.ended = true
		lines = append(lines, endLines()...)
	}
	m.input.Prompt = m.prompt()
	return m.queue(append(lines, pendingLine{}))
}

// queue appends lines to the reveal queue and starts revealing if idle.
func (m Model) queue(lines []pendingLine) (Model, tea.Cmd) {
	m.pending = append(m.pending, lines...)
	if m.revealing {
		return m, nil
	}
	m.revealing = true
	return m, m.nextReveal()
}

func (m Model) nextReveal() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	if d := m.pending[0].delay; d > 0 {
		return tea.Tick(d, func(time.Time) tea.Msg { return revealMsg{} })
	}
	return func() tea.Msg { return revealMsg{} }
}

// reveal moves the next pending line into the viewport.
func (m Model) reveal() (Model, tea.Cmd) {
	if len(m.pending) == 0 {
		m.revealing = false
		return m, nil
	}
	m.rawLines = append(m.rawLines, m.pending[0].line)
	m.pending = m.pending[1:]
	m.refreshViewport()

	if len(m.pending) == 0 {
		m.revealing = false
		return m, nil
	}
	return m, m.nextReveal()
}

// documentLines lays out a document: content with pauses folded into the
// delay of the following line, then numbered choices.
func documentLines(doc types.Document) []pendingLine {
	lines := []pendingLine{{}}
	var carry time.Duration
	for _, item := range doc.Content {
		switch item.Kind {
		case types.ContentPause:
			carry += time.Duration(item.Seconds * float64(time.Second))
		case types.ContentText:
			for _, text := range strings.Split(item.Text, "\n") {
				lines = append(lines, pendingLine{line: rawLine{text: text}, delay: carry})
				carry = 0
			}
		}
	}
	if len(doc.Choices) == 0 {
		if carry > 0 {
			lines = append(lines, pendingLine{delay: carry})
		}
		return lines
	}

	lines = append(lines, pendingLine{delay: carry})
	for i, ch := range doc.Choices {
		kind := kindChoice
		if ch.Disabled {
			kind = kindDisabled
		}
		lines = append(lines, pendingLine{line: rawLine{text: fmt.Sprintf("%d. %s", i+1, ch.Text), kind: kind}})
	}
	return lines
}

// resultLines converts engine messages, keeping their display delays.
func resultLines(result types.Result) []pendingLine {
	var lines []pendingLine
	for _, msg := range result.Output {
		kind := messageKind(msg)
		for i, text := range strings.Split(msg.Text, "\n") {
			pl := pendingLine{line: rawLine{text: text, kind: kind}}
			if i == 0 {
				pl.delay = msg.Delay
			}
			lines = append(lines, pl)
		}
	}
	return lines
}

func traceLines(result types.Result) []pendingLine {
	var lines []pendingLine
	if result.Next != "" {
		lines = append(lines, pendingLine{line: rawLine{text: "[trace] next script: " + result.Next, kind: kindTrace}})
	}
	lines = append(lines, pendingLine{line: rawLine{
		text: fmt.Sprintf("[trace] redraw=%t ended=%t messages=%d", result.Redraw, result.Ended, len(result.Output)),
		kind: kindTrace,
	}})
	return lines
}

func endLines() []pendingLine {
	return []pendingLine{{}, system("The End")}
}

func system(text string) pendingLine {
	return pendingLine{line: rawLine{text: text, kind: kindSystem}}
}

func systemLines(texts ...string) []pendingLine {
	lines := make([]pendingLine, 0, len(texts))
	for _, t := range texts {
		lines = append(lines, system(t))
	}
	return lines
}

func (m Model) autosave() {
	if m.store == nil || m.session == "" {
		return
	}
	if err := m.store.Save(context.Background(), m.session, m.engine.State); err != nil {
		m.log.Error("autosave failed", "session", m.session, "error", err)
	}
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		styled = append(styled, rl.kind.render(wordwrap.String(rl.text, width)))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// prompt renders [user@cwd]> using the player's lower-cased name.
func (m Model) prompt() string {
	name := parser.Fold(m.engine.State.Name)
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("[%s@%s]> ", name, m.engine.State.Cwd)
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]pendingLine, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return systemLines("Goodbye."), true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/sessions":
		return m.cmdSessions(), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/look":
		return documentLines(m.engine.Document()), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return systemLines("Trace output enabled."), false
		}
		return systemLines("Trace output disabled."), false

	default:
		return systemLines(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)), false
	}
}

func (m *Model) cmdSave(name string) []pendingLine {
	if name == "" {
		name = m.session
	}
	if err := m.store.Save(context.Background(), name, m.engine.State); err != nil {
		return systemLines(fmt.Sprintf("Save failed: %v", err))
	}
	return systemLines(fmt.Sprintf("Game saved to %s.", name))
}

func (m *Model) cmdLoad(name string) []pendingLine {
	if name == "" {
		name = m.session
	}
	s, err := m.store.Load(context.Background(), name)
	if err != nil {
		return systemLines(fmt.Sprintf("Load failed: %v", err))
	}

	m.engine.SetState(s)
	m.session = name
	m.ended = m.engine.Ended()
	m.input.Prompt = m.prompt()

	output := systemLines(fmt.Sprintf("Game loaded from %s.", name))
	return append(output, documentLines(m.engine.Document())...)
}

func (m *Model) cmdSessions() []pendingLine {
	names, err := m.store.List(context.Background())
	if err != nil {
		return systemLines(fmt.Sprintf("Listing sessions failed: %v", err))
	}
	if len(names) == 0 {
		return systemLines("No saved sessions.")
	}
	lines := make([]pendingLine, 0, len(names))
	for _, n := range names {
		marker := " "
		if n == m.session {
			marker = "*"
		}
		lines = append(lines, pendingLine{line: rawLine{text: marker + " " + n, kind: kindShell}})
	}
	return lines
}

func (m *Model) cmdHelp() []pendingLine {
	return systemLines(
		"/save [name]  Save game (default: current session)",
		"/load [name]  Load game (default: current session)",
		"/sessions     List saved sessions",
		"/look         Show the current scene again",
		"/quit         Exit game",
		"/help         Show this help",
		"/state        Debug: dump current state",
		"/trace        Toggle debug trace output",
		"Enter a number to pick a choice, or type a shell command.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	)
}

func (m *Model) cmdState() []pendingLine {
	s := m.engine.State
	output := systemLines(
		fmt.Sprintf("Script: %s", s.CurrentScript),
		fmt.Sprintf("Location: %s  Cwd: %s", s.Location, s.Cwd),
		fmt.Sprintf("Commands: %s", strings.Join(s.UnlockedCommands, ", ")),
	)
	if len(s.Inventory) > 0 {
		output = append(output, system(fmt.Sprintf("Inventory: %v", s.Inventory)))
	}
	if len(s.Flags) > 0 {
		output = append(output, system(fmt.Sprintf("Flags: %v", s.Flags)))
	}
	return output
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
