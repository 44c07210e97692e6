// Package cli provides the plain-terminal turn loop: typewriter output,
// numbered choices, the shell prompt and /meta commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nathoo/navishell/engine"
	"github.com/nathoo/navishell/engine/parser"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/session"
	"github.com/nathoo/navishell/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine  *engine.Engine
	Defs    *state.Defs
	Store   session.Store
	Session string // name the game autosaves under after every turn

	In        io.Reader
	Out       io.Writer
	TypeDelay time.Duration         // per-character delay; zero prints whole lines
	Sleep     func(d time.Duration) // nil means time.Sleep
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	Log       *slog.Logger
}

// New creates a CLI wired to the given engine and session store.
func New(eng *engine.Engine, store session.Store, name string) *CLI {
	return &CLI{
		Engine:  eng,
		Defs:    eng.Defs,
		Store:   store,
		Session: name,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     slog.Default(),
	}
}

// Run shows the intro and the current document, then loops: prompt →
// input → dispatch → output. It returns when input runs out, the player
// quits, or a document offers no choices.
func (c *CLI) Run(ctx context.Context) error {
	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}

	c.renderDocument(c.Engine.Document())
	if c.Engine.Ended() {
		c.printEnd()
		return nil
	}

	scanner := bufio.NewScanner(c.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.print(c.prompt())
		if !scanner.Scan() {
			c.printLine("")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return nil // /quit
			}
			continue
		}

		result := c.Engine.Step(input)
		c.printResult(result)
		if c.Trace {
			c.printTrace(result)
		}
		c.autosave(ctx)

		if result.Redraw {
			c.renderDocument(c.Engine.Document())
		}
		if result.Ended {
			c.printEnd()
			return nil
		}
	}
	return scanner.Err()
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(ctx, arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/sessions":
		c.cmdSessions(ctx)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/look":
		c.renderDocument(c.Engine.Document())

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = c.Session
	}
	if err := c.Store.Save(ctx, name, c.Engine.State); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = c.Session
	}
	s, err := c.Store.Load(ctx, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	c.Engine.SetState(s)
	c.Session = name
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))

	// Show the restored document.
	c.renderDocument(c.Engine.Document())
}

func (c *CLI) cmdSessions(ctx context.Context) {
	names, err := c.Store.List(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing sessions failed: %v", err))
		return
	}
	if len(names) == 0 {
		c.printSystem("No saved sessions.")
		return
	}
	for _, n := range names {
		marker := " "
		if n == c.Session {
			marker = "*"
		}
		c.printLine(fmt.Sprintf("%s %s", marker, n))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: current session)",
		"  /load [name]  Load game (default: current session)",
		"  /sessions     List saved sessions",
		"  /look         Show the current scene again",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Enter a number to pick a choice, or type a shell command.",
		"Type 'help' at the prompt for the commands you have unlocked.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Script: %s", s.CurrentScript))
	if s.ReturnScript != "" {
		c.printSystem(fmt.Sprintf("Return: %s", s.ReturnScript))
	}
	c.printSystem(fmt.Sprintf("Location: %s  Cwd: %s", s.Location, s.Cwd))
	c.printSystem(fmt.Sprintf("Day %d, %02d:%02d  Credit: %d", state.Day(s), state.Hour(s), s.Clock%60, s.CreditLevel))
	c.printSystem(fmt.Sprintf("Commands: %s", strings.Join(s.UnlockedCommands, ", ")))
	if len(s.Inventory) > 0 {
		c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	}
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if result.Next != "" {
		c.printSystem(fmt.Sprintf("[trace] next script: %s", result.Next))
	}
	c.printSystem(fmt.Sprintf("[trace] redraw=%t ended=%t messages=%d",
		result.Redraw, result.Ended, len(result.Output)))
}

func (c *CLI) autosave(ctx context.Context) {
	if c.Store == nil || c.Session == "" {
		return
	}
	if err := c.Store.Save(ctx, c.Session, c.Engine.State); err != nil {
		c.logger().Error("autosave failed", "session", c.Session, "error", err)
		c.printSystem(fmt.Sprintf("Autosave failed: %v", err))
	}
}

// renderDocument types out content, honoring pauses, then lists choices.
func (c *CLI) renderDocument(doc types.Document) {
	c.printLine("")
	for _, item := range doc.Content {
		switch item.Kind {
		case types.ContentText:
			c.typewrite(item.Text)
		case types.ContentPause:
			c.sleep(time.Duration(item.Seconds * float64(time.Second)))
		}
	}
	if len(doc.Choices) == 0 {
		return
	}
	c.printLine("")
	for i, ch := range doc.Choices {
		c.printLine(choiceLine(i+1, ch))
	}
}

// choiceLine formats one numbered choice. Disabled choices keep their
// number and carry their own marker text.
func choiceLine(n int, ch types.Choice) string {
	if ch.Disabled {
		return fmt.Sprintf("  %d) %s", n, ch.Text)
	}
	return fmt.Sprintf("  %d. %s", n, ch.Text)
}

func (c *CLI) printResult(result types.Result) {
	for _, msg := range result.Output {
		c.sleep(msg.Delay)
		c.printLine(msg.Text)
	}
}

func (c *CLI) printEnd() {
	c.printLine("")
	c.printSystem("The End")
}

// prompt renders [user@cwd]> using the player's lower-cased name.
func (c *CLI) prompt() string {
	name := parser.Fold(c.Engine.State.Name)
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("[%s@%s]> ", name, c.Engine.State.Cwd)
}

func (c *CLI) typewrite(text string) {
	if c.TypeDelay <= 0 {
		c.printLine(text)
		return
	}
	for _, r := range text {
		fmt.Fprint(c.Out, string(r))
		if r != ' ' && r != '\n' {
			c.sleep(c.TypeDelay)
		}
	}
	fmt.Fprintln(c.Out)
}

func (c *CLI) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (c *CLI) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
