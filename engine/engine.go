// Package engine provides the Step() orchestrator that wires together
// input classification, the story parser, the action executor and the
// shell into a single turn.
package engine

import (
	"log/slog"
	"path/filepath"

	"github.com/nathoo/navishell/engine/actions"
	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/parser"
	"github.com/nathoo/navishell/engine/shell"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/engine/story"
	"github.com/nathoo/navishell/types"
)

// Engine holds the game definitions, the player state and the document
// currently on screen.
type Engine struct {
	Defs     *state.Defs
	State    *types.PlayerState
	StoryDir string
	Shell    *shell.Interpreter
	Log      *slog.Logger

	doc    types.Document
	loaded bool
	out    notify.Recorder
}

// New creates a new engine with a fresh player state.
func New(defs *state.Defs, storyDir, sandboxDir string) *Engine {
	return &Engine{
		Defs:     defs,
		State:    state.NewState(defs),
		StoryDir: storyDir,
		Shell:    &shell.Interpreter{Root: sandboxDir, Defs: defs},
		Log:      slog.Default(),
	}
}

// SetState replaces the player state, e.g. after loading a session. The
// next Document call reparses the current script.
func (e *Engine) SetState(s *types.PlayerState) {
	e.State = s
	e.loaded = false
}

// Load parses the current script for the current state. A "location"
// metadata entry overrides the player's location.
func (e *Engine) Load() types.Document {
	path := e.scriptPath(e.State.CurrentScript)
	doc := story.ParseFile(path, e.State)
	if loc := doc.Metadata["location"]; loc != "" {
		e.State.Location = loc
	}
	e.doc = doc
	e.loaded = true
	e.logger().Debug("loaded script", "script", e.State.CurrentScript,
		"items", len(doc.Content), "choices", len(doc.Choices))
	return doc
}

// Document returns the document currently on screen, loading it first if
// needed.
func (e *Engine) Document() types.Document {
	if !e.loaded {
		return e.Load()
	}
	return e.doc
}

// Ended reports whether the current document offers no way forward.
func (e *Engine) Ended() bool {
	return len(e.Document().Choices) == 0
}

// Step processes one line of player input and returns the result.
func (e *Engine) Step(input string) types.Result {
	e.out.Reset()
	doc := e.Document()

	var next string
	var redraw bool

	in := parser.Classify(input)
	switch in.Kind {
	case parser.KindEmpty:
		return types.Result{}

	case parser.KindChoice:
		if len(doc.Choices) == 0 {
			notify.Error(&e.out, "There is nothing to choose here.")
			return e.result("", false)
		}
		if in.Choice < 1 || in.Choice > len(doc.Choices) {
			notify.Error(&e.out, "Invalid choice. Enter a number between 1 and %d.", len(doc.Choices))
			return e.result("", false)
		}
		choice := doc.Choices[in.Choice-1]
		if choice.Disabled {
			notify.Error(&e.out, "That choice cannot be selected right now.")
			return e.result("", false)
		}
		out := actions.Dispatch(choice.Action, e.State, actions.Env{Defs: e.Defs, Out: &e.out, Log: e.logger()})
		next, redraw = out.Next, out.Redraw

	case parser.KindCommand:
		e.Shell.Out = &e.out
		if e.Shell.Log == nil {
			e.Shell.Log = e.logger()
		}
		res := e.Shell.Process(in.Line, e.State)
		next, redraw = res.Next, res.Redraw
	}

	if next != "" {
		e.State.CurrentScript = next
		redraw = true
	}
	if redraw {
		e.Load()
	}
	return e.result(next, redraw)
}

func (e *Engine) result(next string, redraw bool) types.Result {
	r := types.Result{
		Next:   next,
		Redraw: redraw,
		Ended:  redraw && len(e.doc.Choices) == 0,
	}
	if len(e.out.Messages) > 0 {
		r.Output = append([]types.Message(nil), e.out.Messages...)
	}
	return r
}

// scriptPath keeps script references inside the story directory.
func (e *Engine) scriptPath(script string) string {
	return filepath.Join(e.StoryDir, filepath.Clean(string(filepath.Separator)+script))
}

func (e *Engine) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}
