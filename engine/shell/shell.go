// Package shell implements the sandboxed pseudo-terminal. Commands operate
// on a jailed directory tree and the world map, and are gated by the
// player's unlocked commands and credit level.
package shell

import (
	"log/slog"
	"time"

	"github.com/nathoo/navishell/engine/actions"
	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/parser"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// Result is the outcome of one command line.
type Result struct {
	Next      string // script to load; empty means stay
	Redraw    bool
	Triggered string // action name forwarded to the executor, if any
}

// Interpreter processes command lines against one sandbox root.
type Interpreter struct {
	Root  string // real directory backing "/"
	Defs  *state.Defs
	Out   notify.Emitter
	Sleep func(time.Duration) // pacing for scripted output; nil means none
	Log   *slog.Logger
}

// handler runs one command. A non-empty return is an action to trigger.
type handler func(in *Interpreter, args []string, s *types.PlayerState) (trigger string, redraw bool)

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"help":      (*Interpreter).help,
		"inventory": (*Interpreter).inventory,
		"ls":        (*Interpreter).ls,
		"cd":        (*Interpreter).cd,
		"cat":       (*Interpreter).cat,
		"pwd":       (*Interpreter).pwd,
		"whoami":    (*Interpreter).whoami,
		"clear":     (*Interpreter).clear,
		"cmake":     (*Interpreter).cmake,
		"examine":   (*Interpreter).examine,
		"arls":      (*Interpreter).arls,
		"mail":      (*Interpreter).mail,
		"driver":    (*Interpreter).driver,
		"network":   (*Interpreter).network,
	}
}

// Process runs one command line. Problems are reported through Out; the
// returned Result tells the caller whether to redraw or load a script.
func (in *Interpreter) Process(line string, s *types.PlayerState) Result {
	in.defaults()

	cmd, err := parser.Tokenize(line)
	if err != nil {
		notify.Error(in.Out, "Error: unterminated quote in command.")
		return Result{}
	}
	if cmd.Name == "" {
		return Result{}
	}

	if !unlocked(s, cmd.Name) && !state.HasCommand(s, cmd.Typed) {
		notify.Error(in.Out, "command not found: %s", cmd.Typed)
		return Result{}
	}
	h, ok := handlers[cmd.Name]
	if !ok {
		notify.Error(in.Out, "command not found: %s", cmd.Typed)
		return Result{}
	}

	if s.Cwd == "" {
		s.Cwd = "/"
	}
	trigger, redraw := h(in, cmd.Args, s)
	if trigger == "" {
		return Result{Redraw: redraw}
	}

	in.Log.Debug("command triggered action", "command", cmd.Name, "action", trigger)
	out := actions.Dispatch(trigger, s, actions.Env{Defs: in.Defs, Out: in.Out, Log: in.Log})
	return Result{Next: out.Next, Redraw: out.Redraw, Triggered: trigger}
}

// Commands returns the names the interpreter understands.
func Commands() []string {
	names := make([]string, 0, len(handlers))
	for _, name := range helpOrder {
		if _, ok := handlers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// unlocked reports whether a command is available under any spelling.
func unlocked(s *types.PlayerState, name string) bool {
	for _, spelling := range parser.Spellings(name) {
		if state.HasCommand(s, spelling) {
			return true
		}
	}
	return false
}

func (in *Interpreter) defaults() {
	if in.Defs == nil {
		in.Defs = &state.Defs{}
	}
	if in.Out == nil {
		in.Out = notify.Discard
	}
	if in.Log == nil {
		in.Log = slog.Default()
	}
}

func (in *Interpreter) pause(d time.Duration) {
	if in.Sleep != nil {
		in.Sleep(d)
	}
}
