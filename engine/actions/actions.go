// Package actions implements the action executor: one closed switch over
// the action vocabulary, mutating player state and choosing the next script.
// Problems with narrative data are reported as messages, never as errors.
package actions

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// UnlockNoticeDelay is how long front ends should hold an unlock notice.
const UnlockNoticeDelay = 1500 * time.Millisecond

// maxChainDepth bounds conditional_action_by_flag indirection.
const maxChainDepth = 8

// Env carries the read-only collaborators an action needs.
type Env struct {
	Defs *state.Defs
	Out  notify.Emitter
	Log  *slog.Logger
}

// Outcome is what the caller does after an action.
type Outcome struct {
	Next   string // script to load; empty means stay
	Redraw bool
}

// Dispatch looks an action up by name and executes it. An unknown name is
// a data error: reported, no state change, no transition.
func Dispatch(name string, s *types.PlayerState, env Env) Outcome {
	env = env.withDefaults()
	a, ok := env.Defs.Actions[name]
	if !ok {
		notify.Error(env.Out, "Error: action '%s' is not defined.", name)
		env.Log.Warn("undefined action", "action", name)
		return Outcome{}
	}
	if a.ID == "" {
		a.ID = name
	}
	return Execute(a, s, env)
}

// Execute applies one action to the player state.
func Execute(a types.Action, s *types.PlayerState, env Env) Outcome {
	return execute(a, s, env.withDefaults(), 0)
}

func execute(a types.Action, s *types.PlayerState, env Env, depth int) Outcome {
	var out Outcome

	switch a.Kind {
	case types.KindStoryChange:
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindEnterStory:
		s.ReturnScript = s.CurrentScript
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindExitStory:
		if s.ReturnScript != "" {
			out = Outcome{Next: s.ReturnScript, Redraw: true}
			s.ReturnScript = ""
		} else {
			notify.Error(env.Out, "Error: there is no story to return to.")
			out = Outcome{Next: s.CurrentScript, Redraw: true}
		}

	case types.KindConditionalStoryChange:
		v, _ := state.Lookup(s, a.FlagName)
		if state.Truthy(v) {
			out = Outcome{Next: a.ScriptIfTrue, Redraw: true}
		} else {
			out = Outcome{Next: a.ScriptIfFalse, Redraw: true}
		}

	case types.KindConditionalActionByFlag:
		return chain(a, s, env, depth)

	case types.KindLocationChange:
		s.Location = a.NewLocation
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindLocationChangeAndSetFlags:
		applyFlags(s, a.Flags)
		s.Location = a.NewLocation
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindStoryChangeAndSetFlags:
		applyFlags(s, a.Flags)
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindUnlockCommand:
		if state.UnlockCommand(s, a.Command) {
			notify.Notice(env.Out, UnlockNoticeDelay, "[New command unlocked: %s]", a.Command)
		}
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindStoryChangeAndUnlockSet:
		var added []string
		for _, cmd := range a.Commands {
			if state.UnlockCommand(s, cmd) {
				added = append(added, cmd)
			}
		}
		if len(added) > 0 {
			notify.Notice(env.Out, UnlockNoticeDelay, "[New commands unlocked: %s]", strings.Join(added, ", "))
		}
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindAcquireItem, types.KindAcquireItemAndSetFlag:
		granted, known := acquire(a, s, env)
		if !known {
			return Outcome{Redraw: true}
		}
		if granted && a.Kind == types.KindAcquireItemAndSetFlag && a.Flag != nil {
			applyFlags(s, []types.FlagAssignment{*a.Flag})
		}
		out = Outcome{Next: a.Script, Redraw: true}

	case types.KindToggleProtocol:
		toggleProtocol(a.Protocol, s, env)
		out = Outcome{Next: s.CurrentScript, Redraw: true}

	default:
		env.Log.Warn("unknown action kind", "action", a.ID, "kind", string(a.Kind))
		notify.Error(env.Out, "Warning: action '%s' has unknown kind '%s'.", a.ID, a.Kind)
		return Outcome{}
	}

	if a.TimeCost > 0 {
		s.Clock += a.TimeCost
	}
	return out
}

// acquire runs the credit gate and grants one unit on success. known is
// false when the item is missing from the catalog. Items without an
// explicit required credit default to 0.
func acquire(a types.Action, s *types.PlayerState, env Env) (granted, known bool) {
	item, ok := env.Defs.Items[a.ItemID]
	if !ok {
		notify.Error(env.Out, "Error: item '%s' is not defined.", a.ItemID)
		return false, false
	}
	name := item.Name
	if name == "" {
		name = a.ItemID
	}
	if s.CreditLevel < item.RequiredCredit {
		notify.Notice(env.Out, 0, "[Access denied: %s requires credit level %d (you have %d)]",
			name, item.RequiredCredit, s.CreditLevel)
		return false, true
	}
	n := state.AddItem(s, a.ItemID)
	notify.Notice(env.Out, 0, "[Acquired: %s (x%d)]", name, n)
	return true, true
}

// toggleProtocol flips a protocol, refusing to switch off the last one on.
func toggleProtocol(name string, s *types.PlayerState, env Env) {
	if s.Network.Protocols == nil {
		s.Network.Protocols = map[string]bool{}
	}
	if s.Network.Protocols[name] {
		if len(state.ActiveProtocols(s)) <= 1 {
			notify.Notice(env.Out, 0, "[Cannot disable %s: at least one protocol must stay active]", name)
			return
		}
		s.Network.Protocols[name] = false
		notify.Notice(env.Out, 0, "[%s disabled]", name)
		return
	}
	s.Network.Protocols[name] = true
	notify.Notice(env.Out, 0, "[%s enabled]", name)
}

// chain picks another action by the stringified flag value and runs it.
func chain(a types.Action, s *types.PlayerState, env Env, depth int) Outcome {
	if depth >= maxChainDepth {
		env.Log.Warn("action chain too deep", "action", a.ID, "depth", depth)
		notify.Error(env.Out, "Error: action '%s' chains too deeply.", a.ID)
		return Outcome{}
	}

	v, _ := state.Lookup(s, a.FlagName)
	next, ok := a.Cases[state.Stringify(v)]
	if !ok {
		next = a.DefaultAction
	}
	if next == "" {
		notify.Error(env.Out, "Error: action '%s' has no case for the current state.", a.ID)
		return Outcome{}
	}

	target, ok := env.Defs.Actions[next]
	if !ok {
		notify.Error(env.Out, "Error: action '%s' is not defined.", next)
		return Outcome{}
	}
	if target.ID == "" {
		target.ID = next
	}
	out := execute(target, s, env, depth+1)
	if out.Redraw && a.TimeCost > 0 {
		s.Clock += a.TimeCost
	}
	return out
}

// applyFlags sets each flag by dotted path in declaration order.
func applyFlags(s *types.PlayerState, flags []types.FlagAssignment) {
	if s.Flags == nil {
		s.Flags = map[string]any{}
	}
	for _, f := range flags {
		if f.Name == "" {
			continue
		}
		state.SetPath(s.Flags, f.Name, f.Value)
	}
}

// Kinds returns the action vocabulary, sorted.
func Kinds() []string {
	kinds := []string{
		string(types.KindStoryChange),
		string(types.KindEnterStory),
		string(types.KindExitStory),
		string(types.KindConditionalStoryChange),
		string(types.KindConditionalActionByFlag),
		string(types.KindLocationChange),
		string(types.KindLocationChangeAndSetFlags),
		string(types.KindStoryChangeAndSetFlags),
		string(types.KindUnlockCommand),
		string(types.KindStoryChangeAndUnlockSet),
		string(types.KindAcquireItem),
		string(types.KindAcquireItemAndSetFlag),
		string(types.KindToggleProtocol),
	}
	sort.Strings(kinds)
	return kinds
}

func (e Env) withDefaults() Env {
	if e.Defs == nil {
		e.Defs = &state.Defs{}
	}
	if e.Out == nil {
		e.Out = notify.Discard
	}
	if e.Log == nil {
		e.Log = slog.Default()
	}
	return e
}
