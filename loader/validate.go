package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/navishell/engine/actions"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks defs and logs warnings. It returns a *ValidationError
// only when there are errors.
func Validate(defs *state.Defs, opts Options) error {
	ve := Check(defs, opts)

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	for _, w := range ve.Warnings {
		log.Warn("game data", "warning", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// Check runs every validation rule and returns all findings. The tables
// it checks against come from defs and opts, never from globals.
func Check(defs *state.Defs, opts Options) *ValidationError {
	ve := &ValidationError{}
	kinds := map[string]bool{}
	for _, k := range actions.Kinds() {
		kinds[k] = true
	}
	commands := map[string]bool{}
	for _, c := range opts.Commands {
		commands[c] = true
	}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}
	if defs.Game.StartScript == "" {
		ve.errorf("Game.start is required")
	} else if opts.StoryDir != "" && !scriptExists(opts.StoryDir, defs.Game.StartScript) {
		ve.errorf("start script %q not found in %s", defs.Game.StartScript, opts.StoryDir)
	}

	// Stable order so messages are reproducible.
	ids := make([]string, 0, len(defs.Actions))
	for id := range defs.Actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := defs.Actions[id]
		if !kinds[string(a.Kind)] {
			ve.errorf("action %q has unknown kind %q", id, a.Kind)
			continue
		}
		validateAction(id, a, defs, commands, ve)

		if opts.StoryDir != "" {
			for _, script := range []string{a.Script, a.ScriptIfTrue, a.ScriptIfFalse} {
				if script != "" && !scriptExists(opts.StoryDir, script) {
					ve.warnf("action %q references missing script %q", id, script)
				}
			}
		}
	}

	for locID, loc := range defs.World {
		for _, p := range loc.POIs {
			validatePOI(locID, p, defs, ve)
			for _, sub := range p.SubItems {
				validatePOI(locID, sub, defs, ve)
			}
		}
	}

	for _, p := range defs.Permissions {
		if !strings.HasPrefix(p.Prefix, "/") {
			ve.errorf("permission prefix %q must be absolute", p.Prefix)
		}
	}

	if loc := defs.Player.Location; loc != "" && len(defs.World) > 0 {
		if _, ok := defs.World[loc]; !ok {
			ve.warnf("player location %q does not match any defined location", loc)
		}
	}
	for _, c := range defs.Player.UnlockedCommands {
		if len(commands) > 0 && !commands[c] {
			ve.warnf("player starts with unknown command %q", c)
		}
	}
	return ve
}

func validateAction(id string, a types.Action, defs *state.Defs, commands map[string]bool, ve *ValidationError) {
	require := func(field, value string) {
		if value == "" {
			ve.errorf("action %q (%s) requires %s", id, a.Kind, field)
		}
	}

	switch a.Kind {
	case types.KindStoryChange, types.KindEnterStory, types.KindStoryChangeAndSetFlags:
		require("script", a.Script)

	case types.KindLocationChange, types.KindLocationChangeAndSetFlags:
		require("new_location", a.NewLocation)
		if _, ok := defs.World[a.NewLocation]; a.NewLocation != "" && len(defs.World) > 0 && !ok {
			ve.warnf("action %q moves to undefined location %q", id, a.NewLocation)
		}

	case types.KindConditionalStoryChange:
		require("flag_name", a.FlagName)
		require("if_true", a.ScriptIfTrue)
		require("if_false", a.ScriptIfFalse)

	case types.KindConditionalActionByFlag:
		require("flag_name", a.FlagName)
		if len(a.Cases) == 0 && a.DefaultAction == "" {
			ve.errorf("action %q (%s) needs cases or a default", id, a.Kind)
		}
		for value, target := range a.Cases {
			if _, ok := defs.Actions[target]; !ok {
				ve.errorf("action %q case %q references undefined action %q", id, value, target)
			}
		}
		if a.DefaultAction != "" {
			if _, ok := defs.Actions[a.DefaultAction]; !ok {
				ve.errorf("action %q default references undefined action %q", id, a.DefaultAction)
			}
		}

	case types.KindUnlockCommand:
		require("command", a.Command)
		if a.Command != "" && len(commands) > 0 && !commands[a.Command] {
			ve.warnf("action %q unlocks unknown command %q", id, a.Command)
		}

	case types.KindStoryChangeAndUnlockSet:
		require("script", a.Script)
		if len(a.Commands) == 0 {
			ve.errorf("action %q (%s) requires commands", id, a.Kind)
		}
		for _, c := range a.Commands {
			if len(commands) > 0 && !commands[c] {
				ve.warnf("action %q unlocks unknown command %q", id, c)
			}
		}

	case types.KindAcquireItem, types.KindAcquireItemAndSetFlag:
		require("item", a.ItemID)
		if _, ok := defs.Items[a.ItemID]; a.ItemID != "" && !ok {
			ve.errorf("action %q references undefined item %q", id, a.ItemID)
		}
		if a.Kind == types.KindAcquireItemAndSetFlag && (a.Flag == nil || a.Flag.Name == "") {
			ve.errorf("action %q (%s) requires a flag to set", id, a.Kind)
		}

	case types.KindToggleProtocol:
		require("protocol", a.Protocol)
	}

	for _, f := range a.Flags {
		if f.Name == "" {
			ve.errorf("action %q sets a flag with no name", id)
		}
	}
}

func validatePOI(locID string, p types.POI, defs *state.Defs, ve *ValidationError) {
	if p.Action == "" {
		return
	}
	if _, ok := defs.Actions[p.Action]; !ok {
		ve.errorf("location %q point %q references undefined action %q", locID, p.ID, p.Action)
	}
}

func scriptExists(dir, script string) bool {
	fi, err := os.Stat(filepath.Join(dir, filepath.Clean(string(filepath.Separator)+script)))
	return err == nil && !fi.IsDir()
}
