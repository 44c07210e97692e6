package shell

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// helpOrder is the display order of help lines.
var helpOrder = []string{
	"help", "inventory", "ls", "cd", "cat", "pwd", "whoami", "clear",
	"cmake", "examine", "arls", "mail", "driver", "network",
}

var helpText = map[string]string{
	"help":      "help                - show this help",
	"inventory": "inventory/inv       - list carried items",
	"ls":        "ls [path]           - list files and directories",
	"cd":        "cd <path>           - change directory",
	"cat":       "cat <file>          - print a file",
	"pwd":       "pwd                 - print the current directory",
	"whoami":    "whoami              - print the current user",
	"clear":     "clear/cls           - clear the screen",
	"cmake":     "cmake .             - (simulated) configure the project here",
	"examine":   "examine <id> [sub]  - inspect something nearby",
	"arls":      "arls                - scan the surroundings",
	"mail":      "mail list|read <n>|delete <n>",
	"driver":    "driver list|load <d>|unload <d>",
	"network":   "network status      - show active protocols",
}

func (in *Interpreter) help(_ []string, s *types.PlayerState) (string, bool) {
	lines := []string{"Available commands:"}
	for _, name := range helpOrder {
		if unlocked(s, name) {
			lines = append(lines, "  "+helpText[name])
		}
	}
	notify.Text(in.Out, "%s", strings.Join(lines, "\n"))
	return "", false
}

func (in *Interpreter) inventory(_ []string, s *types.PlayerState) (string, bool) {
	ids := state.OwnedItems(s)
	if len(ids) == 0 {
		notify.Text(in.Out, "Your inventory is empty.")
		return "", false
	}

	lines := []string{"Inventory:"}
	for _, id := range ids {
		n := state.ItemQuantity(s, id)
		item, ok := in.Defs.Items[id]
		if !ok {
			lines = append(lines, fmt.Sprintf("  - %s (unknown item) x%d", id, n))
			continue
		}
		name := item.Name
		if name == "" {
			name = id
		}
		line := fmt.Sprintf("  - %s x%d", name, n)
		if item.Description != "" {
			line += ": " + item.Description
		}
		lines = append(lines, line)
	}
	notify.Text(in.Out, "%s", strings.Join(lines, "\n"))
	return "", false
}

func (in *Interpreter) whoami(_ []string, s *types.PlayerState) (string, bool) {
	name := s.Name
	if name == "" {
		name = "user"
	}
	notify.Text(in.Out, "%s", cases.Lower(language.Und).String(name))
	return "", false
}

func (in *Interpreter) clear(_ []string, _ *types.PlayerState) (string, bool) {
	return "", true
}

func (in *Interpreter) driver(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 {
		notify.Error(in.Out, "Usage: driver list|load <name>|unload <name>")
		return "", false
	}
	if s.Drivers == nil {
		s.Drivers = map[string]bool{}
	}

	switch args[0] {
	case "list":
		if len(s.Drivers) == 0 {
			notify.Text(in.Out, "No drivers installed.")
			return "", false
		}
		names := make([]string, 0, len(s.Drivers))
		for name := range s.Drivers {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, len(names))
		for i, name := range names {
			status := "unloaded"
			if s.Drivers[name] {
				status = "loaded"
			}
			lines[i] = fmt.Sprintf("  %-16s %s", name, status)
		}
		notify.Text(in.Out, "%s", strings.Join(lines, "\n"))

	case "load", "unload":
		if len(args) < 2 {
			notify.Error(in.Out, "Usage: driver %s <name>", args[0])
			return "", false
		}
		name := args[1]
		loaded, known := s.Drivers[name]
		if !known {
			notify.Error(in.Out, "driver: unknown driver: %s", name)
			return "", false
		}
		want := args[0] == "load"
		if loaded == want {
			notify.Notice(in.Out, 0, "driver: %s is already %sed", name, args[0])
			return "", false
		}
		s.Drivers[name] = want
		notify.Notice(in.Out, 0, "driver: %s %sed", name, args[0])

	default:
		notify.Error(in.Out, "Usage: driver list|load <name>|unload <name>")
	}
	return "", false
}

func (in *Interpreter) network(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 || args[0] != "status" {
		notify.Error(in.Out, "Usage: network status")
		return "", false
	}

	active := state.ActiveProtocols(s)
	protocols := "(none)"
	if len(active) > 0 {
		protocols = strings.Join(active, ", ")
	}
	scope := s.Network.Scope
	if scope == "" {
		scope = "local"
	}
	notify.Text(in.Out, "Active protocols: %s\nScope: %s", protocols, scope)
	return "", false
}
