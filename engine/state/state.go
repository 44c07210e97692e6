// Package state holds the immutable game definitions and the helpers that
// read and update player state: dotted-path flags, value stringification,
// unlocked commands, and inventory.
package state

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/navishell/types"
)

// Defs holds the immutable game definitions loaded at startup.
type Defs struct {
	Game        types.GameDef
	Actions     map[string]types.Action
	Items       map[string]types.Item
	World       map[string]types.Location
	Permissions []types.Permission
	Player      types.PlayerState // defaults for a new session
}

// NewState creates a fresh player state from the definition defaults.
func NewState(defs *Defs) *types.PlayerState {
	s := Clone(&defs.Player)
	if s.CurrentScript == "" {
		s.CurrentScript = defs.Game.StartScript
	}
	if s.Cwd == "" {
		s.Cwd = "/"
	}
	return s
}

// Normalize replaces nil maps and slices with empty ones.
func Normalize(s *types.PlayerState) {
	if s.Flags == nil {
		s.Flags = map[string]any{}
	}
	if s.UnlockedCommands == nil {
		s.UnlockedCommands = []string{}
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	if s.Network.Protocols == nil {
		s.Network.Protocols = map[string]bool{}
	}
	if s.Drivers == nil {
		s.Drivers = map[string]bool{}
	}
	if s.Cwd == "" {
		s.Cwd = "/"
	}
}

// Clone returns a deep copy of a player state.
func Clone(src *types.PlayerState) *types.PlayerState {
	dst := *src
	dst.Flags = cloneMap(src.Flags)
	dst.UnlockedCommands = append([]string{}, src.UnlockedCommands...)
	dst.Inventory = make(map[string]int, len(src.Inventory))
	for k, v := range src.Inventory {
		dst.Inventory[k] = v
	}
	dst.Network.Protocols = make(map[string]bool, len(src.Network.Protocols))
	for k, v := range src.Network.Protocols {
		dst.Network.Protocols[k] = v
	}
	dst.Drivers = make(map[string]bool, len(src.Drivers))
	for k, v := range src.Drivers {
		dst.Drivers[k] = v
	}
	dst.MailCache = nil
	Normalize(&dst)
	return &dst
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = cloneMap(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// GetPath returns the flag value at a dotted path. Missing segments, or a
// non-map value in the middle of the path, report not found.
func GetPath(flags map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	head, rest, nested := strings.Cut(path, ".")
	v, ok := flags[head]
	if !ok {
		return nil, false
	}
	if !nested {
		return v, true
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return GetPath(sub, rest)
}

// SetPath sets the flag at a dotted path, creating intermediate maps as
// needed and replacing non-map intermediates.
func SetPath(flags map[string]any, path string, value any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		flags[head] = value
		return
	}
	sub, ok := flags[head].(map[string]any)
	if !ok {
		sub = map[string]any{}
		flags[head] = sub
	}
	SetPath(sub, rest, value)
}

// Lookup resolves a state variable by name. A few player fields are
// addressable by their persisted names; everything else is a flag path.
func Lookup(s *types.PlayerState, name string) (any, bool) {
	switch name {
	case "location":
		return s.Location, true
	case "credit_level":
		return s.CreditLevel, true
	case "current_script":
		return s.CurrentScript, true
	case "name":
		return s.Name, true
	}
	return GetPath(s.Flags, name)
}

// Stringify renders a state value the way script branches are keyed:
// integral numbers without a fraction, booleans as true/false, nil as "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return ""
	}
}

// Truthy reports whether a state value counts as set. Missing, false,
// zero, empty, "0" and "false" are all unset.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "0" && val != "false"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// HasCommand reports whether a command is unlocked.
func HasCommand(s *types.PlayerState, cmd string) bool {
	for _, c := range s.UnlockedCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// UnlockCommand adds a command if absent. Returns true if it was added.
func UnlockCommand(s *types.PlayerState, cmd string) bool {
	if cmd == "" || HasCommand(s, cmd) {
		return false
	}
	s.UnlockedCommands = append(s.UnlockedCommands, cmd)
	return true
}

// ItemQuantity returns how many of an item the player holds.
func ItemQuantity(s *types.PlayerState, itemID string) int {
	return s.Inventory[itemID]
}

// AddItem increments an item's quantity by one and returns the new count.
func AddItem(s *types.PlayerState, itemID string) int {
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	s.Inventory[itemID]++
	return s.Inventory[itemID]
}

// OwnedItems returns item IDs with a positive quantity, sorted.
func OwnedItems(s *types.PlayerState) []string {
	var ids []string
	for id, n := range s.Inventory {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ActiveProtocols returns the names of protocols that are on, sorted.
func ActiveProtocols(s *types.PlayerState) []string {
	var names []string
	for name, on := range s.Network.Protocols {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Day returns the zero-based game day.
func Day(s *types.PlayerState) int {
	return s.Clock / (24 * 60)
}

// Hour returns the hour of the current game day.
func Hour(s *types.PlayerState) int {
	return (s.Clock / 60) % 24
}
