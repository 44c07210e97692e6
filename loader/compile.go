// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading: no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getIntPtr returns a pointer to an int field, or nil if missing.
func getIntPtr(tbl *lua.LTable, key string) *int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		i := int(n)
		return &i
	}
	return nil
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringMap converts a Lua table to a map[string]string. Keys and
// values may be strings or numbers.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if vs, ok := v.(lua.LString); ok {
			m[state.Stringify(toGoValue(k))] = string(vs)
		}
	})
	return m
}

// tableToStrings converts a Lua array to a []string in index order.
func tableToStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Actions: map[string]types.Action{},
		Items:   map[string]types.Item{},
		World:   map[string]types.Location{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	if coll.player != nil {
		defs.Player = compilePlayer(coll.player)
	}
	state.Normalize(&defs.Player)

	for _, raw := range coll.actions {
		if _, dup := defs.Actions[raw.id]; dup {
			return nil, fmt.Errorf("duplicate action %q", raw.id)
		}
		defs.Actions[raw.id] = compileAction(raw)
	}

	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("duplicate item %q", raw.id)
		}
		defs.Items[raw.id] = compileItem(raw)
	}

	for _, raw := range coll.locations {
		if _, dup := defs.World[raw.id]; dup {
			return nil, fmt.Errorf("duplicate location %q", raw.id)
		}
		loc, err := compileLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling location %s: %w", raw.id, err)
		}
		defs.World[raw.id] = loc
	}

	for _, raw := range coll.permissions {
		defs.Permissions = append(defs.Permissions, types.Permission{
			Prefix:    raw.id,
			ListLevel: getInt(raw.table, "list"),
			ReadLevel: getInt(raw.table, "read"),
		})
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:       getString(tbl, "title"),
		Author:      getString(tbl, "author"),
		Version:     getString(tbl, "version"),
		StartScript: getString(tbl, "start"),
		MailDir:     getString(tbl, "mail_dir"),
		Intro:       getString(tbl, "intro"),
	}
}

func compilePlayer(tbl *lua.LTable) types.PlayerState {
	p := types.PlayerState{
		Name:             getString(tbl, "name"),
		Location:         getString(tbl, "location"),
		CurrentScript:    getString(tbl, "script"),
		UnlockedCommands: tableToStrings(getTable(tbl, "unlocked_commands")),
		CreditLevel:      getInt(tbl, "credit_level"),
		Cwd:              getString(tbl, "cwd"),
		Clock:            getInt(tbl, "clock"),
		Network:          types.NetworkStatus{Scope: getString(tbl, "scope")},
	}

	if flags, ok := toGoValue(tbl.RawGetString("flags")).(map[string]any); ok {
		p.Flags = flags
	}
	if inv := getTable(tbl, "inventory"); inv != nil {
		p.Inventory = map[string]int{}
		inv.ForEach(func(k, v lua.LValue) {
			if n, ok := v.(lua.LNumber); ok {
				p.Inventory[k.String()] = int(n)
			}
		})
	}
	p.Network.Protocols = tableToBoolMap(getTable(tbl, "protocols"))
	p.Drivers = tableToBoolMap(getTable(tbl, "drivers"))
	return p
}

func tableToBoolMap(tbl *lua.LTable) map[string]bool {
	if tbl == nil {
		return nil
	}
	m := map[string]bool{}
	tbl.ForEach(func(k, v lua.LValue) {
		if b, ok := v.(lua.LBool); ok {
			m[k.String()] = bool(b)
		}
	})
	return m
}

// compileAction reads the payload fields every kind may use. Which ones
// matter depends on the kind; validation checks the required ones.
func compileAction(raw rawDef) types.Action {
	tbl := raw.table
	a := types.Action{
		ID:            raw.id,
		Kind:          types.ActionKind(getString(tbl, "kind")),
		Script:        getString(tbl, "script"),
		NewLocation:   getString(tbl, "new_location"),
		FlagName:      getString(tbl, "flag_name"),
		ScriptIfTrue:  getString(tbl, "if_true"),
		ScriptIfFalse: getString(tbl, "if_false"),
		Command:       getString(tbl, "command"),
		Commands:      tableToStrings(getTable(tbl, "commands")),
		ItemID:        getString(tbl, "item"),
		Protocol:      getString(tbl, "protocol"),
		Cases:         tableToStringMap(getTable(tbl, "cases")),
		DefaultAction: getString(tbl, "default"),
		TimeCost:      getInt(tbl, "time_cost"),
	}

	if flags := getTable(tbl, "flags"); flags != nil {
		for i := 1; i <= flags.MaxN(); i++ {
			if f, ok := flags.RawGetInt(i).(*lua.LTable); ok {
				a.Flags = append(a.Flags, compileFlag(f))
			}
		}
	}
	if f := getTable(tbl, "set"); f != nil {
		fa := compileFlag(f)
		a.Flag = &fa
	}
	return a
}

func compileFlag(tbl *lua.LTable) types.FlagAssignment {
	return types.FlagAssignment{
		Name:  getString(tbl, "name"),
		Value: toGoValue(tbl.RawGetString("value")),
	}
}

func compileItem(raw rawDef) types.Item {
	return types.Item{
		ID:             raw.id,
		Name:           getString(raw.table, "name"),
		Description:    getString(raw.table, "description"),
		RequiredCredit: getInt(raw.table, "required_credit"),
	}
}

func compileLocation(raw rawDef) (types.Location, error) {
	loc := types.Location{
		ID:          raw.id,
		Name:        getString(raw.table, "name"),
		Description: getString(raw.table, "description"),
	}
	pois, err := compilePOIs(getTable(raw.table, "pois"), true)
	if err != nil {
		return types.Location{}, err
	}
	loc.POIs = pois
	return loc, nil
}

// compilePOIs reads an array of POI tables. Sub-items nest one level.
func compilePOIs(tbl *lua.LTable, allowSub bool) ([]types.POI, error) {
	if tbl == nil {
		return nil, nil
	}
	var pois []types.POI
	for i := 1; i <= tbl.MaxN(); i++ {
		pt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		p := types.POI{
			ID:          getString(pt, "id"),
			Name:        getString(pt, "name"),
			Description: getString(pt, "description"),
			Action:      getString(pt, "action"),
		}
		if p.ID == "" {
			return nil, fmt.Errorf("point of interest #%d has no id", i)
		}
		if when := getTable(pt, "when"); when != nil {
			p.Condition = compileCondition(when)
		}
		if subs := getTable(pt, "sub_items"); subs != nil {
			if !allowSub {
				return nil, fmt.Errorf("point of interest %q: sub-items nest only one level", p.ID)
			}
			sub, err := compilePOIs(subs, false)
			if err != nil {
				return nil, err
			}
			p.SubItems = sub
		}
		pois = append(pois, p)
	}
	return pois, nil
}

func compileCondition(tbl *lua.LTable) types.Condition {
	c := types.Condition{
		Flag:      getString(tbl, "flag"),
		MinDay:    getIntPtr(tbl, "min_day"),
		MaxDay:    getIntPtr(tbl, "max_day"),
		ExactDay:  getIntPtr(tbl, "exact_day"),
		HourStart: getIntPtr(tbl, "hour_start"),
		HourEnd:   getIntPtr(tbl, "hour_end"),
	}
	if v := tbl.RawGetString("value"); v != lua.LNil {
		c.Value = toGoValue(v)
	}
	return c
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
