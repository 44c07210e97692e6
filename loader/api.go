package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L)
}

// curried returns a Lua function for the Kind "id" { ... } form: the
// first call takes the id, the returned function takes the table.
func curried(L *lua.LState, sink func(rawDef)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			sink(rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "00_entry.md", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Player { name = "...", location = "...", ... } sets new-game defaults.
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		coll.player = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Action", curried(L, func(d rawDef) { coll.actions = append(coll.actions, d) }))
	L.SetGlobal("Item", curried(L, func(d rawDef) { coll.items = append(coll.items, d) }))
	L.SetGlobal("Location", curried(L, func(d rawDef) { coll.locations = append(coll.locations, d) }))

	// Permission "/prefix" { list = 1, read = 2 }
	L.SetGlobal("Permission", curried(L, func(d rawDef) { coll.permissions = append(coll.permissions, d) }))
}

func registerHelpers(L *lua.LState) {
	// When { flag = "...", value = ..., min_day = 1, ... } is a pass-through
	// that marks a POI condition.
	L.SetGlobal("When", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		L.Push(tbl)
		return 1
	}))

	// Flag("path.to.flag", value)
	L.SetGlobal("Flag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("name", lua.LString(name))
		tbl.RawSetString("value", L.Get(2))
		L.Push(tbl)
		return 1
	}))
}
