package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/navishell/engine/state"
)

// Compatibility files decoded alongside the Lua sources when present.
const (
	actionsJSONFile = "actions.json"
	itemsJSONFile   = "items.json"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game        *lua.LTable
	player      *lua.LTable
	actions     []rawDef
	items       []rawDef
	locations   []rawDef
	permissions []rawDef
}

// rawDef is a curried constructor call: Kind "id" { ... }.
type rawDef struct {
	id    string
	table *lua.LTable
}

// Options controls loading and validation.
type Options struct {
	// StoryDir, when set, is checked for every script the data references.
	StoryDir string
	// Commands is the set of shell commands unlock actions may name.
	Commands []string
	Log      *slog.Logger
}

// Load reads all .lua files from dir, compiles them into game definitions,
// merges legacy JSON tables if present, validates references, and returns
// the immutable Defs. The Lua VM is discarded after loading.
func Load(dir string, opts Options) (*state.Defs, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	if err := mergeJSON(dir, defs); err != nil {
		return nil, err
	}

	if err := Validate(defs, Options{StoryDir: opts.StoryDir, Commands: opts.Commands, Log: log}); err != nil {
		return nil, err
	}

	log.Info("game data loaded",
		"title", defs.Game.Title,
		"files", len(luaFiles),
		"actions", len(defs.Actions),
		"items", len(defs.Items),
		"locations", len(defs.World),
		"permissions", len(defs.Permissions))
	return defs, nil
}

// mergeJSON adds entries from legacy JSON tables. Lua definitions win on
// conflicting names.
func mergeJSON(dir string, defs *state.Defs) error {
	if data, err := os.ReadFile(filepath.Join(dir, actionsJSONFile)); err == nil {
		acts, err := DecodeActionsJSON(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", actionsJSONFile, err)
		}
		for id, a := range acts {
			if _, ok := defs.Actions[id]; !ok {
				defs.Actions[id] = a
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", actionsJSONFile, err)
	}

	if data, err := os.ReadFile(filepath.Join(dir, itemsJSONFile)); err == nil {
		items, err := DecodeItemsJSON(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", itemsJSONFile, err)
		}
		for id, it := range items {
			if _, ok := defs.Items[id]; !ok {
				defs.Items[id] = it
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", itemsJSONFile, err)
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Game data must load the same way every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}
