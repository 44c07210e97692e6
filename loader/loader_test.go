package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/navishell/types"
)

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal", Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal Test Game")
	}
	if defs.Game.StartScript != "00_entry.md" {
		t.Errorf("StartScript = %q, want %q", defs.Game.StartScript, "00_entry.md")
	}
	if defs.Player.Flags == nil || defs.Player.Inventory == nil {
		t.Error("player defaults should be normalized")
	}
	if defs.Player.Cwd != "/" {
		t.Errorf("Cwd = %q, want /", defs.Player.Cwd)
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full", Options{
		StoryDir: "testdata/full/story",
		Commands: []string{"help", "ls", "cd", "cat"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Game metadata.
	if defs.Game.Author != "Tester" {
		t.Errorf("Author = %q", defs.Game.Author)
	}
	if defs.Game.MailDir != "/var/mail" {
		t.Errorf("MailDir = %q", defs.Game.MailDir)
	}

	// Player defaults.
	p := defs.Player
	if p.Name != "Lain" || p.Location != "lain_room" || p.Cwd != "/home/lain" {
		t.Errorf("player = %q/%q/%q", p.Name, p.Location, p.Cwd)
	}
	if p.CreditLevel != 1 {
		t.Errorf("CreditLevel = %d, want 1", p.CreditLevel)
	}
	if len(p.UnlockedCommands) != 2 || p.UnlockedCommands[1] != "ls" {
		t.Errorf("UnlockedCommands = %v", p.UnlockedCommands)
	}
	if p.Flags["mood"] != "sad" {
		t.Errorf("mood flag = %v", p.Flags["mood"])
	}
	visits, ok := p.Flags["visits"].(map[string]any)
	if !ok || visits["room"] != 2 {
		t.Errorf("visits flag = %v", p.Flags["visits"])
	}
	if p.Inventory["chip"] != 1 {
		t.Errorf("chip quantity = %d", p.Inventory["chip"])
	}
	if !p.Network.Protocols["ipv4"] || p.Network.Scope != "local" {
		t.Errorf("network = %+v", p.Network)
	}
	if loaded, ok := p.Drivers["navi_gpu"]; !ok || loaded {
		t.Errorf("drivers = %v", p.Drivers)
	}

	// Actions.
	if len(defs.Actions) != 4 {
		t.Errorf("expected 4 actions, got %d", len(defs.Actions))
	}
	goSchool := defs.Actions["go_school"]
	if goSchool.Kind != types.KindLocationChangeAndSetFlags || goSchool.NewLocation != "school" {
		t.Errorf("go_school = %+v", goSchool)
	}
	if goSchool.TimeCost != 45 {
		t.Errorf("TimeCost = %d, want 45", goSchool.TimeCost)
	}
	if len(goSchool.Flags) != 2 || goSchool.Flags[0].Name != "visited.school" || goSchool.Flags[1].Value != 2 {
		t.Errorf("go_school flags = %+v", goSchool.Flags)
	}
	check := defs.Actions["check_mood"]
	if check.Cases["sad"] != "go_school" || check.Cases["3"] != "repair_navi" {
		t.Errorf("cases = %v", check.Cases)
	}
	if check.DefaultAction != "go_school" {
		t.Errorf("DefaultAction = %q", check.DefaultAction)
	}
	repair := defs.Actions["repair_navi"]
	if repair.Flag == nil || repair.Flag.Name != "navi.repaired" || repair.Flag.Value != true {
		t.Errorf("repair_navi flag = %+v", repair.Flag)
	}

	// Items.
	if defs.Items["chip"].RequiredCredit != 2 {
		t.Errorf("chip RequiredCredit = %d", defs.Items["chip"].RequiredCredit)
	}

	// World.
	room, ok := defs.World["lain_room"]
	if !ok {
		t.Fatal("location 'lain_room' not found")
	}
	if len(room.POIs) != 3 {
		t.Fatalf("expected 3 POIs, got %d", len(room.POIs))
	}
	navi := room.POIs[0]
	if navi.Action != "repair_navi" || len(navi.SubItems) != 1 || navi.SubItems[0].ID != "screen" {
		t.Errorf("navi = %+v", navi)
	}
	window := room.POIs[1].Condition
	if window.MinDay == nil || *window.MinDay != 2 || window.HourStart == nil || *window.HourEnd != 6 {
		t.Errorf("window condition = %+v", window)
	}
	if window.MaxDay != nil {
		t.Error("MaxDay should be unset")
	}
	if bear := room.POIs[2].Condition; bear.Flag != "mood" || bear.Value != "sad" {
		t.Errorf("bear condition = %+v", bear)
	}

	// Permissions.
	if len(defs.Permissions) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(defs.Permissions))
	}
	if perm := defs.Permissions[0]; perm.Prefix != "/secret" || perm.ListLevel != 1 || perm.ReadLevel != 3 {
		t.Errorf("permission = %+v", perm)
	}
}

func TestLoad_MissingStartScript_Fails(t *testing.T) {
	_, err := Load("testdata/minimal", Options{StoryDir: "testdata/full/story_missing"})
	if err == nil {
		t.Fatal("expected error for missing start script")
	}
	if !strings.Contains(err.Error(), "start script") {
		t.Errorf("error = %q, expected 'start script'", err.Error())
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs", Options{})
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	assertContains(t, ve.Errors, "undefined action")
	assertContains(t, ve.Errors, "undefined item")
}

func TestLoad_DuplicateActionIDs_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_actions", Options{})
	if err == nil {
		t.Fatal("expected error for duplicate action IDs")
	}
	if !strings.Contains(err.Error(), "duplicate action") {
		t.Errorf("error = %q, expected 'duplicate action'", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua", Options{})
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_game", Options{})
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_NoLuaFiles_Fails(t *testing.T) {
	_, err := Load(t.TempDir(), Options{})
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("error = %v, expected 'no .lua files'", err)
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, src := range []string{
		`os.execute("echo pwned")`,
		`io.open("/etc/passwd")`,
		`dofile("game.lua")`,
		`require("os")`,
		`math.random()`,
	} {
		if err := L.DoString(src); err == nil {
			t.Errorf("expected sandbox to block %s", src)
		}
	}
}

func TestLoad_LegacyJSONTables(t *testing.T) {
	defs, err := Load("testdata/legacy", Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Lua wins on conflicts.
	if got := defs.Actions["go_home"].Script; got != "home.md" {
		t.Errorf("go_home script = %q, want home.md", got)
	}

	lab := defs.Actions["go_lab"]
	if lab.Kind != types.KindLocationChangeAndSetFlags || lab.NewLocation != "lab" || lab.Script != "lab.md" {
		t.Errorf("go_lab = %+v", lab)
	}
	if lab.TimeCost != 30 {
		t.Errorf("TimeCost = %d, want 30", lab.TimeCost)
	}
	if len(lab.Flags) != 2 || lab.Flags[0].Value != true || lab.Flags[1].Value != 2 {
		t.Errorf("go_lab flags = %+v", lab.Flags)
	}

	mood := defs.Actions["check_mood"]
	if mood.Cases["happy"] != "go_home" || mood.DefaultAction != "go_lab" {
		t.Errorf("check_mood = %+v", mood)
	}

	chip := defs.Actions["take_chip"]
	if chip.ItemID != "chip" || chip.Flag == nil || chip.Flag.Value != 1 {
		t.Errorf("take_chip = %+v", chip)
	}

	if defs.Items["chip"].RequiredCredit != 0 {
		t.Errorf("missing required_credit should be 0, got %d", defs.Items["chip"].RequiredCredit)
	}
	if defs.Items["key"].RequiredCredit != 2 {
		t.Errorf("key RequiredCredit = %d, want 2", defs.Items["key"].RequiredCredit)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"world.lua", "actions.lua", "game.lua", "items.lua"})
	want := []string{"game.lua", "actions.lua", "items.lua", "world.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sortedLuaFiles = %v, want %v", got, want)
	}
}
