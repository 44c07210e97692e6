package save

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:       "Test Game",
			Version:     "1.0",
			StartScript: "00_entry.md",
		},
		Player: types.PlayerState{Name: "Lain", Location: "lain_room"},
	}
}

func TestRoundTrip(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	// Modify state.
	s.Location = "server_room"
	s.CurrentScript = "03_chapter.md"
	s.ReturnScript = "02_downstairs.md"
	s.Flags["visited"] = true
	s.Flags["sister"] = 2
	s.Flags["ratio"] = 0.5
	s.Flags["mood"] = "curious"
	state.SetPath(s.Flags, "navi.status", "broken")
	state.SetPath(s.Flags, "navi.repairs", 3)
	s.UnlockedCommands = []string{"help", "ls"}
	s.Inventory["chip"] = 2
	s.CreditLevel = 4
	s.Network = types.NetworkStatus{Protocols: map[string]bool{"tcp": true, "udp": false}, Scope: "wired"}
	s.Drivers = map[string]bool{"psyche": true}
	s.Cwd = "/home/lain"
	s.Clock = 1500
	s.MailCache = []string{"001_chisa.eml,U"}

	// Save.
	data, err := Save(s, defs)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load.
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Apply to fresh state.
	s2 := state.NewState(defs)
	ApplySave(s2, sd)

	want := state.Clone(s)
	if !reflect.DeepEqual(s2, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", s2, want)
	}
	if s2.MailCache != nil {
		t.Errorf("MailCache should not persist, got %v", s2.MailCache)
	}
	if sd.Game != "Test Game" || sd.Version != "1.0" {
		t.Errorf("header = %q %q", sd.Game, sd.Version)
	}
}

func TestSaveFieldNames(t *testing.T) {
	s := state.NewState(testDefs())
	s.Cwd = "/tmp"
	s.MailCache = []string{"x"}

	data, err := Save(s, testDefs())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out := string(data)
	for _, key := range []string{`"pseudo_terminal_cwd"`, `"unlocked_commands"`, `"credit_level"`, `"current_script"`} {
		if !strings.Contains(out, key) {
			t.Errorf("save missing key %s", key)
		}
	}
	if strings.Contains(out, "mail") {
		t.Error("mail cache leaked into save")
	}
}

func TestLoadMinimalJSON(t *testing.T) {
	// Minimal save with no maps.
	data := []byte(`{"version":"1.0","game":"Test","player":{"location":"lain_room"}}`)

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p := sd.Player
	if p.Flags == nil || p.Inventory == nil || p.Drivers == nil || p.Network.Protocols == nil {
		t.Error("maps should be initialized")
	}
	if p.UnlockedCommands == nil {
		t.Error("UnlockedCommands should be initialized")
	}
	if p.Cwd != "/" {
		t.Errorf("Cwd = %q, want /", p.Cwd)
	}
}

func TestLoadNumbers(t *testing.T) {
	data := []byte(`{"player":{"flags":{"count":2,"ratio":1.5,"nested":{"n":7},"list":[1,2.5]}}}`)

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	f := sd.Player.Flags
	if f["count"] != 2 {
		t.Errorf("count = %#v, want int 2", f["count"])
	}
	if f["ratio"] != 1.5 {
		t.Errorf("ratio = %#v", f["ratio"])
	}
	if v, _ := state.GetPath(f, "nested.n"); v != 7 {
		t.Errorf("nested.n = %#v", v)
	}
	if list, ok := f["list"].([]any); !ok || list[0] != 1 || list[1] != 2.5 {
		t.Errorf("list = %#v", f["list"])
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load([]byte(`{invalid`))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected wrapped *json.SyntaxError, got %v", err)
	}
}
