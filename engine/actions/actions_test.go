package actions

import (
	"testing"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Actions: map[string]types.Action{
			"go_street":  {Kind: types.KindStoryChange, Script: "street.md"},
			"unlock_ls":  {Kind: types.KindUnlockCommand, Command: "ls", Script: "terminal.md"},
			"to_server":  {Kind: types.KindLocationChange, NewLocation: "server_room", Script: "server.md"},
			"buy_chip":   {Kind: types.KindAcquireItem, ItemID: "chip", Script: "shop.md"},
			"toggle_tcp": {Kind: types.KindToggleProtocol, Protocol: "tcp"},
			"route_by_mood": {
				Kind:          types.KindConditionalActionByFlag,
				FlagName:      "mood",
				Cases:         map[string]string{"curious": "go_street"},
				DefaultAction: "to_server",
			},
			"loop": {
				Kind:          types.KindConditionalActionByFlag,
				FlagName:      "mood",
				DefaultAction: "loop",
			},
		},
		Items: map[string]types.Item{
			"chip":   {ID: "chip", Name: "Psyche chip", RequiredCredit: 2},
			"manual": {ID: "manual", Name: "Manual"},
		},
	}
}

func testSetup() (*types.PlayerState, Env, *notify.Recorder) {
	defs := testDefs()
	s := state.NewState(defs)
	s.CurrentScript = "room.md"
	rec := &notify.Recorder{}
	return s, Env{Defs: defs, Out: rec}, rec
}

func TestStoryChange(t *testing.T) {
	s, env, rec := testSetup()
	out := Dispatch("go_street", s, env)

	if out.Next != "street.md" || !out.Redraw {
		t.Errorf("outcome = %+v, want street.md with redraw", out)
	}
	if len(rec.Messages) != 0 {
		t.Errorf("unexpected messages: %v", rec.Texts())
	}
}

func TestDispatch_UndefinedAction(t *testing.T) {
	s, env, rec := testSetup()
	before := state.Clone(s)

	out := Dispatch("nope", s, env)
	if out.Next != "" || out.Redraw {
		t.Errorf("outcome = %+v, want zero", out)
	}
	if len(rec.Messages) != 1 || rec.Messages[0].Kind != types.MsgError {
		t.Fatalf("messages = %v, want one error", rec.Messages)
	}
	if s.Location != before.Location || len(s.UnlockedCommands) != len(before.UnlockedCommands) {
		t.Error("state changed on undefined action")
	}
}

func TestUnknownKind(t *testing.T) {
	s, env, rec := testSetup()
	out := Execute(types.Action{ID: "weird", Kind: "teleport", Script: "x.md"}, s, env)

	if out.Redraw {
		t.Error("unknown kind should not request a redraw")
	}
	if out.Next != "" {
		t.Errorf("Next = %q, want empty", out.Next)
	}
	if len(rec.Messages) != 1 {
		t.Errorf("want one warning, got %v", rec.Texts())
	}
}

func TestEnterAndExitStory(t *testing.T) {
	s, env, _ := testSetup()

	out := Execute(types.Action{Kind: types.KindEnterStory, Script: "memory.md"}, s, env)
	if out.Next != "memory.md" {
		t.Fatalf("enter Next = %q", out.Next)
	}
	if s.ReturnScript != "room.md" {
		t.Fatalf("ReturnScript = %q, want room.md", s.ReturnScript)
	}

	s.CurrentScript = "memory.md"
	out = Execute(types.Action{Kind: types.KindExitStory}, s, env)
	if out.Next != "room.md" {
		t.Errorf("exit Next = %q, want room.md", out.Next)
	}
	if s.ReturnScript != "" {
		t.Errorf("ReturnScript not cleared: %q", s.ReturnScript)
	}
}

func TestExitStory_NothingToReturnTo(t *testing.T) {
	s, env, rec := testSetup()
	out := Execute(types.Action{Kind: types.KindExitStory}, s, env)

	if out.Next != "room.md" {
		t.Errorf("Next = %q, want current script", out.Next)
	}
	if len(rec.Messages) != 1 || rec.Messages[0].Kind != types.MsgError {
		t.Errorf("messages = %v", rec.Texts())
	}
}

func TestConditionalStoryChange(t *testing.T) {
	a := types.Action{
		Kind:          types.KindConditionalStoryChange,
		FlagName:      "navi.fixed",
		ScriptIfTrue:  "online.md",
		ScriptIfFalse: "offline.md",
	}

	tests := []struct {
		name  string
		flags map[string]any
		want  string
	}{
		{"missing", map[string]any{}, "offline.md"},
		{"true", map[string]any{"navi": map[string]any{"fixed": true}}, "online.md"},
		{"false", map[string]any{"navi": map[string]any{"fixed": false}}, "offline.md"},
		{"zero string", map[string]any{"navi": map[string]any{"fixed": "0"}}, "offline.md"},
		{"nonempty string", map[string]any{"navi": map[string]any{"fixed": "yes"}}, "online.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, env, _ := testSetup()
			s.Flags = tt.flags
			if got := Execute(a, s, env).Next; got != tt.want {
				t.Errorf("Next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocationChange(t *testing.T) {
	s, env, _ := testSetup()
	out := Dispatch("to_server", s, env)

	if s.Location != "server_room" {
		t.Errorf("Location = %q", s.Location)
	}
	if out.Next != "server.md" {
		t.Errorf("Next = %q", out.Next)
	}
}

func TestLocationChangeAndSetFlags(t *testing.T) {
	s, env, _ := testSetup()
	a := types.Action{
		Kind:        types.KindLocationChangeAndSetFlags,
		NewLocation: "cyberia",
		Script:      "club.md",
		Flags: []types.FlagAssignment{
			{Name: "visited.cyberia", Value: true},
			{Name: "mood", Value: "uneasy"},
		},
	}
	Execute(a, s, env)

	if s.Location != "cyberia" {
		t.Errorf("Location = %q", s.Location)
	}
	if v, _ := state.GetPath(s.Flags, "visited.cyberia"); v != true {
		t.Errorf("visited.cyberia = %v", v)
	}
	if s.Flags["mood"] != "uneasy" {
		t.Errorf("mood = %v", s.Flags["mood"])
	}
}

func TestStoryChangeAndSetFlags_Overwrites(t *testing.T) {
	s, env, _ := testSetup()
	s.Flags["navi"] = "scrap"
	a := types.Action{
		Kind:   types.KindStoryChangeAndSetFlags,
		Script: "next.md",
		Flags:  []types.FlagAssignment{{Name: "navi.status", Value: "repaired"}},
	}
	out := Execute(a, s, env)

	if out.Next != "next.md" {
		t.Errorf("Next = %q", out.Next)
	}
	if v, ok := state.GetPath(s.Flags, "navi.status"); !ok || v != "repaired" {
		t.Errorf("navi.status = %v, %v", v, ok)
	}
}

func TestUnlockCommand_Idempotent(t *testing.T) {
	s, env, rec := testSetup()

	Dispatch("unlock_ls", s, env)
	Dispatch("unlock_ls", s, env)

	count := 0
	for _, c := range s.UnlockedCommands {
		if c == "ls" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("ls unlocked %d times, want 1", count)
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("want one notice, got %v", rec.Texts())
	}
	if rec.Messages[0].Delay != UnlockNoticeDelay {
		t.Errorf("Delay = %v", rec.Messages[0].Delay)
	}
}

func TestStoryChangeAndUnlockSet(t *testing.T) {
	s, env, rec := testSetup()
	s.UnlockedCommands = []string{"help"}
	a := types.Action{
		Kind:     types.KindStoryChangeAndUnlockSet,
		Script:   "shell.md",
		Commands: []string{"help", "cd", "cat"},
	}
	Execute(a, s, env)

	if len(s.UnlockedCommands) != 3 {
		t.Errorf("UnlockedCommands = %v", s.UnlockedCommands)
	}
	want := "[New commands unlocked: cd, cat]"
	if len(rec.Messages) != 1 || rec.Messages[0].Text != want {
		t.Errorf("messages = %v, want %q", rec.Texts(), want)
	}

	rec.Reset()
	Execute(a, s, env)
	if len(rec.Messages) != 0 {
		t.Errorf("second unlock emitted %v", rec.Texts())
	}
}

func TestAcquireItem_CreditGate(t *testing.T) {
	tests := []struct {
		name   string
		credit int
		want   int
	}{
		{"below", 1, 0},
		{"equal", 2, 1},
		{"above", 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, env, rec := testSetup()
			s.CreditLevel = tt.credit

			out := Dispatch("buy_chip", s, env)
			if got := s.Inventory["chip"]; got != tt.want {
				t.Errorf("chip quantity = %d, want %d", got, tt.want)
			}
			if out.Next != "shop.md" {
				t.Errorf("Next = %q", out.Next)
			}
			if len(rec.Messages) != 1 {
				t.Errorf("messages = %v", rec.Texts())
			}
		})
	}
}

func TestAcquireItem_IncrementsByOne(t *testing.T) {
	s, env, rec := testSetup()
	s.CreditLevel = 3
	s.Inventory["chip"] = 2

	Dispatch("buy_chip", s, env)
	if s.Inventory["chip"] != 3 {
		t.Errorf("chip = %d, want 3", s.Inventory["chip"])
	}
	if rec.Messages[0].Text != "[Acquired: Psyche chip (x3)]" {
		t.Errorf("notice = %q", rec.Messages[0].Text)
	}
}

func TestAcquireItem_MissingCreditDefaultsToZero(t *testing.T) {
	s, env, _ := testSetup()
	Execute(types.Action{Kind: types.KindAcquireItem, ItemID: "manual"}, s, env)

	if s.Inventory["manual"] != 1 {
		t.Errorf("manual = %d, want 1", s.Inventory["manual"])
	}
}

func TestAcquireItem_UnknownItem(t *testing.T) {
	s, env, rec := testSetup()
	out := Execute(types.Action{Kind: types.KindAcquireItem, ItemID: "ghost", Script: "shop.md"}, s, env)

	if out.Next != "" {
		t.Errorf("Next = %q, want empty", out.Next)
	}
	if len(s.Inventory) != 0 {
		t.Errorf("Inventory = %v", s.Inventory)
	}
	if len(rec.Messages) != 1 || rec.Messages[0].Kind != types.MsgError {
		t.Errorf("messages = %v", rec.Messages)
	}
}

func TestAcquireItemAndSetFlag(t *testing.T) {
	a := types.Action{
		Kind:   types.KindAcquireItemAndSetFlag,
		ItemID: "chip",
		Flag:   &types.FlagAssignment{Name: "shop.bought_chip", Value: true},
	}

	s, env, _ := testSetup()
	Execute(a, s, env)
	if _, ok := state.GetPath(s.Flags, "shop.bought_chip"); ok {
		t.Error("flag set although purchase was denied")
	}

	s.CreditLevel = 2
	Execute(a, s, env)
	if v, _ := state.GetPath(s.Flags, "shop.bought_chip"); v != true {
		t.Errorf("shop.bought_chip = %v, want true", v)
	}
}

func TestAcquireItemAndSetFlag_ZeroValueState(t *testing.T) {
	a := types.Action{
		Kind:   types.KindAcquireItemAndSetFlag,
		ItemID: "manual",
		Flag:   &types.FlagAssignment{Name: "got.manual", Value: true},
	}
	_, env, _ := testSetup()
	s := &types.PlayerState{CreditLevel: 5}

	Execute(a, s, env)

	if v, _ := state.GetPath(s.Flags, "got.manual"); v != true {
		t.Errorf("got.manual = %v, want true", v)
	}
	if s.Inventory["manual"] != 1 {
		t.Errorf("manual quantity = %d, want 1", s.Inventory["manual"])
	}
}

func TestEveryKind_ZeroValueState(t *testing.T) {
	flag := &types.FlagAssignment{Name: "a.b", Value: 1}
	actions := []types.Action{
		{Kind: types.KindStoryChange, Script: "x.md"},
		{Kind: types.KindEnterStory, Script: "x.md"},
		{Kind: types.KindExitStory},
		{Kind: types.KindConditionalStoryChange, FlagName: "f", ScriptIfTrue: "t.md", ScriptIfFalse: "f.md"},
		{Kind: types.KindLocationChange, NewLocation: "roof", Script: "x.md"},
		{Kind: types.KindLocationChangeAndSetFlags, NewLocation: "roof", Script: "x.md", Flags: []types.FlagAssignment{*flag}},
		{Kind: types.KindStoryChangeAndSetFlags, Script: "x.md", Flags: []types.FlagAssignment{*flag}},
		{Kind: types.KindUnlockCommand, Command: "ls"},
		{Kind: types.KindStoryChangeAndUnlockSet, Script: "x.md", Commands: []string{"cd", "cat"}},
		{Kind: types.KindAcquireItem, ItemID: "manual"},
		{Kind: types.KindAcquireItemAndSetFlag, ItemID: "manual", Flag: flag},
		{Kind: types.KindToggleProtocol, Protocol: "tcp"},
		{Kind: types.KindConditionalActionByFlag, FlagName: "mood", DefaultAction: "go_street"},
	}
	_, env, _ := testSetup()
	for _, a := range actions {
		t.Run(string(a.Kind), func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panic on zero-value state: %v", r)
				}
			}()
			Execute(a, &types.PlayerState{}, env)
		})
	}
}

func TestToggleProtocol_KeepsOneActive(t *testing.T) {
	s, env, rec := testSetup()
	s.Network.Protocols = map[string]bool{"tcp": true, "udp": false}

	out := Dispatch("toggle_tcp", s, env)
	if !s.Network.Protocols["tcp"] {
		t.Error("last active protocol was disabled")
	}
	if out.Next != "room.md" {
		t.Errorf("Next = %q, want current script", out.Next)
	}
	if len(rec.Messages) != 1 {
		t.Errorf("messages = %v", rec.Texts())
	}

	s.Network.Protocols["udp"] = true
	Dispatch("toggle_tcp", s, env)
	if s.Network.Protocols["tcp"] {
		t.Error("tcp should be disabled when udp is active")
	}
	if len(state.ActiveProtocols(s)) == 0 {
		t.Error("no active protocols")
	}

	Dispatch("toggle_tcp", s, env)
	if !s.Network.Protocols["tcp"] {
		t.Error("tcp should be re-enabled")
	}
}

func TestConditionalActionByFlag(t *testing.T) {
	s, env, _ := testSetup()
	s.Flags["mood"] = "curious"
	if out := Dispatch("route_by_mood", s, env); out.Next != "street.md" {
		t.Errorf("curious Next = %q", out.Next)
	}

	s.Flags["mood"] = "tired"
	if out := Dispatch("route_by_mood", s, env); out.Next != "server.md" {
		t.Errorf("default Next = %q", out.Next)
	}
	if s.Location != "server_room" {
		t.Errorf("Location = %q", s.Location)
	}
}

func TestConditionalActionByFlag_DepthLimit(t *testing.T) {
	s, env, rec := testSetup()
	out := Dispatch("loop", s, env)

	if out.Redraw || out.Next != "" {
		t.Errorf("outcome = %+v, want zero", out)
	}
	if len(rec.Messages) != 1 {
		t.Errorf("messages = %v", rec.Texts())
	}
}

func TestTimeCost(t *testing.T) {
	s, env, _ := testSetup()
	s.Clock = 100

	Execute(types.Action{Kind: types.KindStoryChange, Script: "a.md", TimeCost: 30}, s, env)
	if s.Clock != 130 {
		t.Errorf("Clock = %d, want 130", s.Clock)
	}

	Execute(types.Action{Kind: "bogus", TimeCost: 30}, s, env)
	if s.Clock != 130 {
		t.Errorf("unknown kind advanced clock to %d", s.Clock)
	}
}

func TestKindsSorted(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 13 {
		t.Fatalf("len = %d, want 13", len(kinds))
	}
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] > kinds[i] {
			t.Fatalf("not sorted at %d: %v", i, kinds)
		}
	}
}
