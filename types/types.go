// Package types defines the shared data structures for the navishell engine.
// This package contains only type definitions: no logic, no methods.
package types

import "time"

// NetworkStatus holds the simulated network stack state.
type NetworkStatus struct {
	Protocols map[string]bool `json:"protocols"` // protocol → on/off
	Scope     string          `json:"scope"`
}

// PlayerState is the complete mutable player state. It is owned by the
// caller and mutated in place by the executor and the shell.
type PlayerState struct {
	Name             string          `json:"name"`
	Location         string          `json:"location"`
	CurrentScript    string          `json:"current_script"`
	ReturnScript     string          `json:"return_script,omitempty"` // one level only
	Flags            map[string]any  `json:"flags"`
	UnlockedCommands []string        `json:"unlocked_commands"` // ordered set, only grows
	Inventory        map[string]int  `json:"inventory"`
	CreditLevel      int             `json:"credit_level"`
	Network          NetworkStatus   `json:"network_status"`
	Drivers          map[string]bool `json:"drivers"` // driver → loaded
	Cwd              string          `json:"pseudo_terminal_cwd"`
	Clock            int             `json:"clock"` // elapsed game minutes

	// MailCache holds the message filenames from the last "mail list".
	// Never persisted.
	MailCache []string `json:"-"`
}

// ContentKind tags a ContentItem.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentPause
)

// ContentItem is one renderable piece of a story document.
type ContentItem struct {
	Kind    ContentKind
	Text    string  // ContentText
	Seconds float64 // ContentPause
}

// Choice is one selectable option at the end of a story document.
type Choice struct {
	Text     string `json:"text"`
	Action   string `json:"action"`
	Disabled bool   `json:"-"` // rendered but not selectable
}

// Document is the parsed form of one story script.
type Document struct {
	Content  []ContentItem
	Choices  []Choice
	Metadata map[string]string
}

// ActionKind is the closed vocabulary of action types.
type ActionKind string

const (
	KindStoryChange               ActionKind = "story_change"
	KindEnterStory                ActionKind = "enter_story"
	KindExitStory                 ActionKind = "exit_story"
	KindConditionalStoryChange    ActionKind = "conditional_story_change"
	KindConditionalActionByFlag   ActionKind = "conditional_action_by_flag"
	KindLocationChange            ActionKind = "location_change"
	KindLocationChangeAndSetFlags ActionKind = "location_change_and_set_flags"
	KindStoryChangeAndSetFlags    ActionKind = "story_change_and_set_flags"
	KindUnlockCommand             ActionKind = "unlock_command"
	KindStoryChangeAndUnlockSet   ActionKind = "story_change_and_unlock_set"
	KindAcquireItem               ActionKind = "acquire_item"
	KindAcquireItemAndSetFlag     ActionKind = "acquire_item_and_set_flag"
	KindToggleProtocol            ActionKind = "toggle_protocol"
)

// FlagAssignment sets one dotted-path flag to a value.
type FlagAssignment struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Action is a named, statically defined operation. Which payload fields
// are meaningful depends on Kind.
type Action struct {
	ID   string
	Kind ActionKind

	Script        string
	NewLocation   string
	FlagName      string
	ScriptIfTrue  string
	ScriptIfFalse string
	Flags         []FlagAssignment
	Flag          *FlagAssignment
	Command       string
	Commands      []string
	ItemID        string
	Protocol      string

	Cases         map[string]string // conditional_action_by_flag: value → action ID
	DefaultAction string

	TimeCost int // minutes added to the clock after dispatch
}

// Item is a catalog entry.
type Item struct {
	ID             string
	Name           string
	Description    string
	RequiredCredit int
}

// Condition gates visibility. The zero value is always true.
type Condition struct {
	Flag      string
	Value     any // nil: flag must be truthy
	MinDay    *int
	MaxDay    *int
	ExactDay  *int
	HourStart *int
	HourEnd   *int
}

// POI is a point of interest at a location. SubItems are one level deep.
type POI struct {
	ID          string
	Name        string
	Description string
	Condition   Condition
	Action      string // when set, examining dispatches this action
	SubItems    []POI
}

// Location is a world-map entry.
type Location struct {
	ID          string
	Name        string
	Description string
	POIs        []POI
}

// Permission gates a sandbox path prefix.
type Permission struct {
	Prefix    string
	ListLevel int
	ReadLevel int
}

// GameDef holds game metadata.
type GameDef struct {
	Title       string
	Author      string
	Version     string
	StartScript string
	MailDir     string // sandbox path of the mail directory
	Intro       string
}

// MessageKind classifies emitted messages.
type MessageKind string

const (
	MsgText   MessageKind = "text"
	MsgNotice MessageKind = "notice"
	MsgError  MessageKind = "error"
)

// Message is one line of output emitted by the executor or the shell.
type Message struct {
	Kind  MessageKind
	Text  string
	Delay time.Duration // presentation hint; zero means none
}

// Result is the output of a single turn.
type Result struct {
	Output []Message
	Next   string // script loaded this turn, if any
	Redraw bool
	Ended  bool // current document has no choices
}
