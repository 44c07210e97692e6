package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nathoo/navishell/types"
)

// legacyAction is one entry of the JSON action table:
// {"name": {"type": "...", "payload": {...}}}.
type legacyAction struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// DecodeActionsJSON decodes a legacy action table.
func DecodeActionsJSON(data []byte) (map[string]types.Action, error) {
	var raw map[string]legacyAction
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding actions: %w", err)
	}

	out := make(map[string]types.Action, len(raw))
	for id, la := range raw {
		out[id] = legacyToAction(id, la)
	}
	return out, nil
}

func legacyToAction(id string, la legacyAction) types.Action {
	p := la.Payload
	a := types.Action{
		ID:            id,
		Kind:          types.ActionKind(la.Type),
		Script:        str(p, "story_file"),
		NewLocation:   str(p, "new_location"),
		FlagName:      str(p, "flag_name"),
		ScriptIfTrue:  str(p, "story_if_true"),
		ScriptIfFalse: str(p, "story_if_false"),
		Command:       str(p, "command"),
		ItemID:        str(p, "item_id"),
		Protocol:      str(p, "protocol"),
		DefaultAction: str(p, "default_action"),
		TimeCost:      integer(p, "time_cost"),
	}

	if cmds, ok := p["commands"].([]any); ok {
		for _, c := range cmds {
			if s, ok := c.(string); ok {
				a.Commands = append(a.Commands, s)
			}
		}
	}
	if flags, ok := p["flags"].([]any); ok {
		for _, f := range flags {
			if m, ok := f.(map[string]any); ok {
				a.Flags = append(a.Flags, legacyFlag(m))
			}
		}
	}
	if m, ok := p["flag"].(map[string]any); ok {
		fa := legacyFlag(m)
		a.Flag = &fa
	}

	// Cases come either as a "cases" object or as value_<v>_action keys.
	if cases, ok := p["cases"].(map[string]any); ok {
		a.Cases = map[string]string{}
		for k, v := range cases {
			if s, ok := v.(string); ok {
				a.Cases[k] = s
			}
		}
	}
	for k, v := range p {
		value, ok := strings.CutPrefix(k, "value_")
		if !ok {
			continue
		}
		value, ok = strings.CutSuffix(value, "_action")
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if a.Cases == nil {
				a.Cases = map[string]string{}
			}
			a.Cases[value] = s
		}
	}
	return a
}

func legacyFlag(m map[string]any) types.FlagAssignment {
	name, _ := m["name"].(string)
	return types.FlagAssignment{Name: name, Value: jsonValue(m["value"])}
}

// legacyItem is one entry of the JSON item catalog.
type legacyItem struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	RequiredCredit *int   `json:"required_credit"`
}

// DecodeItemsJSON decodes a legacy item catalog. A missing
// required_credit means 0.
func DecodeItemsJSON(data []byte) (map[string]types.Item, error) {
	var raw map[string]legacyItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	out := make(map[string]types.Item, len(raw))
	for id, li := range raw {
		it := types.Item{ID: id, Name: li.Name, Description: li.Description}
		if li.RequiredCredit != nil {
			it.RequiredCredit = *li.RequiredCredit
		}
		out[id] = it
	}
	return out, nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func integer(m map[string]any, key string) int {
	if n, ok := m[key].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

// jsonValue turns decoded numbers into int or float64 and recurses into
// objects, so flag values stringify like Lua-defined ones.
func jsonValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = jsonValue(sub)
		}
		return out
	default:
		return v
	}
}
