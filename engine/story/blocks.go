package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

const defaultBranch = "default"

// blockKind selects the combinatorial block format.
type blockKind int

const (
	blockSimple blockKind = iota
	blockRich
)

// block is a decoded combinatorial block. Exactly one of rich or simple
// is set, matching kind.
type block struct {
	kind   blockKind
	rich   *richBlock
	simple *simpleBlock
}

// richBlock branches on one dotted flag path and may add choices.
type richBlock struct {
	path     string
	branches map[string]branch
}

type branch struct {
	text    string
	choices []types.Choice
}

// simpleBlock maps each state variable, in declared order, to
// value-keyed text fragments.
type simpleBlock struct {
	vars []simpleVar
}

type simpleVar struct {
	name    string
	options map[string]any
}

// decodeBlock parses raw block text. It reports false while the text is
// not yet a complete JSON value. Once complete, fields of the wrong type
// are ignored rather than failing the block.
func decodeBlock(raw string) (block, bool) {
	data := []byte(raw)
	if !json.Valid(data) {
		return block{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return block{kind: blockSimple, simple: &simpleBlock{}}, true
	}

	if _, ok := fields["branches"]; ok {
		return block{kind: blockRich, rich: decodeRich(fields)}, true
	}

	sb, err := decodeSimple(data)
	if err != nil {
		sb = &simpleBlock{}
	}
	return block{kind: blockSimple, simple: sb}, true
}

// decodeRich reads the rich format field by field. Branches that are not
// objects and choices without an action are skipped.
func decodeRich(fields map[string]json.RawMessage) *richBlock {
	rb := &richBlock{path: stringField(fields["flagToCheck"])}
	if rb.path == "" {
		rb.path = stringField(fields["flag_to_check"])
	}

	var branches map[string]json.RawMessage
	if err := json.Unmarshal(fields["branches"], &branches); err != nil {
		return rb
	}
	rb.branches = make(map[string]branch, len(branches))
	for key, raw := range branches {
		var bf map[string]json.RawMessage
		if err := json.Unmarshal(raw, &bf); err != nil {
			continue
		}
		br := branch{text: scalarText(bf["text"])}

		var choices []json.RawMessage
		_ = json.Unmarshal(bf["choices"], &choices)
		for _, rc := range choices {
			var c map[string]json.RawMessage
			if err := json.Unmarshal(rc, &c); err != nil {
				continue
			}
			action := stringField(c["action"])
			if action == "" {
				continue
			}
			br.choices = append(br.choices, types.Choice{Text: scalarText(c["text"]), Action: action})
		}
		rb.branches[key] = br
	}
	return rb
}

// stringField returns raw as a string, or "" when it is anything else.
func stringField(raw json.RawMessage) string {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// scalarText renders a JSON string, number or boolean as text. Missing
// values, null, arrays and objects give "".
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch v.(type) {
	case string, json.Number, bool:
		return fragmentText(v)
	}
	return ""
}

// decodeSimple walks the object tokens so variable order is preserved.
func decodeSimple(data []byte) (*simpleBlock, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("block starts with %v, not an object", tok)
	}

	sb := &simpleBlock{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		options, ok := value.(map[string]any)
		if !ok {
			continue
		}
		sb.vars = append(sb.vars, simpleVar{name: name, options: options})
	}
	return sb, nil
}

// resolve selects text and choices for the current state.
func (b block) resolve(s *types.PlayerState) (string, []types.Choice) {
	switch b.kind {
	case blockRich:
		return b.rich.resolve(s)
	default:
		return b.simple.resolve(s), nil
	}
}

func (rb *richBlock) resolve(s *types.PlayerState) (string, []types.Choice) {
	path := rb.path
	if path == "" {
		return "", nil
	}

	var value string
	if s != nil {
		if v, ok := state.Lookup(s, path); ok {
			value = state.Stringify(v)
		}
	}

	br, ok := rb.branches[value]
	if !ok {
		br, ok = rb.branches[defaultBranch]
	}
	if !ok {
		return "", nil
	}
	return br.text, br.choices
}

func (sb *simpleBlock) resolve(s *types.PlayerState) string {
	var fragments []string
	for _, v := range sb.vars {
		value := "0"
		if s != nil {
			if cur, ok := state.Lookup(s, v.name); ok {
				value = state.Stringify(cur)
			}
		}

		opt, ok := v.options[value]
		if !ok {
			opt, ok = v.options[defaultBranch]
		}
		if !ok {
			continue
		}
		if text := fragmentText(opt); text != "" {
			fragments = append(fragments, text)
		}
	}
	return strings.Join(fragments, " ")
}

func fragmentText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return state.Stringify(val)
	}
}
