// Package save implements JSON serialization and deserialization of player state.
package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// SaveData is the JSON-serializable save format. Version and Game are
// informational; no migration is attempted.
type SaveData struct {
	Version string            `json:"version"`
	Game    string            `json:"game"`
	Player  types.PlayerState `json:"player"`
}

// Save serializes player state to JSON bytes.
func Save(s *types.PlayerState, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version: defs.Game.Version,
		Game:    defs.Game.Title,
		Player:  *s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData. Integral flag numbers come
// back as int so they stringify the same way they did before saving.
func Load(data []byte) (*SaveData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var sd SaveData
	if err := dec.Decode(&sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	sd.Player.Flags = normalizeFlags(sd.Player.Flags)
	// Ensure maps are never nil after load.
	state.Normalize(&sd.Player)
	sd.Player.MailCache = nil
	return &sd, nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.PlayerState, sd *SaveData) {
	*s = *state.Clone(&sd.Player)
}

func normalizeFlags(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		return normalizeFlags(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	default:
		return v
	}
}
