// Package session persists player state between runs. A session is a
// named save slot; the file and Redis stores share the save package's
// JSON format.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// ErrNotFound is returned by Load when no session with the name exists.
var ErrNotFound = errors.New("session not found")

// Store loads and saves named sessions.
type Store interface {
	Load(ctx context.Context, name string) (*types.PlayerState, error)
	Save(ctx context.Context, name string, s *types.PlayerState) error
	List(ctx context.Context) ([]string, error)
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CheckName reports whether name is usable as a session name.
func CheckName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid session name %q: use letters, digits, '-' or '_'", name)
	}
	return nil
}

// Bootstrap returns the stored state for name, or a fresh state built
// from the game defaults when none exists. An empty name gets a new
// generated one. The returned bool is true for a fresh state.
func Bootstrap(ctx context.Context, store Store, name string, defs *state.Defs, log *slog.Logger) (*types.PlayerState, string, bool, error) {
	if log == nil {
		log = slog.Default()
	}
	if name == "" {
		name = uuid.NewString()
	}
	if err := CheckName(name); err != nil {
		return nil, "", false, err
	}

	s, err := store.Load(ctx, name)
	switch {
	case err == nil:
		log.Info("session resumed", "session", name, "script", s.CurrentScript)
		return s, name, false, nil
	case errors.Is(err, ErrNotFound):
		s = state.NewState(defs)
		log.Info("session created", "session", name)
		return s, name, true, nil
	default:
		return nil, "", false, fmt.Errorf("loading session %s: %w", name, err)
	}
}
