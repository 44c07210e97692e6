package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/nathoo/navishell/engine/save"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

// characterFile is the state file inside each session directory.
const characterFile = "character.json"

// FileStore keeps each session in <Dir>/<name>/character.json.
type FileStore struct {
	Dir  string
	Defs *state.Defs
	Log  *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, defs *state.Defs, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{Dir: dir, Defs: defs, Log: log}
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.Dir, name, characterFile)
}

func (f *FileStore) Load(_ context.Context, name string) (*types.PlayerState, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading session %s: %w", name, err)
	}

	sd, err := save.Load(data)
	if err != nil {
		f.Log.Error("corrupt session file", "session", name, "error", err)
		return nil, err
	}
	s := &types.PlayerState{}
	save.ApplySave(s, sd)
	return s, nil
}

// Save writes the state through a temporary file so an interrupted write
// never leaves a truncated session behind.
func (f *FileStore) Save(_ context.Context, name string, s *types.PlayerState) error {
	if err := CheckName(name); err != nil {
		return err
	}
	data, err := save.Save(s, f.Defs)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", name, err)
	}

	dir := filepath.Join(f.Dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, characterFile+".*")
	if err != nil {
		return fmt.Errorf("writing session %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing session %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing session %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name)); err != nil {
		f.Log.Error("failed to save session", "session", name, "error", err)
		return fmt.Errorf("writing session %s: %w", name, err)
	}
	return nil
}

// List returns the names of all saved sessions, sorted.
func (f *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() || CheckName(e.Name()) != nil {
			continue
		}
		if _, err := os.Stat(f.path(e.Name())); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
