package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nathoo/navishell/engine/save"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/types"
)

const keyPrefix = "session:"

// RedisStore keeps each session as a JSON blob under session:<name>.
type RedisStore struct {
	client *redis.Client
	defs   *state.Defs
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr string, defs *state.Defs, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: rdb, defs: defs, log: log}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.log.Error("failed to close redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, name string) (*types.PlayerState, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, keyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to load session", "session", name, "error", err)
		return nil, fmt.Errorf("loading session %s: %w", name, err)
	}

	sd, err := save.Load(data)
	if err != nil {
		r.log.Error("corrupt session", "session", name, "error", err)
		return nil, err
	}
	s := &types.PlayerState{}
	save.ApplySave(s, sd)
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, name string, s *types.PlayerState) error {
	if err := CheckName(name); err != nil {
		return err
	}
	data, err := save.Save(s, r.defs)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", name, err)
	}
	if err := r.client.Set(ctx, keyPrefix+name, data, 0).Err(); err != nil {
		r.log.Error("failed to save session", "session", name, "error", err)
		return fmt.Errorf("saving session %s: %w", name, err)
	}
	return nil
}

// List scans for session keys and returns their names, sorted.
func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	names := []string{}
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
