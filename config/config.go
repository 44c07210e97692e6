// Package config loads runtime settings from an optional YAML file and
// NAVISHELL_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

const envPrefix = "NAVISHELL_"

type Config struct {
	GameDir    string `yaml:"game_dir"`
	StoryDir   string `yaml:"story_dir"`
	SandboxDir string `yaml:"sandbox_dir"`
	SaveDir    string `yaml:"save_dir"`

	Session   string `yaml:"session"`
	Store     string `yaml:"store"`
	RedisAddr string `yaml:"redis_addr"`

	Environment string     `yaml:"environment"`
	LogLevel    slog.Level `yaml:"-"`
	LogLevelRaw string     `yaml:"log_level"`

	TypewriterDelay time.Duration `yaml:"typewriter_delay"`
	Plain           bool          `yaml:"plain"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		GameDir:         "game",
		StoryDir:        "story",
		SandboxDir:      "sandbox",
		SaveDir:         "saves",
		Store:           StoreFile,
		RedisAddr:       "localhost:6379",
		Environment:     "development",
		LogLevel:        slog.LevelInfo,
		LogLevelRaw:     "info",
		TypewriterDelay: 20 * time.Millisecond,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ContentDirs returns the story and sandbox directories. Relative paths
// are taken relative to the game directory.
func (c *Config) ContentDirs() (storyDir, sandboxDir string) {
	return c.underGame(c.StoryDir), c.underGame(c.SandboxDir)
}

func (c *Config) underGame(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.GameDir, dir)
}

func applyEnv(cfg *Config) {
	strs := map[string]*string{
		"GAME_DIR":    &cfg.GameDir,
		"STORY_DIR":   &cfg.StoryDir,
		"SANDBOX_DIR": &cfg.SandboxDir,
		"SAVE_DIR":    &cfg.SaveDir,
		"SESSION":     &cfg.Session,
		"STORE":       &cfg.Store,
		"REDIS_ADDR":  &cfg.RedisAddr,
		"ENVIRONMENT": &cfg.Environment,
		"LOG_LEVEL":   &cfg.LogLevelRaw,
	}
	for key, dst := range strs {
		*dst = getEnv(envPrefix+key, *dst)
	}

	if v := os.Getenv(envPrefix + "TYPEWRITER_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TypewriterDelay = d
		}
	}
	if v := os.Getenv(envPrefix + "PLAIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Plain = b
		}
	}
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", c.Store, StoreFile, StoreRedis)
	}
	if c.TypewriterDelay < 0 {
		return fmt.Errorf("typewriter_delay must not be negative")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
