package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/navishell/config"
)

func TestSetup_ProductionWritesJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Environment = "production"

	log := WithSession(Setup(cfg, &buf), "lain")
	log.Info("turn", "input", "ls")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "turn", line["msg"])
	assert.Equal(t, "lain", line["session"])
	assert.Equal(t, "ls", line["input"])
}

func TestSetup_LevelFilters(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogLevel = slog.LevelWarn

	log := Setup(cfg, &buf)
	log.Info("hidden")
	WithError(log, errors.New("boom")).Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "error=boom")
}
