package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "production", "info")
	logger.Debug("скрыто")
	logger.Info("Прогноз обновлен", "city", "Manila")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Прогноз обновлен", entry["msg"])
	assert.Equal(t, "Manila", entry["city"])
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "development", "debug")
	logger.Debug("Запрос прогноза", "city", "Tokyo")

	out := buf.String()
	assert.Contains(t, out, "Запрос прогноза")
	assert.Contains(t, out, "Tokyo")
	assert.False(t, json.Valid(buf.Bytes()))
}
