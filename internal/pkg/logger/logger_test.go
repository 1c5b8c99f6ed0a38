package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Configure(Config{Level: WarnLevel, Output: &buf})
	Info().Msg("hidden")
	sweeperLog := Component("sweeper")
	sweeperLog.Warn().Str("sessionID", "s-1").Msg("visible")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "visible", line["message"])
	assert.Equal(t, "sweeper", line["component"])
	assert.Equal(t, "wizard-api", line["app"])
}

func TestConfigFromStrings(t *testing.T) {
	cfg := ConfigFromStrings(" DEBUG ", "text")
	assert.Equal(t, DebugLevel, cfg.Level)
	assert.True(t, cfg.Pretty)

	cfg = ConfigFromStrings("info", "json")
	assert.False(t, cfg.Pretty)
	assert.Equal(t, zerolog.InfoLevel, zerologLevel(LogLevel("verbose")))
}
