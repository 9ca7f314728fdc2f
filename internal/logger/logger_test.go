package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	Logger{Level: "debug", Format: "json"}.SetupWriter(&buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("map", "cambridge").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "cambridge", entry["map"])
	assert.Equal(t, "hello", entry["message"])
}

func TestSetupConsole(t *testing.T) {
	var buf bytes.Buffer
	Logger{Level: "info", Format: "console", NoColor: true}.SetupWriter(&buf)

	log.Info().Msg("ready")
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "ready")
}

func TestSetupAutoNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	Logger{Level: "bogus", Format: "auto"}.SetupWriter(&buf)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.True(t, json.Valid(bytes.TrimSpace(bytes.Split(buf.Bytes(), []byte("\n"))[0])))
}
