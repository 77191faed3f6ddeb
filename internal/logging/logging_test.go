package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestSetup_JSONToWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	logger, cleanup := Setup(Options{Level: "info", Format: "json", Out: &buf})
	defer cleanup()

	logger.Debug().Msg("hidden")
	logger.Info().Str("event", "sum_computed").Int64("sum", 3).Msg("")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "calcapi", line["app"])
	assert.Equal(t, "sum_computed", line["event"])
	assert.EqualValues(t, 3, line["sum"])
}

func TestSetup_AlsoWritesRotatingFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)
	path := filepath.Join(t.TempDir(), "calcapi.log")
	var buf bytes.Buffer
	logger, cleanup := Setup(Options{Level: "info", File: path, Out: &buf})
	logger.Info().Msg("hello")
	require.NoError(t, cleanup())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
