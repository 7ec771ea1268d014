package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestInitJSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Init(Config{Level: "info", Format: "json", Out: &buf}))

	log.Debug().Msg("hidden")
	log.Info().Str("backend", "local").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "local", entry["backend"])
	assert.Equal(t, "info", entry["level"])
}

func TestInitText(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Init(Config{Level: "debug", Out: &buf}))
	log.Debug().Msg("stream complete")

	assert.Contains(t, buf.String(), "stream complete")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitLogFile(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "lexbud.log")

	require.NoError(t, Init(Config{Level: "warn", Format: "json", File: path, Out: &bytes.Buffer{}}))
	log.Warn().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestInitRejectsBadInput(t *testing.T) {
	restoreGlobals(t)

	assert.Error(t, Init(Config{Level: "loud"}))
	assert.Error(t, Init(Config{Level: "info", Format: "xml"}))
}
