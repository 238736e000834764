package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timada-org/todos/internal/logging"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.NewWithWriter(&buf, logging.Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	logger.Debug("request", "status", 200)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	assert.Equal(t, "request", out["msg"])
	assert.EqualValues(t, 200, out["status"])
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.NewWithWriter(&buf, logging.Options{Level: "warn", Format: "logfmt"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := logging.NewWithWriter(&bytes.Buffer{}, logging.Options{Level: "loud"})
	require.Error(t, err)

	_, err = logging.NewWithWriter(&bytes.Buffer{}, logging.Options{Format: "xml"})
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.log")

	logger, closer, err := logging.New(logging.Options{File: path, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)

	logger.Info("started", "addr", ":8000")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}
