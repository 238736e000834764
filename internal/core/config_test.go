package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timada-org/todos/internal/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := core.NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sql_app.db", cfg.Database.DSN)
	assert.Equal(t, []string{"http://localhost", "http://localhost:3000"}, cfg.Cors.Origins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "todos", cfg.Broker.Topic)
	assert.Empty(t, cfg.Broker.URL)
}

func TestNewConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.yml")

	t.Setenv("TODOS_TEST_DSN", "postgres://todos@localhost:5432/todos?sslmode=disable")

	writeFile(t, path, `
addr: ":9000"
database:
  driver: postgres
  dsn: ${TODOS_TEST_DSN}
cors:
  origins:
    - https://todos.example.com
log:
  level: debug
  format: json
`)

	writeFile(t, filepath.Join(dir, "todos.local.yml"), `
addr: ":9001"
`)

	cfg, err := core.NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://todos@localhost:5432/todos?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, []string{"https://todos.example.com"}, cfg.Cors.Origins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)

	opts := cfg.LogOptions()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, 5, opts.MaxFiles)
}

func TestNewConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := core.NewConfig(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.yml")
		writeFile(t, path, "database:\n  driver: oracle\n  dsn: x\n")

		_, err := core.NewConfig(path)
		require.Error(t, err)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.yml")
		writeFile(t, path, "database:\n  driver: postgres\n")

		_, err := core.NewConfig(path)
		require.Error(t, err)
	})
}
