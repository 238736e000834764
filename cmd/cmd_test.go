package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		cfgFile = ""
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background())
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out, err := run(t, "config")
		require.NoError(t, err)

		var printed map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
		assert.Equal(t, ":8000", printed["addr"])
		assert.Contains(t, out, "driver: sqlite")
		assert.Contains(t, out, "http://localhost:3000")
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.yml")
		require.NoError(t, os.WriteFile(path, []byte("addr: \"127.0.0.1:9999\"\n"), 0o600))

		out, err := run(t, "config", "-c", path)
		require.NoError(t, err)
		assert.Contains(t, out, "127.0.0.1:9999")
	})
}

func TestWatchRequiresBroker(t *testing.T) {
	_, err := run(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker.url")
}
