package todo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedMemory(t *testing.T) {
	dsn, memory, err := sharedMemory("todos.db")
	require.NoError(t, err)
	assert.False(t, memory)
	assert.Equal(t, "todos.db", dsn)

	dsn, memory, err = sharedMemory(":memory:")
	require.NoError(t, err)
	assert.True(t, memory)
	assert.True(t, strings.HasPrefix(dsn, "file:todos-"), dsn)
	assert.True(t, strings.HasSuffix(dsn, "?mode=memory&cache=shared"), dsn)

	named, _, err := sharedMemory(":memory:")
	require.NoError(t, err)
	assert.NotEqual(t, dsn, named)

	dsn, memory, err = sharedMemory("file:app?mode=memory")
	require.NoError(t, err)
	assert.True(t, memory)
	assert.Equal(t, "file:app?mode=memory&cache=shared", dsn)

	dsn, _, err = sharedMemory("file:app?mode=memory&cache=shared")
	require.NoError(t, err)
	assert.Equal(t, "file:app?mode=memory&cache=shared", dsn)
}
