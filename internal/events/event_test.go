package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timada-org/todos/internal/todo"
	"github.com/timada-org/todos/pkg/topic"
)

func TestEventRoundTrip(t *testing.T) {
	event := NewTodoEvent(Created, &todo.Todo{ID: 3, Content: "テストタスク"})
	assert.Equal(t, "todos/3", event.Topic.Value)

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, Created, decoded.Name)
	assert.Equal(t, event.Topic, decoded.Topic)

	got, err := decoded.Todo()
	require.NoError(t, err)
	assert.Equal(t, &todo.Todo{ID: 3, Content: "テストタスク"}, got)
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, err := Decode([]byte("nope"))
		require.Error(t, err)
	})

	t.Run("missing topic", func(t *testing.T) {
		_, err := Decode([]byte(`{"name":"Created","data":{}}`))
		require.Error(t, err)
	})

	t.Run("wildcard topic", func(t *testing.T) {
		_, err := Decode([]byte(`{"topic":{"value":"todos/#"},"name":"Created"}`))
		require.Error(t, err)
	})
}

func TestWatcherHandle(t *testing.T) {
	var buf bytes.Buffer
	filter, err := topic.NewFilter("todos/+")
	require.NoError(t, err)

	w := &Watcher{
		filter: filter,
		logger: log.NewWithOptions(&buf, log.Options{Formatter: log.LogfmtFormatter}),
	}

	payload, err := json.Marshal(NewTodoEvent(Deleted, &todo.Todo{ID: 9, Content: "bye"}))
	require.NoError(t, err)

	require.True(t, w.handle(payload))
	assert.Contains(t, buf.String(), "topic=todos/9")
	assert.Contains(t, buf.String(), "content=bye")

	other, err := json.Marshal(&Event{Topic: &topic.Name{Value: "notes/1"}, Name: Created})
	require.NoError(t, err)
	assert.False(t, w.handle(other))

	assert.False(t, w.handle([]byte("{")))
	assert.Contains(t, buf.String(), "skipping event")
}
