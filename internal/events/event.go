package events

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/timada-org/todos/internal/todo"
	"github.com/timada-org/todos/pkg/topic"
)

const (
	Created = "Created"
	Updated = "Updated"
	Deleted = "Deleted"
)

type Event struct {
	Topic    *topic.Name `json:"topic"`
	Name     string      `json:"name"`
	Data     any         `json:"data"`
	Metadata any         `json:"metadata,omitempty"`
}

func NewTodoEvent(name string, t *todo.Todo) *Event {
	return &Event{
		Topic: topic.Todo(t.ID),
		Name:  name,
		Data:  t,
	}
}

func Decode(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	if event.Topic == nil {
		return nil, fmt.Errorf("decode event: missing topic")
	}

	if _, err := topic.NewName(event.Topic.Value); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	return &event, nil
}

// Todo decodes the event payload back into a todo.
func (e *Event) Todo() (*todo.Todo, error) {
	var t todo.Todo
	if err := mapstructure.Decode(e.Data, &t); err != nil {
		return nil, fmt.Errorf("decode todo: %w", err)
	}

	return &t, nil
}
