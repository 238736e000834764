// Package topic implements the MQTT style topic names and filters used to
// route todo change events.
package topic

import (
	"fmt"
	"regexp"
	"strings"
)

const maxLength = 65535

var nameRegex = regexp.MustCompile("^[^#+]+$")

type Name struct {
	Value string `json:"value"`
}

func NewName(value string) (*Name, error) {
	if value == "" {
		return nil, fmt.Errorf("topic name: cannot be empty")
	}

	if len(value) > maxLength {
		return nil, fmt.Errorf("topic name: %.32s... cannot have more than %d bytes", value, maxLength)
	}

	if !nameRegex.MatchString(value) {
		return nil, fmt.Errorf("topic name: %s format is invalid", value)
	}

	return &Name{value}, nil
}

// Todo returns the topic name carrying events of a single todo.
func Todo(id int64) *Name {
	return &Name{fmt.Sprintf("todos/%d", id)}
}

// IsSystem reports whether the name belongs to the reserved $ namespace.
func (n *Name) IsSystem() bool {
	return strings.HasPrefix(n.Value, "$")
}

func (n *Name) String() string {
	return n.Value
}
