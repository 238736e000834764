package topic

import (
	"fmt"
	"regexp"
	"strings"
)

var filterRegex = regexp.MustCompile(`^(([^+#]*|\+)(/([^+#]*|\+))*(/#)?|#)$`)

type Filter struct {
	Value string `json:"value"`
}

func NewFilter(value string) (*Filter, error) {
	if value == "" {
		return nil, fmt.Errorf("topic filter: cannot be empty")
	}

	if len(value) > maxLength {
		return nil, fmt.Errorf("topic filter: %.32s... cannot have more than %d bytes", value, maxLength)
	}

	if !filterRegex.MatchString(value) {
		return nil, fmt.Errorf("topic filter: %s format is invalid", value)
	}

	return &Filter{value}, nil
}

// Match reports whether name is selected by the filter. Wildcards at the
// first level never match names in the $ namespace.
func (f *Filter) Match(name *Name) bool {
	levels := strings.Split(name.Value, "/")
	patterns := strings.Split(f.Value, "/")

	if name.IsSystem() && patterns[0] != levels[0] {
		return false
	}

	for i, pattern := range patterns {
		if pattern == "#" {
			return true
		}

		if i >= len(levels) {
			return false
		}

		if pattern != "+" && pattern != levels[i] {
			return false
		}
	}

	return len(levels) == len(patterns)
}
