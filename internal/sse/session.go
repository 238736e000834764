package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/timada-org/todos/internal/events"
	"github.com/timada-org/todos/pkg/topic"
)

const bufferSize = 64

type Session struct {
	filter   *topic.Filter
	messages chan []byte
}

func newSession(filter *topic.Filter) *Session {
	return &Session{
		filter:   filter,
		messages: make(chan []byte, bufferSize),
	}
}

// Send queues the event when it matches the session filter. Events are
// dropped while the buffer is full.
func (s *Session) Send(e *events.Event) bool {
	if !s.filter.Match(e.Topic) {
		return false
	}

	return s.push(e)
}

func (s *Session) push(e *events.Event) bool {
	payload, err := json.Marshal(e)
	if err != nil {
		return false
	}

	select {
	case s.messages <- payload:
		return true
	default:
		return false
	}
}

func (s *Session) listen(w http.ResponseWriter, r *http.Request, flusher http.Flusher, done <-chan struct{}) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case message := <-s.messages:
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()

		case <-r.Context().Done():
			return

		case <-done:
			return
		}
	}
}
