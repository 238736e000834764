// Package sse streams todo change events to browsers as server-sent events.
package sse

import (
	"context"
	"net/http"
	"sync"

	"github.com/julienschmidt/httprouter"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/timada-org/todos/internal/events"
	"github.com/timada-org/todos/pkg/topic"
)

const SessionTopic = "$SYS/session"

const SessionCreated = "Created"

type Server struct {
	mux      sync.RWMutex
	sessions map[string]*Session
	done     chan struct{}
	once     sync.Once
}

func New() *Server {
	return &Server{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

var _ events.Publisher = (*Server)(nil)

// HandleFunc opens a stream. The optional "filter" query parameter narrows
// the topics delivered to the session; it defaults to every todo.
func (s *Server) HandleFunc() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported.", http.StatusInternalServerError)
			return
		}

		value := r.URL.Query().Get("filter")
		if value == "" {
			value = "todos/#"
		}

		filter, err := topic.NewFilter(value)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		id, err := gonanoid.New()
		if err != nil {
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		session := newSession(filter)

		s.mux.Lock()
		s.sessions[id] = session
		s.mux.Unlock()

		defer func() {
			s.mux.Lock()
			delete(s.sessions, id)
			s.mux.Unlock()
		}()

		session.push(&events.Event{
			Topic: &topic.Name{Value: SessionTopic},
			Name:  SessionCreated,
			Data:  id,
		})

		session.listen(w, r, flusher, s.done)
	}
}

// Publish fans the event out to every open session whose filter matches.
func (s *Server) Publish(_ context.Context, event *events.Event) error {
	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, session := range s.sessions {
		session.Send(event)
	}

	return nil
}

func (s *Server) Get(id string) (*Session, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	session, ok := s.sessions[id]

	return session, ok
}

func (s *Server) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return len(s.sessions)
}

// Shutdown ends every open stream so the HTTP server can drain.
func (s *Server) Shutdown() {
	s.once.Do(func() { close(s.done) })
}

func (s *Server) Close() {
	s.Shutdown()
}
