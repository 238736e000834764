package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/timada-org/todos/internal/todo"
)

// ErrorResponse is the body of every non-validation error answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type ValidationResponse struct {
	Detail []todo.FieldError `json:"detail"`
}

func (app *App) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		app.logger.Warn("write response", "request_id", requestID(r.Context()), "err", err)
	}
}

func (app *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *todo.ValidationError

	switch {
	case errors.As(err, &verr):
		app.respond(w, r, http.StatusUnprocessableEntity, ValidationResponse{Detail: verr.Errors})
	case errors.Is(err, errBodyTooLarge):
		app.respond(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{Detail: "Request Entity Too Large"})
	case errors.Is(err, todo.ErrNotFound):
		app.respond(w, r, http.StatusNotFound, ErrorResponse{Detail: "Todo not found"})
	default:
		app.logger.Error("request failed",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		app.respond(w, r, http.StatusInternalServerError, ErrorResponse{Detail: "Internal Server Error"})
	}
}
