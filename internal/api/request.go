package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/timada-org/todos/internal/todo"
)

// maxBodyBytes caps request bodies. A todo payload is a handful of runes.
const maxBodyBytes = 16 << 10

var errBodyTooLarge = errors.New("request body too large")

// decodeBody fills dst from the JSON request body. Shape problems are
// returned as a *todo.ValidationError so they surface as 422.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return invalid(todo.NewFieldError(todo.TypeMissing, []any{"body"}, nil, nil))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError

		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return invalid(todo.NewFieldError(todo.TypeStringType, []any{"body", typeErr.Field}, nil, nil))
		case errors.As(err, &typeErr):
			return invalid(todo.NewFieldError(todo.TypeModelType, []any{"body"}, nil, nil))
		case errors.As(err, &syntaxErr):
			return invalid(todo.NewFieldError(todo.TypeJSONInvalid, []any{"body", syntaxErr.Offset}, nil,
				map[string]any{"error": syntaxErr.Error()}))
		default:
			return invalid(todo.NewFieldError(todo.TypeJSONInvalid, []any{"body"}, nil,
				map[string]any{"error": err.Error()}))
		}
	}

	return nil
}

func todoID(p httprouter.Params) (int64, error) {
	raw := p.ByName("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid(todo.NewFieldError(todo.TypeIntParsing, []any{"path", "todo_id"}, raw, nil))
	}

	return id, nil
}

// window reads skip and limit, reporting every bad parameter at once.
func window(q url.Values) (skip, limit int, err error) {
	verr := &todo.ValidationError{}

	skip = queryInt(q, "skip", 0, verr)
	limit = queryInt(q, "limit", todo.DefaultLimit, verr)

	return skip, limit, verr.Err()
}

func queryInt(q url.Values, key string, fallback int, verr *todo.ValidationError) int {
	if !q.Has(key) {
		return fallback
	}

	raw := q.Get(key)

	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(todo.NewFieldError(todo.TypeIntParsing, []any{"query", key}, raw, nil))
		return fallback
	}

	if n < 0 {
		verr.Add(todo.NewFieldError(todo.TypeGreaterEqual, []any{"query", key}, raw, map[string]any{"ge": 0}))
		return fallback
	}

	return n
}

// collect moves the field errors of err into verr. Any other error is
// returned unchanged.
func collect(verr *todo.ValidationError, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs *todo.ValidationError
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs.Errors {
		verr.Add(fe)
	}

	return nil
}

func invalid(fe todo.FieldError) error {
	return &todo.ValidationError{Errors: []todo.FieldError{fe}}
}
