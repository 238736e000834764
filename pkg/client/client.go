// Package client is a Go client for the todos HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/timada-org/todos/internal/todo"
)

// ErrNotFound is returned when the server has no todo with the requested id.
var ErrNotFound = errors.New("todo not found")

// APIError is any non 2xx answer other than a missing todo. Detail holds the
// decoded "detail" member of the body.
type APIError struct {
	StatusCode int
	Detail     json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todos: status %d: %s", e.StatusCode, e.Detail)
}

// FieldErrors decodes the per-field violations of a 422 answer.
func (e *APIError) FieldErrors() ([]todo.FieldError, error) {
	var fieldErrs []todo.FieldError
	if err := json.Unmarshal(e.Detail, &fieldErrs); err != nil {
		return nil, err
	}

	return fieldErrs, nil
}

type ClientOptions struct {
	URL        string
	HTTPClient *http.Client
}

type Client struct {
	base *url.URL
	http *http.Client
}

func New(options ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(options.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("todos: parse url: %w", err)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{base: base, http: httpClient}, nil
}

func (c *Client) List(ctx context.Context, skip, limit int) ([]todo.Todo, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var todos []todo.Todo
	if err := c.do(ctx, http.MethodGet, "/todos/?"+query.Encode(), nil, &todos); err != nil {
		return nil, err
	}

	return todos, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodGet, todoPath(id), nil, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (c *Client) Create(ctx context.Context, content string) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/", todo.CreateInput{Content: &content}, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (c *Client) Update(ctx context.Context, id int64, input todo.UpdateInput) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPut, todoPath(id), input, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (c *Client) Delete(ctx context.Context, id int64) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodDelete, todoPath(id), nil, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/todos/") {
		return ErrNotFound
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	return &APIError{StatusCode: resp.StatusCode, Detail: envelope.Detail}
}
