package client_test

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timada-org/todos/internal/api"
	"github.com/timada-org/todos/internal/todo"
	"github.com/timada-org/todos/pkg/client"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()

	store, err := todo.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	app := api.New(api.Options{Store: store, Logger: log.New(io.Discard)})

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)

	c, err := client.New(client.ClientOptions{URL: ts.URL + "/", HTTPClient: ts.Client()})
	require.NoError(t, err)

	return c
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	created, err := c.Create(ctx, "買い物")
	require.NoError(t, err)
	assert.Equal(t, "買い物", created.Content)

	_, err = c.Create(ctx, "掃除")
	require.NoError(t, err)

	todos, err := c.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, created.ID, todos[0].ID)

	todos, err = c.List(ctx, 1, 100)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "掃除", todos[0].Content)

	content := "洗濯"
	updated, err := c.Update(ctx, created.ID, todo.UpdateInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "洗濯", updated.Content)

	unchanged, err := c.Update(ctx, created.ID, todo.UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, "洗濯", unchanged.Content)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClientValidationError(t *testing.T) {
	c := newClient(t)

	_, err := c.Create(context.Background(), "12345678901")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.StatusCode)

	fieldErrs, err := apiErr.FieldErrors()
	require.NoError(t, err)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, todo.TypeStringTooLong, fieldErrs[0].Type)
	assert.Equal(t, "contentは10文字以下で入力してください。", fieldErrs[0].Msg)
}

func TestClientNegativeWindow(t *testing.T) {
	c := newClient(t)

	_, err := c.List(context.Background(), -1, 100)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.StatusCode)
}
