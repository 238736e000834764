package todo

import (
	"context"
	"errors"
)

const (
	MinContentLength = 1
	MaxContentLength = 10

	DefaultLimit = 100
)

var ErrNotFound = errors.New("todo not found")

type Todo struct {
	ID      int64  `json:"id" db:"id" mapstructure:"id"`
	Content string `json:"content" db:"content" mapstructure:"content"`
}

// CreateInput is the body of a create request. Content is a pointer so that
// an absent field can be told apart from an empty one.
type CreateInput struct {
	Content *string `json:"content" validate:"required,min=1,max=10"`
}

// UpdateInput carries the fields of a partial update. Nil fields are left
// untouched in storage.
type UpdateInput struct {
	Content *string `json:"content" validate:"omitnil,min=1,max=10"`
}

func (in UpdateInput) Empty() bool {
	return in.Content == nil
}

type Repository interface {
	Get(ctx context.Context, id int64) (*Todo, error)
	List(ctx context.Context, skip, limit int) ([]Todo, error)
	Create(ctx context.Context, content string) (*Todo, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Todo, error)
	Delete(ctx context.Context, id int64) (*Todo, error)
}
