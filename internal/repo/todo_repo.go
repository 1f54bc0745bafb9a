package repo

import (
	"context"
	"errors"

	dom "Todo/internal/domain"
)

// ErrNotFound is returned by GetByID when no todo has the given id.
var ErrNotFound = errors.New("todo not found")

// TodoRepo is the store contract. Implementations run every call against the
// transaction they were handed by Transactor.WithinTx.
type TodoRepo interface {
	// List returns every todo in id order.
	List(ctx context.Context) ([]dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	// Create inserts t and returns it with the store-assigned id.
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	// Update overwrites every mutable column of t.
	Update(ctx context.Context, t dom.Todo) (dom.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn inside one transaction, committing only if fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(TodoRepo) error) error
}

// Store is a Transactor owning its connection.
type Store interface {
	Transactor
	Ping(ctx context.Context) error
	Close() error
}
