package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "Todo/internal/domain"
	"Todo/internal/repo"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("not found")

// ListCache holds a snapshot of the unfiltered list.
type ListCache interface {
	GetList(ctx context.Context) ([]dom.Todo, error)
	SetList(ctx context.Context, list []dom.Todo) error
	Invalidate(ctx context.Context) error
}

type TodoService struct {
	tx    repo.Transactor
	cache ListCache
	sf    singleflight.Group
	log   *log.Logger
	now   func() time.Time
}

type Option func(*TodoService)

// WithClock overrides time.Now for the window filter.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TodoService) { s.log = l }
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(tx repo.Transactor, c ListCache, opts ...Option) *TodoService {
	s := &TodoService{tx: tx, cache: c, log: log.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every todo matching f, in store order.
func (s *TodoService) List(ctx context.Context, f dom.ListFilter) ([]dom.Todo, error) {
	all, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return dom.Filter(all, f, s.now()), nil
}

func (s *TodoService) fetchAll(ctx context.Context) ([]dom.Todo, error) {
	if s.cache == nil {
		return s.listFromStore(ctx)
	}
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		list, err := s.cache.GetList(ctx)
		if err != nil {
			s.log.Warn("todo cache read failed", "err", err)
		} else if list != nil {
			return list, nil
		}
		list, err = s.listFromStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, list); err != nil {
			s.log.Warn("todo cache write failed", "err", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Todo), nil
}

func (s *TodoService) listFromStore(ctx context.Context) ([]dom.Todo, error) {
	var list []dom.Todo
	err := s.tx.WithinTx(ctx, func(r repo.TodoRepo) error {
		var err error
		list, err = r.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return list, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	var t dom.Todo
	err := s.tx.WithinTx(ctx, func(r repo.TodoRepo) error {
		var err error
		t, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return dom.Todo{}, mapNotFound(err)
	}
	return t, nil
}

func (s *TodoService) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	var out dom.Todo
	err := s.tx.WithinTx(ctx, func(r repo.TodoRepo) error {
		var err error
		out, err = r.Create(ctx, t)
		return err
	})
	if err != nil {
		return dom.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.invalidateCache(ctx)
	return out, nil
}

// Update applies patch to the todo with the given id. Fields the patch leaves
// nil keep their stored value.
func (s *TodoService) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	var out dom.Todo
	err := s.tx.WithinTx(ctx, func(r repo.TodoRepo) error {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out, err = r.Update(ctx, patch.Apply(existing))
		return err
	})
	if err != nil {
		return dom.Todo{}, mapNotFound(err)
	}
	s.invalidateCache(ctx)
	return out, nil
}

// Delete removes the todo and returns its final state. Deleting a missing
// todo is not an error: found is false and nothing changes.
func (s *TodoService) Delete(ctx context.Context, id int64) (t dom.Todo, found bool, err error) {
	err = s.tx.WithinTx(ctx, func(r repo.TodoRepo) error {
		existing, err := r.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
		t, found = existing, true
		return nil
	})
	if err != nil {
		return dom.Todo{}, false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	if found {
		s.invalidateCache(ctx)
	}
	return t, found, nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("todo cache invalidate failed", "err", err)
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
