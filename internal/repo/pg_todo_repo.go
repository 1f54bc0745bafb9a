package repo

import (
	"context"
	"errors"
	"fmt"

	dom "Todo/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgTodoColumns = `id, title, description, completed, deadline_at`

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the Postgres Store.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) WithinTx(ctx context.Context, fn func(TodoRepo) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&PGTodoRepo{db: tx})
	})
}

func (s *PGStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *PGStore) Close() error {
	s.db.Close()
	return nil
}

// PGTodoRepo runs queries on a pool or, inside WithinTx, on a transaction.
type PGTodoRepo struct {
	db pgQuerier
}

func (r *PGTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pgTodoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	list := make([]dom.Todo, 0)
	for rows.Next() {
		t, err := scanPGTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	t, err := scanPGTodo(r.db.QueryRow(ctx, `SELECT `+pgTodoColumns+` FROM todos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (title, description, completed, deadline_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + pgTodoColumns
	out, err := scanPGTodo(r.db.QueryRow(ctx, query, t.Title, t.Description, t.Completed, t.DeadlineAt))
	if err != nil {
		return dom.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return out, nil
}

func (r *PGTodoRepo) Update(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos SET title = $2, description = $3, completed = $4, deadline_at = $5
		WHERE id = $1
		RETURNING ` + pgTodoColumns
	out, err := scanPGTodo(r.db.QueryRow(ctx, query, t.ID, t.Title, t.Description, t.Completed, t.DeadlineAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("update todo %d: %w", t.ID, err)
	}
	return out, nil
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPGTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.DeadlineAt)
	if t.DeadlineAt != nil {
		u := t.DeadlineAt.UTC()
		t.DeadlineAt = &u
	}
	return t, err
}
