package repo

import (
	"context"
	"errors"
	"fmt"

	dom "todoapi/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGTodoRepo implements TodoRepo with Postgres.
type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, title string, completed bool) (dom.Todo, error) {
	title, err := checkTitle(title)
	if err != nil {
		return dom.Todo{}, err
	}
	query := `
		INSERT INTO todos (title, completed, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, title, completed, created_at`
	var out dom.Todo
	err = r.db.QueryRow(ctx, query, title, completed, now()).Scan(
		&out.ID, &out.Title, &out.Completed, &out.CreatedAt,
	)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `SELECT id, title, completed, created_at FROM todos WHERE id = $1`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, dom.ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("select todo %d: %w", id, err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *PGTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	query := `SELECT id, title, completed, created_at FROM todos ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	list := []dom.Todo{}
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return dom.Todo{}, err
	}
	query := `
		UPDATE todos SET title = COALESCE($2, title), completed = COALESCE($3, completed)
		WHERE id = $1
		RETURNING id, title, completed, created_at`
	var t dom.Todo
	err = r.db.QueryRow(ctx, query, id, patch.Title, patch.Completed).Scan(
		&t.ID, &t.Title, &t.Completed, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, dom.ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}
