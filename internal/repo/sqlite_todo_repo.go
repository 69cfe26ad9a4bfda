package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dom "todoapi/internal/domain"
)

// Fixed width so that ORDER BY created_at sorts chronologically as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

var sqliteTimeLayouts = []string{
	sqliteTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// sqliteTime scans created_at regardless of whether the driver hands back
// a time.Time or the raw text.
type sqliteTime struct{ t time.Time }

func (st *sqliteTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		st.t = time.Time{}
		return nil
	case time.Time:
		st.t = x.UTC()
		return nil
	case []byte:
		return st.parse(string(x))
	case string:
		return st.parse(x)
	}
	return fmt.Errorf("created_at: unsupported type %T", v)
}

func (st *sqliteTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			st.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTodo(row rowScanner) (dom.Todo, error) {
	var (
		t  dom.Todo
		ca sqliteTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &ca); err != nil {
		return dom.Todo{}, err
	}
	t.CreatedAt = ca.t
	return t, nil
}

// SQLiteTodoRepo implements TodoRepo on database/sql with the modernc SQLite driver.
type SQLiteTodoRepo struct {
	db *sql.DB
}

func NewSQLiteTodoRepo(db *sql.DB) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: db}
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, title string, completed bool) (dom.Todo, error) {
	title, err := checkTitle(title)
	if err != nil {
		return dom.Todo{}, err
	}
	query := `
		INSERT INTO todos (title, completed, created_at)
		VALUES (?, ?, ?)
		RETURNING id, title, completed, created_at`
	t, err := scanSQLiteTodo(r.db.QueryRowContext(ctx, query, title, completed, now().Format(sqliteTimeLayout)))
	if err != nil {
		return dom.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return t, nil
}

func (r *SQLiteTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `SELECT id, title, completed, created_at FROM todos WHERE id = ?`
	t, err := scanSQLiteTodo(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return dom.Todo{}, dom.ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("select todo %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	query := `SELECT id, title, completed, created_at FROM todos ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	list := []dom.Todo{}
	for rows.Next() {
		t, err := scanSQLiteTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return dom.Todo{}, err
	}
	query := `
		UPDATE todos SET title = COALESCE(?, title), completed = COALESCE(?, completed)
		WHERE id = ?
		RETURNING id, title, completed, created_at`
	t, err := scanSQLiteTodo(r.db.QueryRowContext(ctx, query, patch.Title, patch.Completed, id))
	if errors.Is(err, sql.ErrNoRows) {
		return dom.Todo{}, dom.ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if n == 0 {
		return dom.ErrNotFound
	}
	return nil
}
