package repo

import (
	"context"
	"time"

	dom "todoapi/internal/domain"
)

// TodoRepo is the durable store for todos. Implementations return dom.ErrNotFound
// for unknown ids and a *dom.ValidationError for blank titles.
type TodoRepo interface {
	Create(ctx context.Context, title string, completed bool) (dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	List(ctx context.Context) ([]dom.Todo, error)
	Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// now is replaced in tests that need fixed timestamps.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func checkTitle(title string) (string, error) {
	t, ok := dom.NormalizeTitle(title)
	if !ok {
		return "", dom.NewValidationError("title cannot be empty")
	}
	return t, nil
}

func normalizePatch(patch dom.TodoPatch) (dom.TodoPatch, error) {
	if patch.Title == nil {
		return patch, nil
	}
	t, err := checkTitle(*patch.Title)
	if err != nil {
		return dom.TodoPatch{}, err
	}
	patch.Title = &t
	return patch, nil
}
