package service

import (
	"context"

	dom "todoapi/internal/domain"
	"todoapi/internal/repo"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ListCache is the read-through cache used by List. *cache.TodoCache implements it.
type ListCache interface {
	GetList(ctx context.Context) ([]dom.Todo, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, gen int64, list []dom.Todo) (bool, error)
	Invalidate(ctx context.Context) error
}

type TodoService struct {
	repo  repo.TodoRepo
	cache ListCache
	log   logrus.FieldLogger
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c ListCache, log logrus.FieldLogger) *TodoService {
	return &TodoService{repo: r, cache: c, log: log}
}

func (s *TodoService) Create(ctx context.Context, title string, completed bool) (dom.Todo, error) {
	title, ok := dom.NormalizeTitle(title)
	if !ok {
		return dom.Todo{}, dom.NewValidationError("title is required")
	}
	t, err := s.repo.Create(ctx, title, completed)
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) List(ctx context.Context) ([]dom.Todo, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	// The shared load outlives any single caller, so it must not inherit
	// the first caller's cancellation.
	sctx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		list, ok, err := s.cache.GetList(sctx)
		if err != nil {
			s.log.WithError(err).Warn("todo cache read failed")
		}
		if ok {
			return list, nil
		}
		// read before the store so a write racing this load discards it
		gen, genErr := s.cache.Generation(sctx)
		if genErr != nil {
			s.log.WithError(genErr).Warn("todo cache generation read failed")
		}
		list, err = s.repo.List(sctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			return list, nil
		}
		stored, err := s.cache.SetList(sctx, gen, list)
		if err != nil {
			s.log.WithError(err).Warn("todo cache write failed")
		} else if !stored {
			s.log.Debug("todo list changed during load, not cached")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Todo), nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TodoService) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	if patch.Title != nil {
		title, ok := dom.NormalizeTitle(*patch.Title)
		if !ok {
			return dom.Todo{}, dom.NewValidationError("title cannot be empty")
		}
		patch.Title = &title
	}
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Error("todo cache invalidation failed")
	}
}
