package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "todoapi/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList = "todo:list"
	keyGen  = "todo:list:gen"
)

// TodoCache caches the full todo list in Redis. Every invalidation bumps a
// generation counter; a list read from the store is only cached if the
// generation it started under is still current.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list. ok is false on a miss.
func (c *TodoCache) GetList(ctx context.Context) (list []dom.Todo, ok bool, err error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, false, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, true, nil
}

// Generation returns the current invalidation counter. Read it before
// querying the store and hand it to SetList.
func (c *TodoCache) Generation(ctx context.Context) (int64, error) {
	return readGen(ctx, c.rdb)
}

func readGen(ctx context.Context, cmd redis.Cmdable) (int64, error) {
	gen, err := cmd.Get(ctx, keyGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores the list unless an invalidation happened since gen was read.
// stored is false when the write was skipped.
func (c *TodoCache) SetList(ctx context.Context, gen int64, list []dom.Todo) (stored bool, err error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGen(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyList, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, keyGen)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the generation and drops the cached list; called after every write.
func (c *TodoCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, keyGen)
		pipe.Del(ctx, keyList)
		return nil
	})
	return err
}
