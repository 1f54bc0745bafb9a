package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Todo/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyList = "todo:list"

// TodoCache caches the unfiltered todo list in Redis. Filters depend on the
// current time, so they are applied after a hit, never cached.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// cachedTodo is the stored shape; dom.Todo carries no JSON tags.
type cachedTodo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DeadlineAt  *time.Time `json:"deadline_at,omitempty"`
}

// GetList returns the cached list, or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored []cachedTodo
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, err
	}
	list := make([]dom.Todo, len(stored))
	for i, s := range stored {
		list[i] = dom.Todo(s)
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TodoCache) SetList(ctx context.Context, list []dom.Todo) error {
	stored := make([]cachedTodo, len(list))
	for i, t := range list {
		stored[i] = cachedTodo(t)
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyList, b, c.ttl).Err()
}

// Invalidate drops the cached list. Called after every committed write.
func (c *TodoCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyList).Err()
}
