package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"boardhub-api/domain"
)

// CachedTaskStore wraps a task store with Redis-backed caching of the
// per-board task lists. Writes evict the affected board scope.
type CachedTaskStore struct {
	base  domain.TaskStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedTaskStore creates a caching task store wrapper using the provided
// Redis client and TTL.
func NewCachedTaskStore(base domain.TaskStore, client *redis.Client, ttl time.Duration) *CachedTaskStore {
	if base == nil {
		panic("storage.NewCachedTaskStore: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedTaskStore{base: base, redis: client, ttl: ttl}
}

func (c *CachedTaskStore) Insert(ctx context.Context, t domain.Task) error {
	if err := c.base.Insert(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, tasksCacheKey(t.WorkspaceID, t.BoardID))
	return nil
}

func (c *CachedTaskStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error) {
	key := tasksCacheKey(workspaceID, boardID)
	if tasks, ok := loadFromCache[[]domain.Task](ctx, c.redis, key); ok {
		return tasks, nil
	}

	tasks, err := c.base.ListByBoard(ctx, workspaceID, boardID)
	if err != nil {
		return nil, err
	}

	storeInCache(ctx, c.redis, c.ttl, key, tasks)
	return tasks, nil
}

func (c *CachedTaskStore) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	return c.base.Get(ctx, taskID)
}

func (c *CachedTaskStore) Update(ctx context.Context, scope domain.TaskScope, change domain.TaskChange) (*domain.Task, error) {
	t, err := c.base.Update(ctx, scope, change)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, tasksCacheKey(t.WorkspaceID, t.BoardID))
	return t, nil
}

func (c *CachedTaskStore) Delete(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := c.base.Delete(ctx, taskID)
	if err != nil || t == nil {
		return t, err
	}
	c.evict(ctx, tasksCacheKey(t.WorkspaceID, t.BoardID))
	return t, nil
}

func (c *CachedTaskStore) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

// CachedBoardStore wraps a board store with Redis-backed caching of the
// per-workspace board lists. Writes evict the workspace scope.
type CachedBoardStore struct {
	base  domain.BoardStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedBoardStore creates a caching board store wrapper using the
// provided Redis client and TTL.
func NewCachedBoardStore(base domain.BoardStore, client *redis.Client, ttl time.Duration) *CachedBoardStore {
	if base == nil {
		panic("storage.NewCachedBoardStore: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedBoardStore{base: base, redis: client, ttl: ttl}
}

func (c *CachedBoardStore) Insert(ctx context.Context, b domain.Board) error {
	if err := c.base.Insert(ctx, b); err != nil {
		return err
	}
	c.evict(ctx, b.WorkspaceID)
	return nil
}

func (c *CachedBoardStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Board, error) {
	key := boardsCacheKey(workspaceID)
	if boards, ok := loadFromCache[[]domain.Board](ctx, c.redis, key); ok {
		return boards, nil
	}

	boards, err := c.base.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	storeInCache(ctx, c.redis, c.ttl, key, boards)
	return boards, nil
}

func (c *CachedBoardStore) Get(ctx context.Context, workspaceID, boardID string) (*domain.Board, error) {
	return c.base.Get(ctx, workspaceID, boardID)
}

func (c *CachedBoardStore) Rename(ctx context.Context, workspaceID, boardID, owner, title string) (*domain.Board, error) {
	b, err := c.base.Rename(ctx, workspaceID, boardID, owner, title)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, workspaceID)
	return b, nil
}

func (c *CachedBoardStore) SetVisibility(ctx context.Context, workspaceID, boardID, owner string, v domain.Visibility) (*domain.Board, error) {
	b, err := c.base.SetVisibility(ctx, workspaceID, boardID, owner, v)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, workspaceID)
	return b, nil
}

func (c *CachedBoardStore) Delete(ctx context.Context, workspaceID, boardID, owner string) (bool, error) {
	deleted, err := c.base.Delete(ctx, workspaceID, boardID, owner)
	if err != nil || !deleted {
		return deleted, err
	}
	c.evict(ctx, workspaceID)
	return true, nil
}

func (c *CachedBoardStore) evict(ctx context.Context, workspaceID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, boardsCacheKey(workspaceID)).Err()
}

func loadFromCache[T any](ctx context.Context, client *redis.Client, key string) (T, bool) {
	var zero T
	if client == nil {
		return zero, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = client.Del(ctx, key).Err()
		}
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		_ = client.Del(ctx, key).Err()
		return zero, false
	}
	return out, true
}

func storeInCache(ctx context.Context, client *redis.Client, ttl time.Duration, key string, v any) {
	if client == nil || ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = client.Set(ctx, key, data, ttl).Err()
}

func tasksCacheKey(workspaceID, boardID string) string {
	return "tasks:" + workspaceID + ":" + boardID
}

func boardsCacheKey(workspaceID string) string {
	return "boards:" + workspaceID
}
