package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"boardhub-api/domain"
)

type stubTaskStore struct {
	listFn   func(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error)
	updateFn func(ctx context.Context, scope domain.TaskScope, change domain.TaskChange) (*domain.Task, error)
	deleteFn func(ctx context.Context, taskID string) (*domain.Task, error)
}

func (s *stubTaskStore) Insert(ctx context.Context, t domain.Task) error {
	return nil
}

func (s *stubTaskStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected ListByBoard call")
	}
	return s.listFn(ctx, workspaceID, boardID)
}

func (s *stubTaskStore) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskStore) Update(ctx context.Context, scope domain.TaskScope, change domain.TaskChange) (*domain.Task, error) {
	if s.updateFn == nil {
		return nil, errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, scope, change)
}

func (s *stubTaskStore) Delete(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.deleteFn == nil {
		return nil, errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, taskID)
}

type stubBoardStore struct {
	listFn   func(ctx context.Context, workspaceID string) ([]domain.Board, error)
	renameFn func(ctx context.Context, workspaceID, boardID, owner, title string) (*domain.Board, error)
}

func (s *stubBoardStore) Insert(ctx context.Context, b domain.Board) error { return nil }

func (s *stubBoardStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Board, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected ListByWorkspace call")
	}
	return s.listFn(ctx, workspaceID)
}

func (s *stubBoardStore) Get(ctx context.Context, workspaceID, boardID string) (*domain.Board, error) {
	return nil, nil
}

func (s *stubBoardStore) Rename(ctx context.Context, workspaceID, boardID, owner, title string) (*domain.Board, error) {
	if s.renameFn == nil {
		return nil, errors.New("unexpected Rename call")
	}
	return s.renameFn(ctx, workspaceID, boardID, owner, title)
}

func (s *stubBoardStore) SetVisibility(ctx context.Context, workspaceID, boardID, owner string, v domain.Visibility) (*domain.Board, error) {
	return nil, errors.New("unexpected SetVisibility call")
}

func (s *stubBoardStore) Delete(ctx context.Context, workspaceID, boardID, owner string) (bool, error) {
	return false, errors.New("unexpected Delete call")
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedTaskListMissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)

	ctx := context.Background()
	expected := []domain.Task{{TaskID: "t-1", Title: "Write code", WorkspaceID: "w-1", BoardID: "b-1"}}

	var calls int
	cache := NewCachedTaskStore(&stubTaskStore{
		listFn: func(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error) {
			calls++
			if workspaceID != "w-1" || boardID != "b-1" {
				t.Fatalf("unexpected scope: %s/%s", workspaceID, boardID)
			}
			return append([]domain.Task(nil), expected...), nil
		},
	}, client, time.Minute)

	tasks, err := cache.ListByBoard(ctx, "w-1", "b-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !reflect.DeepEqual(tasks, expected) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(tasksCacheKey("w-1", "b-1")); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.ListByBoard(ctx, "w-1", "b-1")
	if err != nil {
		t.Fatalf("list cached tasks: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached tasks: %#v", cached)
	}
	if calls != 1 {
		t.Fatalf("expected cached list to avoid backend, calls=%d", calls)
	}
}

func TestCachedTaskUpdateEvictsBoardScope(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	updated := &domain.Task{TaskID: "t-1", WorkspaceID: "w-1", BoardID: "b-1", Title: "renamed"}
	cache := NewCachedTaskStore(&stubTaskStore{
		updateFn: func(ctx context.Context, scope domain.TaskScope, change domain.TaskChange) (*domain.Task, error) {
			return updated, nil
		},
	}, client, time.Minute)

	key := tasksCacheKey("w-1", "b-1")
	if err := mr.Set(key, `[{"taskId":"t-1","title":"stale"}]`); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	title := "renamed"
	if _, err := cache.Update(ctx, domain.TaskScope{TaskID: "t-1", WorkspaceID: "w-1", BoardID: "b-1", BoardListID: "bl-1"}, domain.TaskChange{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mr.Exists(key) {
		t.Fatal("expected update to evict the cached board scope")
	}
}

func TestCachedTaskDeleteEvictsRemovedTasksScope(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	removed := &domain.Task{TaskID: "t-1", WorkspaceID: "w-1", BoardID: "b-1"}
	cache := NewCachedTaskStore(&stubTaskStore{
		deleteFn: func(ctx context.Context, taskID string) (*domain.Task, error) {
			return removed, nil
		},
	}, client, time.Minute)

	key := tasksCacheKey("w-1", "b-1")
	if err := mr.Set(key, `[]`); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	got, err := cache.Delete(ctx, "t-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got == nil || got.TaskID != "t-1" {
		t.Fatalf("unexpected deleted task: %#v", got)
	}
	if mr.Exists(key) {
		t.Fatal("expected delete to evict the cached board scope")
	}
}

func TestCachedTaskListDegradesWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	var calls int
	cache := NewCachedTaskStore(&stubTaskStore{
		listFn: func(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error) {
			calls++
			return []domain.Task{}, nil
		},
	}, client, time.Minute)

	if _, err := cache.ListByBoard(context.Background(), "w-1", "b-1"); err != nil {
		t.Fatalf("expected fallback to backend, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected backend call, got %d", calls)
	}
}

func TestCachedBoardListMissThenHit(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	expected := []domain.Board{{BoardID: "b-1", Title: "Roadmap", WorkspaceID: "w-1", Visibility: domain.VisibilityPrivate}}

	var calls int
	cache := NewCachedBoardStore(&stubBoardStore{
		listFn: func(ctx context.Context, workspaceID string) ([]domain.Board, error) {
			calls++
			return append([]domain.Board(nil), expected...), nil
		},
	}, client, time.Minute)

	for i := 0; i < 2; i++ {
		boards, err := cache.ListByWorkspace(ctx, "w-1")
		if err != nil {
			t.Fatalf("list boards: %v", err)
		}
		if !reflect.DeepEqual(boards, expected) {
			t.Fatalf("unexpected boards: %#v", boards)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
}

func TestCachedBoardRenameEvictsWorkspaceScope(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	renamed := &domain.Board{BoardID: "b-1", WorkspaceID: "w-1", Title: "renamed"}
	cache := NewCachedBoardStore(&stubBoardStore{
		renameFn: func(ctx context.Context, workspaceID, boardID, owner, title string) (*domain.Board, error) {
			return renamed, nil
		},
	}, client, time.Minute)

	key := boardsCacheKey("w-1")
	if err := mr.Set(key, `[{"boardId":"b-1","title":"stale"}]`); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if _, err := cache.Rename(ctx, "w-1", "b-1", "u1", "renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if mr.Exists(key) {
		t.Fatal("expected rename to evict the cached workspace scope")
	}
}
