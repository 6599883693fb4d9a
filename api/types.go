package api

import (
	"context"

	"boardhub-api/domain"
)

// WorkspaceService is the slice of the workspace manager the handlers use.
type WorkspaceService interface {
	Create(ctx context.Context, title, createdBy string) (domain.Workspace, error)
	Get(ctx context.Context, workspaceID string) (domain.Workspace, error)
	List(ctx context.Context) ([]domain.Workspace, error)
	Rename(ctx context.Context, workspaceID, title, createdBy string) (domain.Workspace, error)
	AddMembers(ctx context.Context, workspaceID string, members []string, createdBy string) (domain.Workspace, error)
	RemoveMember(ctx context.Context, workspaceID, member, createdBy string) error
	TransferOwner(ctx context.Context, workspaceID, createdBy, newOwner string) error
	Delete(ctx context.Context, workspaceID, createdBy string) (bool, error)
}

// BoardService is the slice of the board manager the handlers use.
type BoardService interface {
	Create(ctx context.Context, title, workspaceID string, visibility domain.Visibility, createdBy string) (domain.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Board, error)
	Get(ctx context.Context, boardID, workspaceID string) (domain.Board, error)
	Rename(ctx context.Context, boardID, workspaceID, createdBy, title string) (domain.Board, error)
	SetVisibility(ctx context.Context, boardID, workspaceID, createdBy string, visibility domain.Visibility) (domain.Board, error)
	Delete(ctx context.Context, boardID, workspaceID, createdBy string) (bool, error)
}

// BoardListService is the slice of the board list manager the handlers use.
type BoardListService interface {
	Create(ctx context.Context, title, boardID, workspaceID, createdBy string) (domain.BoardList, error)
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.BoardList, error)
	Rename(ctx context.Context, boardListID, workspaceID, boardID, title, actor string) (domain.BoardList, error)
	Delete(ctx context.Context, boardListID, workspaceID, boardID, actor string) (bool, error)
}

// TaskService is the slice of the task manager the handlers use.
type TaskService interface {
	Create(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error)
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error)
	Get(ctx context.Context, taskID string) (*domain.Task, error)
	Delete(ctx context.Context, taskID, workspaceID, createdBy string) (bool, error)
	Rename(ctx context.Context, scope domain.TaskScope, title, createdBy string) (domain.Task, error)
	UpdateDescription(ctx context.Context, scope domain.TaskScope, description, createdBy string) (domain.Task, error)
	AddMembers(ctx context.Context, scope domain.TaskScope, members []string, createdBy string) (domain.Task, error)
	AddLabels(ctx context.Context, scope domain.TaskScope, labels []string, createdBy string) (domain.Task, error)
	Move(ctx context.Context, taskID, workspaceID, boardID, newListID, createdBy string) (domain.Task, error)
}

// Services bundles the managers the HTTP surface exposes.
type Services struct {
	Workspaces WorkspaceService
	Boards     BoardService
	BoardLists BoardListService
	Tasks      TaskService
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Deduper prevents reprocessing of repeated create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when downstream processing fails.
	Remove(ctx context.Context, userID, key string) error
}
