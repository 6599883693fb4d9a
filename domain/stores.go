package domain

import "context"

// WorkspaceStore persists workspaces. Conditional writes (owner-gated
// renames, member mutations) return ErrNotMatched when the filter matched no
// stored workspace; Get returns (nil, nil) when the workspace is absent.
type WorkspaceStore interface {
	Insert(ctx context.Context, ws Workspace) error
	Get(ctx context.Context, workspaceID string) (*Workspace, error)
	List(ctx context.Context) ([]Workspace, error)
	// Rename updates the title where createdBy matches the stored owner.
	Rename(ctx context.Context, workspaceID, owner, title string) (*Workspace, error)
	// AddMembers unions members into the set, gated the same way as Rename.
	AddMembers(ctx context.Context, workspaceID, owner string, members []string) (*Workspace, error)
	// RemoveMember removes one member where the owner matches and the member
	// is currently present.
	RemoveMember(ctx context.Context, workspaceID, owner, member string) error
	// TransferOwner sets createdBy to newOwner where the current owner
	// matches and newOwner is already a member.
	TransferOwner(ctx context.Context, workspaceID, owner, newOwner string) error
	Delete(ctx context.Context, workspaceID, owner string) (bool, error)
}

// BoardStore persists boards, keyed by workspace.
type BoardStore interface {
	Insert(ctx context.Context, b Board) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Board, error)
	Get(ctx context.Context, workspaceID, boardID string) (*Board, error)
	Rename(ctx context.Context, workspaceID, boardID, owner, title string) (*Board, error)
	SetVisibility(ctx context.Context, workspaceID, boardID, owner string, v Visibility) (*Board, error)
	Delete(ctx context.Context, workspaceID, boardID, owner string) (bool, error)
}

// BoardListStore persists board lists, keyed by the workspace/board pair.
type BoardListStore interface {
	Insert(ctx context.Context, l BoardList) error
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]BoardList, error)
	Rename(ctx context.Context, workspaceID, boardID, boardListID, title string) (*BoardList, error)
	Delete(ctx context.Context, workspaceID, boardID, boardListID string) (bool, error)
}

// TaskScope is the identifier tuple a task mutation is conditioned on. An
// empty BoardListID leaves the list unconstrained, which is how moves are
// filtered.
type TaskScope struct {
	TaskID      string
	WorkspaceID string
	BoardID     string
	BoardListID string
}

// TaskChange carries the fields of a single task update. Nil pointers leave
// the stored value untouched; AddMembers/AddLabels are unioned into the
// stored sets.
type TaskChange struct {
	Title       *string
	Description *string
	BoardListID *string
	AddMembers  []string
	AddLabels   []string
}

// TaskStore persists tasks. Update applies change where scope matches the
// stored task exactly, returning ErrNotMatched otherwise; Delete removes by
// task id alone and returns the removed task, nil when absent.
type TaskStore interface {
	Insert(ctx context.Context, t Task) error
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]Task, error)
	Get(ctx context.Context, taskID string) (*Task, error)
	Update(ctx context.Context, scope TaskScope, change TaskChange) (*Task, error)
	Delete(ctx context.Context, taskID string) (*Task, error)
}

// workspaceDirectory is the slice of the workspace service that descendant
// services rely on for existence and membership checks.
type workspaceDirectory interface {
	Get(ctx context.Context, workspaceID string) (Workspace, error)
	Authorize(ctx context.Context, workspaceID, userID string) (bool, error)
}
