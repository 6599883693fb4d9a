package domain

import (
	"context"
	"errors"
	"time"
)

// WorkspaceService owns workspace lifecycle and membership. Its Authorize
// predicate is the single authorization mechanism consumed by the board,
// board-list and task services.
type WorkspaceService struct {
	store    WorkspaceStore
	activity ActivityRecorder
}

func NewWorkspaceService(store WorkspaceStore, activity ActivityRecorder) *WorkspaceService {
	return &WorkspaceService{store: store, activity: activity}
}

// Create persists a workspace whose member set starts as {createdBy}.
func (s *WorkspaceService) Create(ctx context.Context, title, createdBy string) (Workspace, error) {
	if title == "" || createdBy == "" {
		return Workspace{}, invalidInput("title and creator are required")
	}
	ws := Workspace{
		WorkspaceID: newWorkspaceID(),
		Title:       title,
		CreatedBy:   createdBy,
		Members:     []string{createdBy},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, ws); err != nil {
		return Workspace{}, internal(err, "create workspace")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: ws.WorkspaceID,
		Type:        ActivityWorkspaceCreated,
		Actor:       createdBy,
		Payload:     WorkspaceCreatedPayload{Title: title},
	})
	return ws, nil
}

func (s *WorkspaceService) Get(ctx context.Context, workspaceID string) (Workspace, error) {
	if workspaceID == "" {
		return Workspace{}, invalidInput("workspace id is required")
	}
	ws, err := s.store.Get(ctx, workspaceID)
	if err != nil {
		return Workspace{}, internal(err, "get workspace")
	}
	if ws == nil {
		return Workspace{}, notFound("workspace not found")
	}
	return *ws, nil
}

func (s *WorkspaceService) List(ctx context.Context) ([]Workspace, error) {
	workspaces, err := s.store.List(ctx)
	if err != nil {
		return nil, internal(err, "list workspaces")
	}
	return workspaces, nil
}

// Rename updates the title. Only the owner may rename: the store filter
// requires the stored createdBy to match.
func (s *WorkspaceService) Rename(ctx context.Context, workspaceID, title, createdBy string) (Workspace, error) {
	if workspaceID == "" || title == "" || createdBy == "" {
		return Workspace{}, invalidInput("workspace id, title and creator are required")
	}
	ws, err := s.store.Rename(ctx, workspaceID, createdBy, title)
	if err != nil {
		if errors.Is(err, ErrNotMatched) {
			return Workspace{}, notFound("workspace not found")
		}
		return Workspace{}, internal(err, "rename workspace")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		Type:        ActivityWorkspaceRenamed,
		Actor:       createdBy,
		Payload:     WorkspaceRenamedPayload{Title: title},
	})
	return *ws, nil
}

// AddMembers unions members into the workspace member set. Repeated adds are
// no-ops; the gate is the same owner match as Rename.
func (s *WorkspaceService) AddMembers(ctx context.Context, workspaceID string, members []string, createdBy string) (Workspace, error) {
	if workspaceID == "" || createdBy == "" || len(members) == 0 {
		return Workspace{}, invalidInput("workspace id, members and creator are required")
	}
	ws, err := s.store.AddMembers(ctx, workspaceID, createdBy, uniqueStrings(members))
	if err != nil {
		if errors.Is(err, ErrNotMatched) {
			return Workspace{}, notFound("workspace not found")
		}
		return Workspace{}, internal(err, "add members")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		Type:        ActivityMembersAdded,
		Actor:       createdBy,
		Payload:     MembersAddedPayload{Members: members},
	})
	return *ws, nil
}

// RemoveMember removes one member. Nothing prevents the owner from removing
// itself, which leaves createdBy pointing at a non-member; callers that care
// must transfer ownership first.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, member, createdBy string) error {
	if workspaceID == "" || member == "" || createdBy == "" {
		return invalidInput("workspace id, member and creator are required")
	}
	if err := s.store.RemoveMember(ctx, workspaceID, createdBy, member); err != nil {
		if errors.Is(err, ErrNotMatched) {
			return notFound("member not found")
		}
		return internal(err, "remove member")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		Type:        ActivityMemberRemoved,
		Actor:       createdBy,
		Payload:     MemberRemovedPayload{Member: member},
	})
	return nil
}

// TransferOwner hands the workspace to newOwner. The store filter requires
// newOwner to already be a member, so ownership can never leave the
// membership set through this path.
func (s *WorkspaceService) TransferOwner(ctx context.Context, workspaceID, createdBy, newOwner string) error {
	if workspaceID == "" || createdBy == "" || newOwner == "" {
		return invalidInput("workspace id, creator and new owner are required")
	}
	if err := s.store.TransferOwner(ctx, workspaceID, createdBy, newOwner); err != nil {
		if errors.Is(err, ErrNotMatched) {
			return notFound("workspace not found")
		}
		return internal(err, "transfer owner")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		Type:        ActivityOwnerTransferred,
		Actor:       createdBy,
		Payload:     OwnerTransferredPayload{NewOwner: newOwner},
	})
	return nil
}

// Delete removes the workspace when the caller is its owner. Boards, lists
// and tasks under it are left in place.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, createdBy string) (bool, error) {
	if workspaceID == "" || createdBy == "" {
		return false, invalidInput("workspace id and creator are required")
	}
	deleted, err := s.store.Delete(ctx, workspaceID, createdBy)
	if err != nil {
		return false, internal(err, "delete workspace")
	}
	if !deleted {
		return false, invalidInput("not able to delete workspace")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		Type:        ActivityWorkspaceDeleted,
		Actor:       createdBy,
		Payload:     WorkspaceDeletedPayload{},
	})
	return true, nil
}

// Authorize reports whether userID is a member of the workspace. A missing
// workspace or a non-member both yield (false, nil); the error return is
// reserved for storage failures.
func (s *WorkspaceService) Authorize(ctx context.Context, workspaceID, userID string) (bool, error) {
	if workspaceID == "" || userID == "" {
		return false, nil
	}
	ws, err := s.store.Get(ctx, workspaceID)
	if err != nil {
		return false, internal(err, "authorize member")
	}
	if ws == nil {
		return false, nil
	}
	return ContainsString(ws.Members, userID), nil
}
