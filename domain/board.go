package domain

import (
	"context"
	"errors"
	"time"
)

// BoardService owns board lifecycle within a workspace.
type BoardService struct {
	store      BoardStore
	workspaces workspaceDirectory
	activity   ActivityRecorder
}

func NewBoardService(store BoardStore, workspaces workspaceDirectory, activity ActivityRecorder) *BoardService {
	return &BoardService{store: store, workspaces: workspaces, activity: activity}
}

// Create persists a board after verifying the workspace exists and createdBy
// is one of its members.
func (s *BoardService) Create(ctx context.Context, title, workspaceID string, visibility Visibility, createdBy string) (Board, error) {
	if title == "" || workspaceID == "" || visibility == "" || createdBy == "" {
		return Board{}, invalidInput("missing required fields")
	}
	if !visibility.Valid() {
		return Board{}, invalidInput("invalid visibility")
	}
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return Board{}, invalidInput("workspace not found")
		}
		return Board{}, err
	}
	if !ContainsString(ws.Members, createdBy) {
		return Board{}, invalidInput("not a member of this workspace")
	}
	b := Board{
		BoardID:     newBoardID(),
		Title:       title,
		WorkspaceID: workspaceID,
		Visibility:  visibility,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return Board{}, internal(err, "create board")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		BoardID:     b.BoardID,
		Type:        ActivityBoardCreated,
		Actor:       createdBy,
		Payload:     BoardCreatedPayload{Title: title},
	})
	return b, nil
}

func (s *BoardService) ListByWorkspace(ctx context.Context, workspaceID string) ([]Board, error) {
	if workspaceID == "" {
		return nil, invalidInput("workspace id is required")
	}
	boards, err := s.store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, internal(err, "list boards")
	}
	return boards, nil
}

func (s *BoardService) Get(ctx context.Context, boardID, workspaceID string) (Board, error) {
	if boardID == "" || workspaceID == "" {
		return Board{}, invalidInput("board id and workspace id are required")
	}
	b, err := s.store.Get(ctx, workspaceID, boardID)
	if err != nil {
		return Board{}, internal(err, "get board")
	}
	if b == nil {
		return Board{}, notFound("board not found")
	}
	return *b, nil
}

// Rename updates the title where the caller is the board's creator. The
// activity is recorded after the attempt whether or not the filter matched;
// only storage failures suppress it.
func (s *BoardService) Rename(ctx context.Context, boardID, workspaceID, createdBy, title string) (Board, error) {
	if boardID == "" || workspaceID == "" || createdBy == "" || title == "" {
		return Board{}, invalidInput("missing required fields")
	}
	b, err := s.store.Rename(ctx, workspaceID, boardID, createdBy, title)
	if err != nil && !errors.Is(err, ErrNotMatched) {
		return Board{}, internal(err, "rename board")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		BoardID:     boardID,
		Type:        ActivityBoardRenamed,
		Actor:       createdBy,
		Payload:     BoardRenamedPayload{Title: title},
	})
	if err != nil {
		return Board{}, notFound("board not found")
	}
	return *b, nil
}

// SetVisibility mirrors Rename, including the unconditional activity record.
func (s *BoardService) SetVisibility(ctx context.Context, boardID, workspaceID, createdBy string, visibility Visibility) (Board, error) {
	if boardID == "" || workspaceID == "" || createdBy == "" {
		return Board{}, invalidInput("missing required fields")
	}
	if !visibility.Valid() {
		return Board{}, invalidInput("invalid visibility")
	}
	b, err := s.store.SetVisibility(ctx, workspaceID, boardID, createdBy, visibility)
	if err != nil && !errors.Is(err, ErrNotMatched) {
		return Board{}, internal(err, "update board visibility")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		BoardID:     boardID,
		Type:        ActivityBoardVisibilityUpdated,
		Actor:       createdBy,
		Payload:     BoardVisibilityUpdatedPayload{Visibility: visibility},
	})
	if err != nil {
		return Board{}, notFound("board not found")
	}
	return *b, nil
}

// Delete removes the board where the caller created it and reports whether
// anything was deleted. The activity is recorded after the attempt either
// way.
func (s *BoardService) Delete(ctx context.Context, boardID, workspaceID, createdBy string) (bool, error) {
	if boardID == "" || workspaceID == "" {
		return false, invalidInput("missing required fields")
	}
	deleted, err := s.store.Delete(ctx, workspaceID, boardID, createdBy)
	if err != nil {
		return false, internal(err, "delete board")
	}
	s.activity.Record(ctx, Activity{
		WorkspaceID: workspaceID,
		BoardID:     boardID,
		Type:        ActivityBoardDeleted,
		Actor:       createdBy,
		Payload:     BoardDeletedPayload{},
	})
	return deleted, nil
}
