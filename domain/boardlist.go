package domain

import (
	"context"
	"errors"
	"time"
)

// BoardListService owns list lifecycle within a board. List mutations are
// gated on workspace membership but, unlike boards, any member may rename or
// delete any list, and none of the operations emit an activity record.
type BoardListService struct {
	store      BoardListStore
	workspaces workspaceDirectory
}

func NewBoardListService(store BoardListStore, workspaces workspaceDirectory) *BoardListService {
	return &BoardListService{store: store, workspaces: workspaces}
}

func (s *BoardListService) requireMember(ctx context.Context, workspaceID, userID string) error {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !ContainsString(ws.Members, userID) {
		return notFound("not a member of this workspace")
	}
	return nil
}

func (s *BoardListService) Create(ctx context.Context, title, boardID, workspaceID, createdBy string) (BoardList, error) {
	if title == "" || boardID == "" || workspaceID == "" || createdBy == "" {
		return BoardList{}, invalidInput("missing required fields")
	}
	if err := s.requireMember(ctx, workspaceID, createdBy); err != nil {
		return BoardList{}, err
	}
	l := BoardList{
		BoardListID: newBoardListID(),
		Title:       title,
		BoardID:     boardID,
		WorkspaceID: workspaceID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return BoardList{}, internal(err, "create board list")
	}
	return l, nil
}

func (s *BoardListService) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]BoardList, error) {
	if workspaceID == "" || boardID == "" {
		return nil, invalidInput("missing required fields")
	}
	lists, err := s.store.ListByBoard(ctx, workspaceID, boardID)
	if err != nil {
		return nil, internal(err, "list board lists")
	}
	return lists, nil
}

func (s *BoardListService) Rename(ctx context.Context, boardListID, workspaceID, boardID, title, actor string) (BoardList, error) {
	if boardListID == "" || workspaceID == "" || boardID == "" || title == "" {
		return BoardList{}, invalidInput("missing required fields")
	}
	if err := s.requireMember(ctx, workspaceID, actor); err != nil {
		return BoardList{}, err
	}
	l, err := s.store.Rename(ctx, workspaceID, boardID, boardListID, title)
	if err != nil {
		if errors.Is(err, ErrNotMatched) {
			return BoardList{}, notFound("board list not found")
		}
		return BoardList{}, internal(err, "rename board list")
	}
	return *l, nil
}

func (s *BoardListService) Delete(ctx context.Context, boardListID, workspaceID, boardID, actor string) (bool, error) {
	if boardListID == "" || workspaceID == "" || boardID == "" {
		return false, invalidInput("missing required fields")
	}
	if err := s.requireMember(ctx, workspaceID, actor); err != nil {
		return false, err
	}
	deleted, err := s.store.Delete(ctx, workspaceID, boardID, boardListID)
	if err != nil {
		return false, internal(err, "delete board list")
	}
	return deleted, nil
}
