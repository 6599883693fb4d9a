package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"boardhub-api/domain"
)

// BoardListStore persists board lists keyed by PartitionKey = workspaceId,
// RowKey = boardListId; the owning board is a plain property.
type BoardListStore struct {
	table *aztables.Client
}

type boardListEntity struct {
	aztables.Entity
	ETag      string `json:"odata.etag"`
	Title     string `json:"Title"`
	BoardID   string `json:"BoardId"`
	CreatedBy string `json:"CreatedBy"`
	CreatedAt string `json:"CreatedAt"`
}

func encodeBoardList(l domain.BoardList) ([]byte, error) {
	ent := boardListEntity{
		Entity:    aztables.Entity{PartitionKey: l.WorkspaceID, RowKey: l.BoardListID},
		Title:     l.Title,
		BoardID:   l.BoardID,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(ent)
}

func decodeBoardList(data []byte) (domain.BoardList, string, error) {
	var ent boardListEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.BoardList{}, "", err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	l := domain.BoardList{
		BoardListID: ent.RowKey,
		Title:       ent.Title,
		BoardID:     ent.BoardID,
		WorkspaceID: ent.PartitionKey,
		CreatedBy:   ent.CreatedBy,
		CreatedAt:   createdAt,
	}
	return l, ent.ETag, nil
}

func (st *BoardListStore) get(ctx context.Context, workspaceID, boardListID string) (*domain.BoardList, string, error) {
	raw, err := getRaw(ctx, st.table, workspaceID, boardListID)
	if err != nil || raw == nil {
		return nil, "", err
	}
	l, etag, err := decodeBoardList(raw)
	if err != nil {
		return nil, "", err
	}
	return &l, etag, nil
}

func (st *BoardListStore) Insert(ctx context.Context, l domain.BoardList) error {
	payload, err := encodeBoardList(l)
	if err != nil {
		return err
	}
	_, err = st.table.AddEntity(ctx, payload, nil)
	return err
}

func (st *BoardListStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.BoardList, error) {
	filter := "PartitionKey eq '" + escapeODataString(workspaceID) + "' and BoardId eq '" + escapeODataString(boardID) + "'"
	pager := st.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []domain.BoardList{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			l, _, err := decodeBoardList(e)
			if err != nil {
				return nil, err
			}
			out = append(out, l)
		}
	}
	return out, nil
}

func (st *BoardListStore) Rename(ctx context.Context, workspaceID, boardID, boardListID, title string) (*domain.BoardList, error) {
	for {
		l, etag, err := st.get(ctx, workspaceID, boardListID)
		if err != nil {
			return nil, err
		}
		if l == nil || l.BoardID != boardID {
			return nil, domain.ErrNotMatched
		}
		l.Title = title
		payload, err := encodeBoardList(*l)
		if err != nil {
			return nil, err
		}
		err = replaceEntity(ctx, st.table, payload, etag)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, errConcurrencyConflict) {
			return nil, err
		}
	}
}

func (st *BoardListStore) Delete(ctx context.Context, workspaceID, boardID, boardListID string) (bool, error) {
	for {
		l, etag, err := st.get(ctx, workspaceID, boardListID)
		if err != nil {
			return false, err
		}
		if l == nil || l.BoardID != boardID {
			return false, nil
		}
		deleted, err := deleteEntity(ctx, st.table, workspaceID, boardListID, etag)
		if errors.Is(err, errConcurrencyConflict) {
			continue
		}
		return deleted, err
	}
}
