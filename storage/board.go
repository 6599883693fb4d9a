package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"boardhub-api/domain"
)

// BoardStore persists boards in a table keyed by PartitionKey = workspaceId,
// RowKey = boardId.
type BoardStore struct {
	table *aztables.Client
}

type boardEntity struct {
	aztables.Entity
	ETag       string `json:"odata.etag"`
	Title      string `json:"Title"`
	Visibility string `json:"Visibility"`
	CreatedBy  string `json:"CreatedBy"`
	CreatedAt  string `json:"CreatedAt"`
}

func encodeBoard(b domain.Board) ([]byte, error) {
	ent := boardEntity{
		Entity:     aztables.Entity{PartitionKey: b.WorkspaceID, RowKey: b.BoardID},
		Title:      b.Title,
		Visibility: string(b.Visibility),
		CreatedBy:  b.CreatedBy,
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(ent)
}

func decodeBoard(data []byte) (domain.Board, string, error) {
	var ent boardEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Board{}, "", err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	b := domain.Board{
		BoardID:     ent.RowKey,
		Title:       ent.Title,
		WorkspaceID: ent.PartitionKey,
		Visibility:  domain.Visibility(ent.Visibility),
		CreatedBy:   ent.CreatedBy,
		CreatedAt:   createdAt,
	}
	return b, ent.ETag, nil
}

func (st *BoardStore) get(ctx context.Context, workspaceID, boardID string) (*domain.Board, string, error) {
	raw, err := getRaw(ctx, st.table, workspaceID, boardID)
	if err != nil || raw == nil {
		return nil, "", err
	}
	b, etag, err := decodeBoard(raw)
	if err != nil {
		return nil, "", err
	}
	return &b, etag, nil
}

func (st *BoardStore) Insert(ctx context.Context, b domain.Board) error {
	payload, err := encodeBoard(b)
	if err != nil {
		return err
	}
	_, err = st.table.AddEntity(ctx, payload, nil)
	return err
}

func (st *BoardStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Board, error) {
	filter := "PartitionKey eq '" + escapeODataString(workspaceID) + "'"
	pager := st.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []domain.Board{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			b, _, err := decodeBoard(e)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
	}
	return out, nil
}

func (st *BoardStore) Get(ctx context.Context, workspaceID, boardID string) (*domain.Board, error) {
	b, _, err := st.get(ctx, workspaceID, boardID)
	return b, err
}

func (st *BoardStore) mutate(ctx context.Context, workspaceID, boardID string, apply func(*domain.Board) bool) (*domain.Board, error) {
	for {
		b, etag, err := st.get(ctx, workspaceID, boardID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domain.ErrNotMatched
		}
		if !apply(b) {
			return nil, domain.ErrNotMatched
		}
		payload, err := encodeBoard(*b)
		if err != nil {
			return nil, err
		}
		err = replaceEntity(ctx, st.table, payload, etag)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, errConcurrencyConflict) {
			return nil, err
		}
	}
}

func (st *BoardStore) Rename(ctx context.Context, workspaceID, boardID, owner, title string) (*domain.Board, error) {
	return st.mutate(ctx, workspaceID, boardID, func(b *domain.Board) bool {
		if b.CreatedBy != owner {
			return false
		}
		b.Title = title
		return true
	})
}

func (st *BoardStore) SetVisibility(ctx context.Context, workspaceID, boardID, owner string, v domain.Visibility) (*domain.Board, error) {
	return st.mutate(ctx, workspaceID, boardID, func(b *domain.Board) bool {
		if b.CreatedBy != owner {
			return false
		}
		b.Visibility = v
		return true
	})
}

func (st *BoardStore) Delete(ctx context.Context, workspaceID, boardID, owner string) (bool, error) {
	for {
		b, etag, err := st.get(ctx, workspaceID, boardID)
		if err != nil {
			return false, err
		}
		if b == nil || b.CreatedBy != owner {
			return false, nil
		}
		deleted, err := deleteEntity(ctx, st.table, workspaceID, boardID, etag)
		if errors.Is(err, errConcurrencyConflict) {
			continue
		}
		return deleted, err
	}
}
