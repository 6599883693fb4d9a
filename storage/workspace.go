package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"boardhub-api/domain"
)

// WorkspaceStore persists workspaces in a table keyed by
// PartitionKey = RowKey = workspaceId.
type WorkspaceStore struct {
	table *aztables.Client
}

type workspaceEntity struct {
	aztables.Entity
	ETag      string `json:"odata.etag"`
	Title     string `json:"Title"`
	CreatedBy string `json:"CreatedBy"`
	Members   string `json:"Members"`
	CreatedAt string `json:"CreatedAt"`
}

func encodeWorkspace(ws domain.Workspace) ([]byte, error) {
	members, err := json.Marshal(ws.Members)
	if err != nil {
		return nil, err
	}
	ent := workspaceEntity{
		Entity:    aztables.Entity{PartitionKey: ws.WorkspaceID, RowKey: ws.WorkspaceID},
		Title:     ws.Title,
		CreatedBy: ws.CreatedBy,
		Members:   string(members),
		CreatedAt: ws.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(ent)
}

func decodeWorkspace(data []byte) (domain.Workspace, string, error) {
	var ent workspaceEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Workspace{}, "", err
	}
	members := []string{}
	if ent.Members != "" {
		if err := json.Unmarshal([]byte(ent.Members), &members); err != nil {
			return domain.Workspace{}, "", err
		}
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	ws := domain.Workspace{
		WorkspaceID: ent.RowKey,
		Title:       ent.Title,
		CreatedBy:   ent.CreatedBy,
		Members:     members,
		CreatedAt:   createdAt,
	}
	return ws, ent.ETag, nil
}

func (st *WorkspaceStore) get(ctx context.Context, workspaceID string) (*domain.Workspace, string, error) {
	raw, err := getRaw(ctx, st.table, workspaceID, workspaceID)
	if err != nil || raw == nil {
		return nil, "", err
	}
	ws, etag, err := decodeWorkspace(raw)
	if err != nil {
		return nil, "", err
	}
	return &ws, etag, nil
}

func (st *WorkspaceStore) Insert(ctx context.Context, ws domain.Workspace) error {
	payload, err := encodeWorkspace(ws)
	if err != nil {
		return err
	}
	_, err = st.table.AddEntity(ctx, payload, nil)
	return err
}

func (st *WorkspaceStore) Get(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	ws, _, err := st.get(ctx, workspaceID)
	return ws, err
}

func (st *WorkspaceStore) List(ctx context.Context) ([]domain.Workspace, error) {
	pager := st.table.NewListEntitiesPager(nil)
	out := []domain.Workspace{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			ws, _, err := decodeWorkspace(e)
			if err != nil {
				return nil, err
			}
			out = append(out, ws)
		}
	}
	return out, nil
}

// mutate runs the read-check-modify-replace cycle until the replace lands on
// an unchanged entity. apply returns false when the conditional filter did
// not match the stored workspace.
func (st *WorkspaceStore) mutate(ctx context.Context, workspaceID string, apply func(*domain.Workspace) bool) (*domain.Workspace, error) {
	for {
		ws, etag, err := st.get(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		if ws == nil {
			return nil, domain.ErrNotMatched
		}
		if !apply(ws) {
			return nil, domain.ErrNotMatched
		}
		payload, err := encodeWorkspace(*ws)
		if err != nil {
			return nil, err
		}
		err = replaceEntity(ctx, st.table, payload, etag)
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, errConcurrencyConflict) {
			return nil, err
		}
	}
}

func (st *WorkspaceStore) Rename(ctx context.Context, workspaceID, owner, title string) (*domain.Workspace, error) {
	return st.mutate(ctx, workspaceID, func(ws *domain.Workspace) bool {
		if ws.CreatedBy != owner {
			return false
		}
		ws.Title = title
		return true
	})
}

func (st *WorkspaceStore) AddMembers(ctx context.Context, workspaceID, owner string, members []string) (*domain.Workspace, error) {
	return st.mutate(ctx, workspaceID, func(ws *domain.Workspace) bool {
		if ws.CreatedBy != owner {
			return false
		}
		ws.Members = domain.UnionStrings(ws.Members, members)
		return true
	})
}

func (st *WorkspaceStore) RemoveMember(ctx context.Context, workspaceID, owner, member string) error {
	_, err := st.mutate(ctx, workspaceID, func(ws *domain.Workspace) bool {
		if ws.CreatedBy != owner {
			return false
		}
		next, removed := domain.RemoveString(ws.Members, member)
		if !removed {
			return false
		}
		ws.Members = next
		return true
	})
	return err
}

func (st *WorkspaceStore) TransferOwner(ctx context.Context, workspaceID, owner, newOwner string) error {
	_, err := st.mutate(ctx, workspaceID, func(ws *domain.Workspace) bool {
		if ws.CreatedBy != owner || !domain.ContainsString(ws.Members, newOwner) {
			return false
		}
		ws.CreatedBy = newOwner
		return true
	})
	return err
}

func (st *WorkspaceStore) Delete(ctx context.Context, workspaceID, owner string) (bool, error) {
	for {
		ws, etag, err := st.get(ctx, workspaceID)
		if err != nil {
			return false, err
		}
		if ws == nil || ws.CreatedBy != owner {
			return false, nil
		}
		deleted, err := deleteEntity(ctx, st.table, workspaceID, workspaceID, etag)
		if errors.Is(err, errConcurrencyConflict) {
			continue
		}
		return deleted, err
	}
}
