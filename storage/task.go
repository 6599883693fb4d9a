package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"boardhub-api/domain"
)

// TaskStore persists tasks keyed by PartitionKey = workspaceId,
// RowKey = taskId; the board and list are plain properties. Lookups by task
// id alone scan across partitions with a RowKey filter.
type TaskStore struct {
	table *aztables.Client
}

type taskEntity struct {
	aztables.Entity
	ETag        string `json:"odata.etag"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Members     string `json:"Members"`
	Labels      string `json:"Labels"`
	BoardID     string `json:"BoardId"`
	BoardListID string `json:"BoardListId"`
	CreatedBy   string `json:"CreatedBy"`
	CreatedAt   string `json:"CreatedAt"`
}

func encodeTask(t domain.Task) ([]byte, error) {
	members, err := json.Marshal(t.Members)
	if err != nil {
		return nil, err
	}
	labels, err := json.Marshal(t.Labels)
	if err != nil {
		return nil, err
	}
	ent := taskEntity{
		Entity:      aztables.Entity{PartitionKey: t.WorkspaceID, RowKey: t.TaskID},
		Title:       t.Title,
		Description: t.Description,
		Members:     string(members),
		Labels:      string(labels),
		BoardID:     t.BoardID,
		BoardListID: t.BoardListID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(ent)
}

func decodeStringSet(raw string) ([]string, error) {
	set := []string{}
	if raw == "" {
		return set, nil
	}
	err := json.Unmarshal([]byte(raw), &set)
	return set, err
}

func decodeTask(data []byte) (domain.Task, string, error) {
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Task{}, "", err
	}
	members, err := decodeStringSet(ent.Members)
	if err != nil {
		return domain.Task{}, "", err
	}
	labels, err := decodeStringSet(ent.Labels)
	if err != nil {
		return domain.Task{}, "", err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	t := domain.Task{
		TaskID:      ent.RowKey,
		Title:       ent.Title,
		Description: ent.Description,
		Members:     members,
		Labels:      labels,
		BoardID:     ent.BoardID,
		BoardListID: ent.BoardListID,
		WorkspaceID: ent.PartitionKey,
		CreatedBy:   ent.CreatedBy,
		CreatedAt:   createdAt,
	}
	return t, ent.ETag, nil
}

func (st *TaskStore) Insert(ctx context.Context, t domain.Task) error {
	payload, err := encodeTask(t)
	if err != nil {
		return err
	}
	_, err = st.table.AddEntity(ctx, payload, nil)
	return err
}

func (st *TaskStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + escapeODataString(workspaceID) + "' and BoardId eq '" + escapeODataString(boardID) + "'"
	pager := st.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			t, _, err := decodeTask(e)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// find locates a task by id regardless of workspace.
func (st *TaskStore) find(ctx context.Context, taskID string) (*domain.Task, string, error) {
	filter := "RowKey eq '" + escapeODataString(taskID) + "'"
	pager := st.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, e := range resp.Entities {
			t, etag, err := decodeTask(e)
			if err != nil {
				return nil, "", err
			}
			return &t, etag, nil
		}
	}
	return nil, "", nil
}

func (st *TaskStore) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	t, _, err := st.find(ctx, taskID)
	return t, err
}

// Update applies change where the stored task matches scope exactly,
// retrying the conditional replace until it lands.
func (st *TaskStore) Update(ctx context.Context, scope domain.TaskScope, change domain.TaskChange) (*domain.Task, error) {
	for {
		raw, err := getRaw(ctx, st.table, scope.WorkspaceID, scope.TaskID)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, domain.ErrNotMatched
		}
		t, etag, err := decodeTask(raw)
		if err != nil {
			return nil, err
		}
		if t.BoardID != scope.BoardID {
			return nil, domain.ErrNotMatched
		}
		if scope.BoardListID != "" && t.BoardListID != scope.BoardListID {
			return nil, domain.ErrNotMatched
		}
		if change.Title != nil {
			t.Title = *change.Title
		}
		if change.Description != nil {
			t.Description = *change.Description
		}
		if change.BoardListID != nil {
			t.BoardListID = *change.BoardListID
		}
		t.Members = domain.UnionStrings(t.Members, change.AddMembers)
		t.Labels = domain.UnionStrings(t.Labels, change.AddLabels)
		payload, err := encodeTask(t)
		if err != nil {
			return nil, err
		}
		err = replaceEntity(ctx, st.table, payload, etag)
		if err == nil {
			return &t, nil
		}
		if !errors.Is(err, errConcurrencyConflict) {
			return nil, err
		}
	}
}

// Delete removes a task by id alone and returns the removed task, nil when
// absent.
func (st *TaskStore) Delete(ctx context.Context, taskID string) (*domain.Task, error) {
	for {
		t, etag, err := st.find(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		deleted, err := deleteEntity(ctx, st.table, t.WorkspaceID, t.TaskID, etag)
		if errors.Is(err, errConcurrencyConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !deleted {
			return nil, nil
		}
		return t, nil
	}
}
