package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"

	"boardhub-api/domain"
)

// ActivityStore appends audit records to a table keyed by
// PartitionKey = workspaceId, RowKey = activityId. Records are never updated
// or deleted.
type ActivityStore struct {
	table *aztables.Client
}

type activityEntity struct {
	aztables.Entity
	BoardID   string `json:"BoardId"`
	Type      string `json:"Type"`
	Actor     string `json:"Actor"`
	Payload   string `json:"Payload"`
	CreatedAt string `json:"CreatedAt"`
}

func (st *ActivityStore) Insert(ctx context.Context, a domain.Activity) error {
	payload := ""
	if a.Payload != nil {
		data, err := sonic.Marshal(a.Payload)
		if err != nil {
			return err
		}
		payload = string(data)
	}
	ent := activityEntity{
		Entity:    aztables.Entity{PartitionKey: a.WorkspaceID, RowKey: a.ActivityID},
		BoardID:   a.BoardID,
		Type:      string(a.Type),
		Actor:     a.Actor,
		Payload:   payload,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = st.table.AddEntity(ctx, data, nil)
	return err
}

// FeedPublisher pushes activity records onto the downstream feed queue.
type FeedPublisher struct {
	queue queueClient
}

// feedEnvelope is the queue message shape consumed by feed subscribers.
type feedEnvelope struct {
	ActivityID  string          `json:"activityId"`
	WorkspaceID string          `json:"workspaceId"`
	BoardID     string          `json:"boardId,omitempty"`
	Type        string          `json:"type"`
	Actor       string          `json:"actor"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Time        int64           `json:"time"`
}

func (p *FeedPublisher) Publish(ctx context.Context, a domain.Activity) error {
	env := feedEnvelope{
		ActivityID:  a.ActivityID,
		WorkspaceID: a.WorkspaceID,
		BoardID:     a.BoardID,
		Type:        string(a.Type),
		Actor:       a.Actor,
		Time:        a.CreatedAt.Unix(),
	}
	if a.Payload != nil {
		data, err := sonic.Marshal(a.Payload)
		if err != nil {
			return err
		}
		env.Payload = data
	}
	msg, err := sonic.Marshal(env)
	if err != nil {
		return err
	}
	_, err = p.queue.EnqueueMessage(ctx, string(msg), nil)
	return err
}
