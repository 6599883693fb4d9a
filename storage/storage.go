package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

// Tables names the tables backing the document model.
type Tables struct {
	Workspaces string
	Boards     string
	BoardLists string
	Tasks      string
	Activities string
}

// queueClient is the slice of azqueue.QueueClient the feed publisher needs.
type queueClient interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// Storage implements the domain store interfaces on Azure Table storage,
// with an optional Azure Queue for the activity feed.
type Storage struct {
	workspaces *aztables.Client
	boards     *aztables.Client
	boardLists *aztables.Client
	tasks      *aztables.Client
	activities *aztables.Client
	feedQueue  queueClient
}

// New creates a Storage instance from the given connection string. An empty
// feedQueue disables feed publishing.
func New(connStr string, tables Tables, feedQueue string) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}
	s := &Storage{
		workspaces: svc.NewClient(tables.Workspaces),
		boards:     svc.NewClient(tables.Boards),
		boardLists: svc.NewClient(tables.BoardLists),
		tasks:      svc.NewClient(tables.Tasks),
		activities: svc.NewClient(tables.Activities),
	}
	if feedQueue != "" {
		queueClientOptions := azqueue.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				Retry: policy.RetryOptions{
					MaxRetries:    5,
					TryTimeout:    time.Minute * 5,
					RetryDelay:    time.Second * 1,
					MaxRetryDelay: time.Second * 60,
					StatusCodes:   []int{408, 429, 500, 502, 503, 504},
				},
			},
		}
		q, err := azqueue.NewQueueClientFromConnectionString(connStr, feedQueue, &queueClientOptions)
		if err != nil {
			return nil, err
		}
		s.feedQueue = q
	}
	return s, nil
}

// Workspaces returns the workspace store backed by this storage.
func (s *Storage) Workspaces() *WorkspaceStore { return &WorkspaceStore{table: s.workspaces} }

// Boards returns the board store backed by this storage.
func (s *Storage) Boards() *BoardStore { return &BoardStore{table: s.boards} }

// BoardLists returns the board list store backed by this storage.
func (s *Storage) BoardLists() *BoardListStore { return &BoardListStore{table: s.boardLists} }

// Tasks returns the task store backed by this storage.
func (s *Storage) Tasks() *TaskStore { return &TaskStore{table: s.tasks} }

// Activities returns the activity store backed by this storage.
func (s *Storage) Activities() *ActivityStore { return &ActivityStore{table: s.activities} }

// Feed returns the activity feed publisher, nil when no queue is configured.
func (s *Storage) Feed() *FeedPublisher {
	if s.feedQueue == nil {
		return nil
	}
	return &FeedPublisher{queue: s.feedQueue}
}

// errConcurrencyConflict indicates the entity changed between the read and
// the conditional replace; callers retry the whole cycle.
var errConcurrencyConflict = errors.New("concurrency conflict")

func isStatus(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}

// getRaw fetches one entity's raw JSON. Absence is (nil, nil).
func getRaw(ctx context.Context, client *aztables.Client, pk, rk string) ([]byte, error) {
	resp, err := client.GetEntity(ctx, pk, rk, nil)
	if err != nil {
		if isStatus(err, 404) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Value, nil
}

// replaceEntity swaps the stored entity for payload iff the ETag still
// matches. A 412 maps to errConcurrencyConflict, a 404 to absence.
func replaceEntity(ctx context.Context, client *aztables.Client, payload []byte, etag string) error {
	match := azcore.ETag(etag)
	_, err := client.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &match,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		if isStatus(err, 412) {
			return errConcurrencyConflict
		}
	}
	return err
}

// deleteEntity removes the entity iff the ETag still matches. Reports
// whether anything was removed.
func deleteEntity(ctx context.Context, client *aztables.Client, pk, rk, etag string) (bool, error) {
	match := azcore.ETag(etag)
	_, err := client.DeleteEntity(ctx, pk, rk, &aztables.DeleteEntityOptions{IfMatch: &match})
	if err != nil {
		if isStatus(err, 404) {
			return false, nil
		}
		if isStatus(err, 412) {
			return false, errConcurrencyConflict
		}
		return false, err
	}
	return true, nil
}

// escapeODataString doubles single quotes for use inside an OData filter
// literal.
func escapeODataString(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
