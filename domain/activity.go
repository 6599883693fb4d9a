package domain

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ActivityType names one kind of audited domain event.
type ActivityType string

const (
	ActivityWorkspaceCreated       ActivityType = "WorkspaceCreated"
	ActivityWorkspaceRenamed       ActivityType = "WorkspaceRenamed"
	ActivityMembersAdded           ActivityType = "MembersAdded"
	ActivityMemberRemoved          ActivityType = "MemberRemoved"
	ActivityOwnerTransferred       ActivityType = "OwnerTransferred"
	ActivityWorkspaceDeleted       ActivityType = "WorkspaceDeleted"
	ActivityBoardCreated           ActivityType = "BoardCreated"
	ActivityBoardRenamed           ActivityType = "BoardRenamed"
	ActivityBoardVisibilityUpdated ActivityType = "BoardVisibilityUpdated"
	ActivityBoardDeleted           ActivityType = "BoardDeleted"
)

// ActivityPayload is implemented by the per-event payload variants. Each
// variant carries only the fields relevant to its event kind.
type ActivityPayload interface {
	ActivityType() ActivityType
}

type WorkspaceCreatedPayload struct {
	Title string `json:"title"`
}

func (WorkspaceCreatedPayload) ActivityType() ActivityType { return ActivityWorkspaceCreated }

type WorkspaceRenamedPayload struct {
	Title string `json:"title"`
}

func (WorkspaceRenamedPayload) ActivityType() ActivityType { return ActivityWorkspaceRenamed }

type MembersAddedPayload struct {
	Members []string `json:"members"`
}

func (MembersAddedPayload) ActivityType() ActivityType { return ActivityMembersAdded }

type MemberRemovedPayload struct {
	Member string `json:"member"`
}

func (MemberRemovedPayload) ActivityType() ActivityType { return ActivityMemberRemoved }

type OwnerTransferredPayload struct {
	NewOwner string `json:"newOwner"`
}

func (OwnerTransferredPayload) ActivityType() ActivityType { return ActivityOwnerTransferred }

type WorkspaceDeletedPayload struct{}

func (WorkspaceDeletedPayload) ActivityType() ActivityType { return ActivityWorkspaceDeleted }

type BoardCreatedPayload struct {
	Title string `json:"title"`
}

func (BoardCreatedPayload) ActivityType() ActivityType { return ActivityBoardCreated }

type BoardRenamedPayload struct {
	Title string `json:"title"`
}

func (BoardRenamedPayload) ActivityType() ActivityType { return ActivityBoardRenamed }

type BoardVisibilityUpdatedPayload struct {
	Visibility Visibility `json:"visibility"`
}

func (BoardVisibilityUpdatedPayload) ActivityType() ActivityType {
	return ActivityBoardVisibilityUpdated
}

type BoardDeletedPayload struct{}

func (BoardDeletedPayload) ActivityType() ActivityType { return ActivityBoardDeleted }

// Activity is one immutable audit record. Records are append-only: nothing
// in this codebase updates or deletes one after Insert.
type Activity struct {
	ActivityID  string          `json:"activityId"`
	WorkspaceID string          `json:"workspaceId"`
	BoardID     string          `json:"boardId,omitempty"`
	Type        ActivityType    `json:"type"`
	Actor       string          `json:"actor"`
	Payload     ActivityPayload `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ActivityStore persists activity records.
type ActivityStore interface {
	Insert(ctx context.Context, a Activity) error
}

// FeedPublisher pushes activity records to the downstream feed queue.
type FeedPublisher interface {
	Publish(ctx context.Context, a Activity) error
}

// ActivityRecorder receives one record per successful workspace/board
// mutation. Recording is best-effort: implementations log failures instead of
// failing the already-committed mutation.
type ActivityRecorder interface {
	Record(ctx context.Context, a Activity)
}

const feedPublishTimeout = 30 * time.Second

// Recorder writes activity records synchronously and fans them out to the
// feed queue from background workers.
type Recorder struct {
	store  ActivityStore
	feed   FeedPublisher
	logger *log.Logger

	jobs chan Activity
	wg   sync.WaitGroup
}

// NewRecorder creates a Recorder. feed may be nil, in which case records are
// persisted but not published.
func NewRecorder(store ActivityStore, feed FeedPublisher, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.StandardLogger()
	}
	r := &Recorder{
		store:  store,
		feed:   feed,
		logger: logger,
		jobs:   make(chan Activity, 256),
	}
	if feed != nil {
		for i := 0; i < 2; i++ {
			r.wg.Add(1)
			go r.publishLoop()
		}
	}
	return r
}

// Record assigns the record identity and persists it. The triggering
// mutation has already committed when Record runs, so failures are logged
// and swallowed rather than surfaced to the caller.
func (r *Recorder) Record(ctx context.Context, a Activity) {
	if a.WorkspaceID == "" || a.Type == "" || a.Actor == "" {
		r.logger.WithFields(log.Fields{
			"workspace": a.WorkspaceID,
			"type":      a.Type,
		}).Error("activity record missing required fields")
		return
	}
	a.ActivityID = newActivityID()
	a.CreatedAt = time.Now().UTC()

	if err := r.store.Insert(ctx, a); err != nil {
		r.logger.WithFields(log.Fields{
			"workspace": a.WorkspaceID,
			"type":      a.Type,
			"actor":     a.Actor,
		}).WithError(err).Error("activity append failed")
		return
	}
	if r.feed == nil {
		return
	}
	select {
	case r.jobs <- a:
	default:
		r.logger.WithField("type", a.Type).Warn("activity feed buffer saturated; dropping record")
	}
}

func (r *Recorder) publishLoop() {
	defer r.wg.Done()
	for a := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), feedPublishTimeout)
		if err := r.feed.Publish(ctx, a); err != nil {
			r.logger.WithFields(log.Fields{
				"workspace": a.WorkspaceID,
				"type":      a.Type,
			}).WithError(err).Error("activity feed publish failed")
		}
		cancel()
	}
}

// Close drains the feed buffer and stops the workers.
func (r *Recorder) Close() {
	close(r.jobs)
	r.wg.Wait()
}
