package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type captureActivityStore struct {
	mu        sync.Mutex
	inserted  []Activity
	insertErr error
}

func (c *captureActivityStore) Insert(ctx context.Context, a Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.insertErr != nil {
		return c.insertErr
	}
	c.inserted = append(c.inserted, a)
	return nil
}

type captureFeed struct {
	published chan Activity
	err       error
}

func (c *captureFeed) Publish(ctx context.Context, a Activity) error {
	if c.err != nil {
		return c.err
	}
	c.published <- a
	return nil
}

func TestRecorderAssignsIdentity(t *testing.T) {
	store := &captureActivityStore{}
	rec := NewRecorder(store, nil, log.New())
	defer rec.Close()

	rec.Record(context.Background(), Activity{
		WorkspaceID: "w-1",
		Type:        ActivityWorkspaceCreated,
		Actor:       "u1",
		Payload:     WorkspaceCreatedPayload{Title: "Eng"},
	})

	if len(store.inserted) != 1 {
		t.Fatalf("expected one record, got %d", len(store.inserted))
	}
	a := store.inserted[0]
	if !strings.HasPrefix(a.ActivityID, "a-") {
		t.Fatalf("expected assigned activity id, got %q", a.ActivityID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be assigned at write time")
	}
	if a.Payload.ActivityType() != ActivityWorkspaceCreated {
		t.Fatalf("payload/type disagree: %s", a.Payload.ActivityType())
	}
}

func TestRecorderSkipsIncompleteRecords(t *testing.T) {
	store := &captureActivityStore{}
	rec := NewRecorder(store, nil, log.New())
	defer rec.Close()

	rec.Record(context.Background(), Activity{Type: ActivityWorkspaceCreated, Actor: "u1"})
	rec.Record(context.Background(), Activity{WorkspaceID: "w-1", Actor: "u1"})
	rec.Record(context.Background(), Activity{WorkspaceID: "w-1", Type: ActivityWorkspaceCreated})

	if len(store.inserted) != 0 {
		t.Fatalf("expected incomplete records to be dropped, got %d", len(store.inserted))
	}
}

func TestRecorderInsertFailureIsSwallowed(t *testing.T) {
	store := &captureActivityStore{insertErr: errors.New("table down")}
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(store, nil, logger)
	defer rec.Close()

	rec.Record(context.Background(), Activity{
		WorkspaceID: "w-1",
		Type:        ActivityWorkspaceCreated,
		Actor:       "u1",
	})

	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.ErrorLevel {
		t.Fatalf("expected error log for failed append, got %+v", entry)
	}
}

func TestRecorderPublishesToFeed(t *testing.T) {
	store := &captureActivityStore{}
	feed := &captureFeed{published: make(chan Activity, 1)}
	rec := NewRecorder(store, feed, log.New())

	rec.Record(context.Background(), Activity{
		WorkspaceID: "w-1",
		Type:        ActivityBoardCreated,
		Actor:       "u1",
		BoardID:     "b-1",
	})

	select {
	case a := <-feed.published:
		if a.BoardID != "b-1" || a.Type != ActivityBoardCreated {
			t.Fatalf("unexpected published record: %+v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected feed publish")
	}
	rec.Close()
}

func TestRecorderFeedFailureDoesNotBlock(t *testing.T) {
	store := &captureActivityStore{}
	feed := &captureFeed{err: errors.New("queue down"), published: make(chan Activity)}
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(store, feed, logger)

	rec.Record(context.Background(), Activity{
		WorkspaceID: "w-1",
		Type:        ActivityBoardCreated,
		Actor:       "u1",
	})
	rec.Close()

	if len(store.inserted) != 1 {
		t.Fatalf("expected record persisted despite feed failure, got %d", len(store.inserted))
	}
	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.ErrorLevel && strings.Contains(e.Message, "feed publish") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected feed publish failure to be logged")
	}
}
