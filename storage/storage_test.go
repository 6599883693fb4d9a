package storage

import (
	"encoding/json"
	"testing"
	"time"

	"boardhub-api/domain"
)

func TestTaskEntityCodec(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := domain.Task{
		TaskID:      "t-1",
		Title:       "Ship login",
		Description: "OAuth flow",
		Members:     []string{"u1", "u2"},
		Labels:      []string{"auth"},
		BoardID:     "b-1",
		BoardListID: "bl-1",
		WorkspaceID: "w-1",
		CreatedBy:   "u1",
		CreatedAt:   created,
	}

	data, err := encodeTask(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("inspect entity: %v", err)
	}
	if raw["PartitionKey"] != "w-1" || raw["RowKey"] != "t-1" {
		t.Fatalf("unexpected keys: %v / %v", raw["PartitionKey"], raw["RowKey"])
	}
	if _, ok := raw["Members"].(string); !ok {
		t.Fatalf("expected Members stored as a JSON string, got %T", raw["Members"])
	}

	out, _, err := decodeTask(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TaskID != in.TaskID || out.WorkspaceID != in.WorkspaceID || out.BoardID != in.BoardID || out.BoardListID != in.BoardListID {
		t.Fatalf("identifiers did not survive: %+v", out)
	}
	if len(out.Members) != 2 || out.Members[0] != "u1" || len(out.Labels) != 1 {
		t.Fatalf("sets did not survive: %+v", out)
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("unexpected CreatedAt: %v", out.CreatedAt)
	}
}

func TestDecodeWorkspaceExtractsETag(t *testing.T) {
	raw := []byte(`{
		"odata.etag": "W/\"datetime'2026-01-02T03%3A04%3A05Z'\"",
		"PartitionKey": "w-1",
		"RowKey": "w-1",
		"Title": "Ops",
		"CreatedBy": "u1",
		"Members": "[\"u1\",\"u2\"]",
		"CreatedAt": "2026-01-02T03:04:05Z"
	}`)

	ws, etag, err := decodeWorkspace(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if etag == "" {
		t.Fatal("expected an etag")
	}
	if ws.WorkspaceID != "w-1" || ws.CreatedBy != "u1" {
		t.Fatalf("unexpected workspace: %+v", ws)
	}
	if len(ws.Members) != 2 {
		t.Fatalf("unexpected members: %+v", ws.Members)
	}
}

func TestDecodeWorkspaceToleratesMissingMembers(t *testing.T) {
	raw := []byte(`{"PartitionKey":"w-1","RowKey":"w-1","Title":"Ops","CreatedBy":"u1"}`)
	ws, _, err := decodeWorkspace(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ws.Members == nil || len(ws.Members) != 0 {
		t.Fatalf("expected empty member set, got %#v", ws.Members)
	}
}

func TestEscapeODataString(t *testing.T) {
	if got := escapeODataString("it's"); got != "it''s" {
		t.Fatalf("unexpected escape: %q", got)
	}
}
