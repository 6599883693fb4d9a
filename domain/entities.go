package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the top-level collaboration container. CreatedBy owns it and
// is always present in Members at creation time.
type Workspace struct {
	WorkspaceID string    `json:"workspaceId"`
	Title       string    `json:"title"`
	CreatedBy   string    `json:"createdBy"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Visibility controls who may see a board.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Board is a named container of lists, scoped to one workspace.
type Board struct {
	BoardID     string     `json:"boardId"`
	Title       string     `json:"title"`
	WorkspaceID string     `json:"workspaceId"`
	Visibility  Visibility `json:"visibility"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// BoardList is a column of tasks, scoped to one board.
type BoardList struct {
	BoardListID string    `json:"boardListId"`
	Title       string    `json:"title"`
	BoardID     string    `json:"boardId"`
	WorkspaceID string    `json:"workspaceId"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task is a unit of work. Members and Labels carry set semantics: order is
// irrelevant and the exposed update operations only grow them.
type Task struct {
	TaskID      string    `json:"taskId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Members     []string  `json:"members"`
	Labels      []string  `json:"labels"`
	BoardID     string    `json:"boardId"`
	BoardListID string    `json:"boardListId"`
	WorkspaceID string    `json:"workspaceId"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newWorkspaceID() string { return "w-" + uuid.NewString() }
func newBoardID() string     { return "b-" + uuid.NewString() }
func newBoardListID() string { return "bl-" + uuid.NewString() }
func newTaskID() string      { return "t-" + uuid.NewString() }
func newActivityID() string  { return "a-" + uuid.NewString() }

// ContainsString reports whether v is present in set.
func ContainsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// UnionStrings appends the values missing from set, preserving existing order.
// Duplicate additions are no-ops, which makes the task/workspace set updates
// idempotent.
func UnionStrings(set []string, values []string) []string {
	out := set
	for _, v := range values {
		if !ContainsString(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// RemoveString returns set without the first occurrence of v, reporting
// whether it was present.
func RemoveString(set []string, v string) ([]string, bool) {
	for i, s := range set {
		if s == v {
			return append(set[:i:i], set[i+1:]...), true
		}
	}
	return set, false
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	return UnionStrings(out, values)
}
