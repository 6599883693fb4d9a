package domain

import (
	"context"
	"errors"
	"time"
)

// TaskService owns task lifecycle. Every mutation passes through the
// workspace Authorize predicate; updates are conditioned on the full
// identifier tuple so a mismatched scope is rejected rather than silently
// corrected.
type TaskService struct {
	store      TaskStore
	workspaces workspaceDirectory
}

func NewTaskService(store TaskStore, workspaces workspaceDirectory) *TaskService {
	return &TaskService{store: store, workspaces: workspaces}
}

// CreateTaskInput carries the fields for task creation. Members and Labels
// default to empty sets.
type CreateTaskInput struct {
	Title       string
	Description string
	Members     []string
	Labels      []string
	BoardID     string
	BoardListID string
	WorkspaceID string
	CreatedBy   string
}

func (s *TaskService) authorize(ctx context.Context, workspaceID, userID, action string) error {
	ok, err := s.workspaces.Authorize(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return unauthorized("not authorized to " + action)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (Task, error) {
	if in.Title == "" || in.BoardID == "" || in.BoardListID == "" || in.WorkspaceID == "" || in.CreatedBy == "" {
		return Task{}, invalidInput("missing required fields")
	}
	if err := s.authorize(ctx, in.WorkspaceID, in.CreatedBy, "create a task"); err != nil {
		return Task{}, err
	}
	t := Task{
		TaskID:      newTaskID(),
		Title:       in.Title,
		Description: in.Description,
		Members:     uniqueStrings(in.Members),
		Labels:      uniqueStrings(in.Labels),
		BoardID:     in.BoardID,
		BoardListID: in.BoardListID,
		WorkspaceID: in.WorkspaceID,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return Task{}, internal(err, "create task")
	}
	return t, nil
}

// ListByBoard returns the tasks under a board. Reads are not membership
// gated.
func (s *TaskService) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]Task, error) {
	if workspaceID == "" || boardID == "" {
		return nil, invalidInput("missing required fields")
	}
	tasks, err := s.store.ListByBoard(ctx, workspaceID, boardID)
	if err != nil {
		return nil, internal(err, "list tasks")
	}
	return tasks, nil
}

// Get returns the task, or nil when absent.
func (s *TaskService) Get(ctx context.Context, taskID string) (*Task, error) {
	if taskID == "" {
		return nil, invalidInput("task id is required")
	}
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, internal(err, "get task")
	}
	return t, nil
}

// Delete removes the task by id alone; the workspace argument feeds the
// authorization check, not the storage filter.
func (s *TaskService) Delete(ctx context.Context, taskID, workspaceID, createdBy string) (bool, error) {
	if taskID == "" || workspaceID == "" || createdBy == "" {
		return false, invalidInput("missing required fields")
	}
	if err := s.authorize(ctx, workspaceID, createdBy, "delete this task"); err != nil {
		return false, err
	}
	removed, err := s.store.Delete(ctx, taskID)
	if err != nil {
		return false, internal(err, "delete task")
	}
	return removed != nil, nil
}

// update runs one conditional task mutation and classifies a filter miss:
// an absent task is not-found, an existing task whose stored identifiers
// disagree with the supplied scope is a scope mismatch.
func (s *TaskService) update(ctx context.Context, scope TaskScope, change TaskChange, createdBy, action string) (Task, error) {
	if createdBy == "" {
		return Task{}, invalidInput("missing required fields")
	}
	if scope.TaskID == "" || scope.WorkspaceID == "" || scope.BoardID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	if err := s.authorize(ctx, scope.WorkspaceID, createdBy, action); err != nil {
		return Task{}, err
	}
	t, err := s.store.Update(ctx, scope, change)
	if err != nil {
		if errors.Is(err, ErrNotMatched) {
			return Task{}, s.classifyMiss(ctx, scope.TaskID)
		}
		return Task{}, internal(err, "update task")
	}
	return *t, nil
}

func (s *TaskService) classifyMiss(ctx context.Context, taskID string) error {
	existing, err := s.store.Get(ctx, taskID)
	if err != nil {
		return internal(err, "update task")
	}
	if existing == nil {
		return notFound("task not found")
	}
	return scopeMismatch("task identifiers do not match")
}

func (s *TaskService) Rename(ctx context.Context, scope TaskScope, title, createdBy string) (Task, error) {
	if title == "" || scope.BoardListID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	return s.update(ctx, scope, TaskChange{Title: &title}, createdBy, "rename this task")
}

func (s *TaskService) UpdateDescription(ctx context.Context, scope TaskScope, description, createdBy string) (Task, error) {
	if scope.BoardListID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	return s.update(ctx, scope, TaskChange{Description: &description}, createdBy, "update this task")
}

// AddMembers unions members into the task's assignee set.
func (s *TaskService) AddMembers(ctx context.Context, scope TaskScope, members []string, createdBy string) (Task, error) {
	if len(members) == 0 || scope.BoardListID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	return s.update(ctx, scope, TaskChange{AddMembers: uniqueStrings(members)}, createdBy, "update this task")
}

// AddLabels unions labels into the task's label set.
func (s *TaskService) AddLabels(ctx context.Context, scope TaskScope, labels []string, createdBy string) (Task, error) {
	if len(labels) == 0 || scope.BoardListID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	return s.update(ctx, scope, TaskChange{AddLabels: uniqueStrings(labels)}, createdBy, "update this task")
}

// Move relocates the task to another list under the same board. The filter
// drops boardListId since that is the field being changed.
func (s *TaskService) Move(ctx context.Context, taskID, workspaceID, boardID, newListID, createdBy string) (Task, error) {
	if newListID == "" {
		return Task{}, invalidInput("missing required fields")
	}
	scope := TaskScope{TaskID: taskID, WorkspaceID: workspaceID, BoardID: boardID}
	return s.update(ctx, scope, TaskChange{BoardListID: &newListID}, createdBy, "update this task")
}
