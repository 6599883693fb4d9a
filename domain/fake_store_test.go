package domain

import (
	"context"
	"sync"
)

type fakeRecorder struct {
	mu         sync.Mutex
	activities []Activity
}

func (f *fakeRecorder) Record(ctx context.Context, a Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, a)
}

func (f *fakeRecorder) last() *Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.activities) == 0 {
		return nil
	}
	a := f.activities[len(f.activities)-1]
	return &a
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.activities)
}

type fakeWorkspaceStore struct {
	workspaces map[string]Workspace
	insertErr  error
	getErr     error
}

func newFakeWorkspaceStore() *fakeWorkspaceStore {
	return &fakeWorkspaceStore{workspaces: map[string]Workspace{}}
}

func (f *fakeWorkspaceStore) Insert(ctx context.Context, ws Workspace) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.workspaces[ws.WorkspaceID] = ws
	return nil
}

func (f *fakeWorkspaceStore) Get(ctx context.Context, workspaceID string) (*Workspace, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	ws, ok := f.workspaces[workspaceID]
	if !ok {
		return nil, nil
	}
	return &ws, nil
}

func (f *fakeWorkspaceStore) List(ctx context.Context) ([]Workspace, error) {
	out := make([]Workspace, 0, len(f.workspaces))
	for _, ws := range f.workspaces {
		out = append(out, ws)
	}
	return out, nil
}

func (f *fakeWorkspaceStore) Rename(ctx context.Context, workspaceID, owner, title string) (*Workspace, error) {
	ws, ok := f.workspaces[workspaceID]
	if !ok || ws.CreatedBy != owner {
		return nil, ErrNotMatched
	}
	ws.Title = title
	f.workspaces[workspaceID] = ws
	return &ws, nil
}

func (f *fakeWorkspaceStore) AddMembers(ctx context.Context, workspaceID, owner string, members []string) (*Workspace, error) {
	ws, ok := f.workspaces[workspaceID]
	if !ok || ws.CreatedBy != owner {
		return nil, ErrNotMatched
	}
	ws.Members = UnionStrings(ws.Members, members)
	f.workspaces[workspaceID] = ws
	return &ws, nil
}

func (f *fakeWorkspaceStore) RemoveMember(ctx context.Context, workspaceID, owner, member string) error {
	ws, ok := f.workspaces[workspaceID]
	if !ok || ws.CreatedBy != owner {
		return ErrNotMatched
	}
	members, removed := RemoveString(ws.Members, member)
	if !removed {
		return ErrNotMatched
	}
	ws.Members = members
	f.workspaces[workspaceID] = ws
	return nil
}

func (f *fakeWorkspaceStore) TransferOwner(ctx context.Context, workspaceID, owner, newOwner string) error {
	ws, ok := f.workspaces[workspaceID]
	if !ok || ws.CreatedBy != owner || !ContainsString(ws.Members, newOwner) {
		return ErrNotMatched
	}
	ws.CreatedBy = newOwner
	f.workspaces[workspaceID] = ws
	return nil
}

func (f *fakeWorkspaceStore) Delete(ctx context.Context, workspaceID, owner string) (bool, error) {
	ws, ok := f.workspaces[workspaceID]
	if !ok || ws.CreatedBy != owner {
		return false, nil
	}
	delete(f.workspaces, workspaceID)
	return true, nil
}

type fakeBoardStore struct {
	boards    map[string]Board
	insertErr error
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{boards: map[string]Board{}}
}

func (f *fakeBoardStore) Insert(ctx context.Context, b Board) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.boards[b.BoardID] = b
	return nil
}

func (f *fakeBoardStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]Board, error) {
	out := []Board{}
	for _, b := range f.boards {
		if b.WorkspaceID == workspaceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBoardStore) Get(ctx context.Context, workspaceID, boardID string) (*Board, error) {
	b, ok := f.boards[boardID]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBoardStore) Rename(ctx context.Context, workspaceID, boardID, owner, title string) (*Board, error) {
	b, ok := f.boards[boardID]
	if !ok || b.WorkspaceID != workspaceID || b.CreatedBy != owner {
		return nil, ErrNotMatched
	}
	b.Title = title
	f.boards[boardID] = b
	return &b, nil
}

func (f *fakeBoardStore) SetVisibility(ctx context.Context, workspaceID, boardID, owner string, v Visibility) (*Board, error) {
	b, ok := f.boards[boardID]
	if !ok || b.WorkspaceID != workspaceID || b.CreatedBy != owner {
		return nil, ErrNotMatched
	}
	b.Visibility = v
	f.boards[boardID] = b
	return &b, nil
}

func (f *fakeBoardStore) Delete(ctx context.Context, workspaceID, boardID, owner string) (bool, error) {
	b, ok := f.boards[boardID]
	if !ok || b.WorkspaceID != workspaceID || b.CreatedBy != owner {
		return false, nil
	}
	delete(f.boards, boardID)
	return true, nil
}

type fakeBoardListStore struct {
	lists map[string]BoardList
}

func newFakeBoardListStore() *fakeBoardListStore {
	return &fakeBoardListStore{lists: map[string]BoardList{}}
}

func (f *fakeBoardListStore) Insert(ctx context.Context, l BoardList) error {
	f.lists[l.BoardListID] = l
	return nil
}

func (f *fakeBoardListStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]BoardList, error) {
	out := []BoardList{}
	for _, l := range f.lists {
		if l.WorkspaceID == workspaceID && l.BoardID == boardID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeBoardListStore) Rename(ctx context.Context, workspaceID, boardID, boardListID, title string) (*BoardList, error) {
	l, ok := f.lists[boardListID]
	if !ok || l.WorkspaceID != workspaceID || l.BoardID != boardID {
		return nil, ErrNotMatched
	}
	l.Title = title
	f.lists[boardListID] = l
	return &l, nil
}

func (f *fakeBoardListStore) Delete(ctx context.Context, workspaceID, boardID, boardListID string) (bool, error) {
	l, ok := f.lists[boardListID]
	if !ok || l.WorkspaceID != workspaceID || l.BoardID != boardID {
		return false, nil
	}
	delete(f.lists, boardListID)
	return true, nil
}

type fakeTaskStore struct {
	tasks map[string]Task
	calls int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]Task{}}
}

func (f *fakeTaskStore) Insert(ctx context.Context, t Task) error {
	f.calls++
	f.tasks[t.TaskID] = t
	return nil
}

func (f *fakeTaskStore) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]Task, error) {
	f.calls++
	out := []Task{}
	for _, t := range f.tasks {
		if t.WorkspaceID == workspaceID && t.BoardID == boardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Get(ctx context.Context, taskID string) (*Task, error) {
	f.calls++
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, scope TaskScope, change TaskChange) (*Task, error) {
	f.calls++
	t, ok := f.tasks[scope.TaskID]
	if !ok || t.WorkspaceID != scope.WorkspaceID || t.BoardID != scope.BoardID {
		return nil, ErrNotMatched
	}
	if scope.BoardListID != "" && t.BoardListID != scope.BoardListID {
		return nil, ErrNotMatched
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
	t.Members = UnionStrings(t.Members, change.AddMembers)
	t.Labels = UnionStrings(t.Labels, change.AddLabels)
	f.tasks[scope.TaskID] = t
	return &t, nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, taskID string) (*Task, error) {
	f.calls++
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, nil
	}
	delete(f.tasks, taskID)
	return &t, nil
}
