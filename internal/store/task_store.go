package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/internal/model"
)

// CreateTask validates the input, assigns a fresh id and timestamps, and
// appends the task. A blank title is rejected with ErrEmptyTitle. An absent
// or stale project reference resolves to the default project. On a persist
// failure the task is still returned alongside the error (the in-memory
// collection keeps it; see Reload).
func (r *Repository) CreateTask(in model.TaskInput) (*model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrEmptyTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	priority := in.Priority
	if !model.ValidPriority(priority) {
		priority = model.PriorityMedium
	}
	projectID, _ := r.resolveProjectLocked(in.ProjectID)

	t := model.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		Status:      model.StatusTodo,
		Priority:    priority,
		ProjectID:   projectID,
		DueDate:     cloneTime(in.DueDate),
		Tags:        cloneTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.tasks = append(r.tasks, t)

	out := cloneTask(t)
	if err := r.persistTasksLocked(); err != nil {
		return &out, err
	}
	return &out, nil
}

// UpdateTask merges the set fields of patch into the task, refreshes
// UpdatedAt, and re-validates the project reference the same way CreateTask
// does. Returns ErrNotFound for an unknown id.
func (r *Repository) UpdateTask(id string, patch model.TaskPatch) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findTaskLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	t := &r.tasks[idx]

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, ErrEmptyTitle
		}
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		if model.ValidPriority(*patch.Priority) {
			t.Priority = *patch.Priority
		} else {
			t.Priority = model.PriorityMedium
		}
	}
	if patch.Status != nil && model.ValidStatus(*patch.Status) {
		t.Status = *patch.Status
		t.Completed = t.Status == model.StatusCompleted
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
		if t.Completed {
			t.Status = model.StatusCompleted
		} else if t.Status == model.StatusCompleted {
			t.Status = model.StatusTodo
		}
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	if patch.DueDate != nil {
		t.DueDate = cloneTime(patch.DueDate)
	}
	if patch.ClearDueDate {
		t.DueDate = nil
	}
	if patch.Tags != nil {
		t.Tags = cloneTags(patch.Tags)
	}

	// Stale references fall back to the default project regardless of
	// whether the patch touched the field.
	t.ProjectID, _ = r.resolveProjectLocked(t.ProjectID)
	t.UpdatedAt = r.now()

	out := cloneTask(*t)
	if err := r.persistTasksLocked(); err != nil {
		return &out, err
	}
	return &out, nil
}

// ToggleTask flips the task's completion state, keeping status consistent.
func (r *Repository) ToggleTask(id string) (*model.Task, error) {
	r.mu.Lock()
	idx := r.findTaskLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	next := !r.tasks[idx].Completed
	r.mu.Unlock()

	return r.UpdateTask(id, model.TaskPatch{Completed: &next})
}

// DeleteTask removes the task if present. It reports false, without error,
// for an unknown id.
func (r *Repository) DeleteTask(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findTaskLocked(id)
	if idx < 0 {
		return false, nil
	}
	r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	return true, r.persistTasksLocked()
}

// ClearCompletedTasks removes every completed task and returns how many
// were removed.
func (r *Repository) ClearCompletedTasks() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tasks[:0]
	removed := 0
	for _, t := range r.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return 0, nil
	}
	r.tasks = kept
	return removed, r.persistTasksLocked()
}

// Task returns a copy of the task with the given id.
func (r *Repository) Task(id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findTaskLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := cloneTask(r.tasks[idx])
	return &out, nil
}

// Tasks returns a read-only snapshot of the task collection in insertion
// order.
func (r *Repository) Tasks() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func (r *Repository) findTaskLocked(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTask(t model.Task) model.Task {
	t.DueDate = cloneTime(t.DueDate)
	t.Tags = cloneTags(t.Tags)
	return t
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
