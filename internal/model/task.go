package model

import (
	"strings"
	"time"
)

// Task status constants.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// PriorityWeight maps a priority to its ordinal rank (higher = more urgent).
var PriorityWeight = map[string]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// StatusWeight maps a status to its ordinal rank in the workflow.
var StatusWeight = map[string]int{
	StatusTodo:       1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	_, ok := StatusWeight[s]
	return ok
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	_, ok := PriorityWeight[p]
	return ok
}

// Task is a user-tracked to-do item.
//
// Completed and Status are kept consistent by the repository:
// Completed is true exactly when Status is StatusCompleted.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"project_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasTag reports whether the task carries the given tag (exact match).
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// MatchesQuery reports whether the query appears, case-insensitively, in the
// task's title, description, or any of its tags.
func (t Task) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// TaskInput holds the caller-provided fields for creating a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// TaskPatch is a partial update: nil fields are left unchanged.
// Setting Status reconciles Completed and vice versa; when both are
// provided, Completed wins.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Completed    *bool
	Priority     *string
	ProjectID    *string
	DueDate      *time.Time
	ClearDueDate bool
	Tags         []string // non-nil replaces the tag set
}
