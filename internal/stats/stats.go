// Package stats computes aggregate counts over a task collection. Counts
// are recomputed on demand from the latest snapshot rather than maintained
// incrementally, so they can never drift from repository state.
package stats

import (
	"time"

	"github.com/taskdesk/taskdesk/internal/model"
)

// Stats is the summary of a task collection at a point in time.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	Overdue      int `json:"overdue"`
	HighPriority int `json:"high_priority"`
}

// Compute aggregates over the whole collection.
func Compute(tasks []model.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if IsOverdueByInstant(t, now) {
			s.Overdue++
		}
		if t.Priority == model.PriorityHigh && !t.Completed {
			s.HighPriority++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// ComputeForProject aggregates over the tasks belonging to one project.
func ComputeForProject(tasks []model.Task, projectID string, now time.Time) Stats {
	scoped := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID == projectID {
			scoped = append(scoped, t)
		}
	}
	return Compute(scoped, now)
}

// IsOverdueByInstant reports whether the task's due date lies strictly
// before now (exact timestamp) and the task is not completed. The filter
// engine's overdue bucket uses calendar days instead (query.IsOverdueByDay);
// the two conventions are deliberately kept apart.
func IsOverdueByInstant(t model.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}
