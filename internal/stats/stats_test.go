package stats

import (
	"testing"
	"time"

	"github.com/taskdesk/taskdesk/internal/model"
)

var now = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestComputeScenario(t *testing.T) {
	// 5 tasks: 3 completed, 1 overdue-incomplete, 2 high-priority-incomplete
	// (the overdue one is also high priority).
	tasks := []model.Task{
		{Title: "a", Completed: true, Status: model.StatusCompleted, Priority: model.PriorityLow},
		{Title: "b", Completed: true, Status: model.StatusCompleted, Priority: model.PriorityMedium},
		{Title: "c", Completed: true, Status: model.StatusCompleted, Priority: model.PriorityHigh},
		{Title: "d", Priority: model.PriorityHigh, DueDate: at(-24 * time.Hour)},
		{Title: "e", Priority: model.PriorityHigh},
	}

	got := Compute(tasks, now)
	want := Stats{Total: 5, Completed: 3, Pending: 2, Overdue: 1, HighPriority: 2}
	if got != want {
		t.Errorf("Compute = %+v, want %+v", got, want)
	}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, now); got != (Stats{}) {
		t.Errorf("Compute(nil) = %+v, want zero", got)
	}
}

func TestCompletedHighPriorityNotCounted(t *testing.T) {
	tasks := []model.Task{
		{Title: "a", Completed: true, Status: model.StatusCompleted, Priority: model.PriorityHigh},
	}
	if got := Compute(tasks, now).HighPriority; got != 0 {
		t.Errorf("HighPriority = %d, want 0", got)
	}
}

func TestOverdueComparesExactInstant(t *testing.T) {
	cases := []struct {
		name string
		task model.Task
		want bool
	}{
		{"one second past", model.Task{DueDate: at(-time.Second)}, true},
		{"exactly now", model.Task{DueDate: at(0)}, false},
		{"later today", model.Task{DueDate: at(time.Hour)}, false},
		{"past but completed", model.Task{DueDate: at(-time.Hour), Completed: true}, false},
		{"no due date", model.Task{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOverdueByInstant(tc.task, now); got != tc.want {
				t.Errorf("IsOverdueByInstant = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComputeForProject(t *testing.T) {
	tasks := []model.Task{
		{Title: "a", ProjectID: "p1", Completed: true, Status: model.StatusCompleted},
		{Title: "b", ProjectID: "p1", Priority: model.PriorityHigh},
		{Title: "c", ProjectID: "p2", Priority: model.PriorityHigh},
	}

	got := ComputeForProject(tasks, "p1", now)
	want := Stats{Total: 2, Completed: 1, Pending: 1, HighPriority: 1}
	if got != want {
		t.Errorf("ComputeForProject = %+v, want %+v", got, want)
	}

	if got := ComputeForProject(tasks, "absent", now); got != (Stats{}) {
		t.Errorf("unknown project = %+v, want zero", got)
	}
}
