// Package query is the pure filter/sort engine: a deterministic function
// from a task snapshot, a filter, and a sort to the visible ordered subset.
// It never mutates its input and holds no state, so it is safe to re-run on
// every read.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk/internal/model"
)

// All matches every value on a filter dimension. An empty string means the
// same thing, so a zero-value Filter is an identity pass-through.
const All = "all"

// Due-date buckets, evaluated against calendar days computed from "now" at
// call time. A task with no due date matches only DueNone.
const (
	DueAll      = "all"
	DueToday    = "today"
	DueTomorrow = "tomorrow"
	DueThisWeek = "thisWeek"
	DueNextWeek = "nextWeek"
	DueOverdue  = "overdue"
	DueNone     = "noDueDate"
)

// Sort keys.
const (
	SortCreatedDate = "createdDate"
	SortUpdatedDate = "updatedDate"
	SortDueDate     = "dueDate"
	SortTitle       = "title"
	SortPriority    = "priority"
	SortStatus      = "status"
)

// Filter is a conjunctive set of independently optional constraints.
// Empty/All fields constrain nothing; the zero value passes every task.
// HideCompleted corresponds to the UI's "show completed" toggle being off;
// it stacks with the Status dimension rather than replacing it.
type Filter struct {
	Query         string
	Status        string
	Priority      string
	ProjectID     string
	HideCompleted bool
	Due           string
	Tags          []string // OR semantics: any shared tag matches
}

// Sort selects the single active ordering key and direction.
type Sort struct {
	Key        string
	Descending bool
}

// Apply filters tasks through f and orders the survivors by s. The input
// slice is never modified; ties keep their relative input order.
func Apply(tasks []model.Task, f Filter, s Sort, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f, now) {
			out = append(out, t)
		}
	}
	sortTasks(out, s)
	return out
}

// Matches reports whether a single task passes every constraint in f.
func Matches(t model.Task, f Filter, now time.Time) bool {
	if q := strings.TrimSpace(f.Query); q != "" && !t.MatchesQuery(q) {
		return false
	}
	if constrained(f.Status) && t.Status != f.Status {
		return false
	}
	if constrained(f.Priority) && t.Priority != f.Priority {
		return false
	}
	if constrained(f.ProjectID) && t.ProjectID != f.ProjectID {
		return false
	}
	if f.HideCompleted && t.Completed {
		return false
	}
	if !matchesDue(t, f.Due, now) {
		return false
	}
	if len(f.Tags) > 0 && !sharesTag(t, f.Tags) {
		return false
	}
	return true
}

func constrained(v string) bool {
	return v != "" && v != All
}

func sharesTag(t model.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// IsOverdueByDay reports whether the task's due date falls on a calendar day
// strictly before today and the task is not completed. This is the filter
// engine's overdue convention; the statistics aggregator compares exact
// instants instead (stats.IsOverdueByInstant).
func IsOverdueByDay(t model.Task, now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return startOfDay(*t.DueDate).Before(startOfDay(now))
}

func matchesDue(t model.Task, bucket string, now time.Time) bool {
	switch bucket {
	case "", DueAll:
		return true
	case DueNone:
		return t.DueDate == nil
	case DueOverdue:
		return IsOverdueByDay(t, now)
	}

	if t.DueDate == nil {
		return false
	}
	due := startOfDay(*t.DueDate)
	today := startOfDay(now)
	// Week runs through the upcoming Sunday-relative boundary:
	// today + (7 - weekday), with Sunday as weekday 0.
	weekEnd := today.AddDate(0, 0, 7-int(now.Weekday()))

	switch bucket {
	case DueToday:
		return due.Equal(today)
	case DueTomorrow:
		return due.Equal(today.AddDate(0, 0, 1))
	case DueThisWeek:
		return !due.Before(today) && !due.After(weekEnd)
	case DueNextWeek:
		return due.After(weekEnd) && !due.After(weekEnd.AddDate(0, 0, 7))
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sortTasks(tasks []model.Task, s Sort) {
	if s.Key == "" {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compare(tasks[i], tasks[j], s.Key)
		if s.Descending {
			c = -c
		}
		return c < 0
	})
}

func compare(a, b model.Task, key string) int {
	switch key {
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortCreatedDate:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortUpdatedDate:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortDueDate:
		return compareDue(a.DueDate, b.DueDate)
	case SortPriority:
		return model.PriorityWeight[a.Priority] - model.PriorityWeight[b.Priority]
	case SortStatus:
		return model.StatusWeight[a.Status] - model.StatusWeight[b.Status]
	default:
		return 0
	}
}

// compareDue treats a missing due date as infinitely late, so undated tasks
// land last in ascending order.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
