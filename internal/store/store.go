// Package store holds the task repository: the single writer over the task
// and project collections. Every mutation persists the whole affected
// collection to the backing key-value store as one unit; there are no
// row-level writes. Two processes sharing a backing store reconcile only by
// re-reading it (last write wins, no merge) — the same discipline as two
// browser tabs sharing local storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/taskdesk/taskdesk/internal/kv"
	"github.com/taskdesk/taskdesk/internal/model"
	"github.com/taskdesk/taskdesk/internal/stats"
)

// Keys under which the collections are persisted.
const (
	tasksKey    = "tasks"
	projectsKey = "projects"
)

// DefaultProjectName is the name given to the auto-created default project.
const DefaultProjectName = "Inbox"

// Sentinel errors returned across the repository boundary. Failures are
// always explicit values; the repository never panics past its boundary.
var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyTitle     = errors.New("task title must not be empty")
	ErrEmptyName      = errors.New("project name must not be empty")
	ErrDefaultProject = errors.New("the default project cannot be deleted")
)

// Repository owns the canonical task and project collections.
// Construct it explicitly with New and pass it by reference; there is no
// package-level instance.
type Repository struct {
	mu          sync.Mutex
	kv          kv.Store
	now         func() time.Time
	defaultName string

	tasks    []model.Task
	projects []model.Project

	obsMu     sync.Mutex
	observers map[int]func()
	nextObs   int
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the repository's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithDefaultProjectName overrides the name of the auto-created default
// project.
func WithDefaultProjectName(name string) Option {
	return func(r *Repository) { r.defaultName = name }
}

// New builds a repository over the given backing store and loads both
// collections. A failed or absent task read falls back to an empty
// collection; a failed or absent project read falls back to a freshly
// created default project, persisted immediately so the fallback is durable.
func New(s kv.Store, opts ...Option) *Repository {
	r := &Repository{
		kv:          s,
		now:         func() time.Time { return time.Now().UTC() },
		defaultName: DefaultProjectName,
		observers:   make(map[int]func()),
	}
	for _, o := range opts {
		o(r)
	}
	r.mu.Lock()
	_ = r.loadLocked()
	r.mu.Unlock()
	return r
}

// Close releases the backing store.
func (r *Repository) Close() error {
	return r.kv.Close()
}

// loadLocked reads both collections from the backing store, falling back as
// documented on New. It returns the first read error encountered; the
// fallback state is installed either way.
func (r *Repository) loadLocked() error {
	var firstErr error

	r.tasks = nil
	if data, ok, err := r.kv.Read(tasksKey); err != nil {
		firstErr = fmt.Errorf("reading tasks: %w", err)
	} else if ok {
		var tasks []model.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			firstErr = fmt.Errorf("decoding tasks: %w", err)
		} else {
			r.tasks = tasks
		}
	}

	r.projects = nil
	if data, ok, err := r.kv.Read(projectsKey); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("reading projects: %w", err)
		}
	} else if ok {
		var projects []model.Project
		if err := json.Unmarshal(data, &projects); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("decoding projects: %w", err)
			}
		} else {
			r.projects = projects
		}
	}

	r.ensureDefaultLocked()
	return firstErr
}

// Reload re-reads both collections from the backing store and notifies
// observers. Calling it after this process's own write is a semantic no-op.
func (r *Repository) Reload() error {
	r.mu.Lock()
	err := r.loadLocked()
	r.mu.Unlock()
	r.notify()
	return err
}

// Subscribe registers an observer invoked after the persisted collections
// change externally (via Watch) or after an explicit Reload. The returned
// function unregisters it.
func (r *Repository) Subscribe(fn func()) func() {
	r.obsMu.Lock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	r.obsMu.Unlock()
	return func() {
		r.obsMu.Lock()
		delete(r.observers, id)
		r.obsMu.Unlock()
	}
}

// Watch wires the backing store's external-change notifications to Reload.
// It returns kv.ErrNotWatchable when the store cannot report changes.
func (r *Repository) Watch() (stop func(), err error) {
	w, ok := r.kv.(kv.Watcher)
	if !ok {
		return nil, kv.ErrNotWatchable
	}
	return w.Watch(func(string) { _ = r.Reload() })
}

func (r *Repository) notify() {
	r.obsMu.Lock()
	fns := make([]func(), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// persistTasksLocked writes the whole task collection. On failure the
// in-memory state is kept as-is; the caller surfaces the error and the
// divergence is reconciled by Reload.
func (r *Repository) persistTasksLocked() error {
	data, err := json.Marshal(r.tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if err := r.kv.Write(tasksKey, data); err != nil {
		return fmt.Errorf("persisting tasks: %w", err)
	}
	return nil
}

func (r *Repository) persistProjectsLocked() error {
	data, err := json.Marshal(r.projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}
	if err := r.kv.Write(projectsKey, data); err != nil {
		return fmt.Errorf("persisting projects: %w", err)
	}
	return nil
}

// TaskStats recomputes aggregate counts over the current task collection.
// An empty projectID means global scope. Overdue here compares exact
// instants; the filter engine's overdue bucket compares calendar days.
func (r *Repository) TaskStats(projectID string) stats.Stats {
	r.mu.Lock()
	tasks := make([]model.Task, len(r.tasks))
	copy(tasks, r.tasks)
	now := r.now()
	r.mu.Unlock()

	if projectID == "" {
		return stats.Compute(tasks, now)
	}
	return stats.ComputeForProject(tasks, projectID, now)
}
