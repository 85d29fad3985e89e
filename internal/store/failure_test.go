package store_test

import (
	"errors"
	"testing"

	"github.com/taskdesk/taskdesk/internal/kv"
	"github.com/taskdesk/taskdesk/internal/model"
	"github.com/taskdesk/taskdesk/internal/store"
)

// failingStore wraps a working store and starts failing writes on demand,
// standing in for an unavailable or quota-exceeded backing store.
type failingStore struct {
	kv.Store
	failWrites bool
}

var errDiskFull = errors.New("quota exceeded")

func (f *failingStore) Write(key string, value []byte) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.Store.Write(key, value)
}

func TestPersistFailureSurfacedNotThrown(t *testing.T) {
	backing := &failingStore{Store: kv.NewMemoryStore()}
	r := store.New(backing)
	backing.failWrites = true

	task, err := r.CreateTask(model.TaskInput{Title: "stranded"})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want wrapped store failure", err)
	}
	if task == nil {
		t.Fatal("task not returned alongside the failure")
	}

	// In-memory state is not rolled back; the divergence is reconciled by
	// reloading from the store.
	if len(r.Tasks()) != 1 {
		t.Errorf("in-memory tasks = %d, want 1", len(r.Tasks()))
	}
	backing.failWrites = false
	if err := r.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(r.Tasks()) != 0 {
		t.Errorf("tasks after reload = %d, want 0", len(r.Tasks()))
	}
}

func TestDeleteProjectAbortsWhenReassignmentFails(t *testing.T) {
	backing := &failingStore{Store: kv.NewMemoryStore()}
	r := store.New(backing)

	p, err := r.CreateProject(model.ProjectInput{Name: "Sticky"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateTask(model.TaskInput{Title: "held", ProjectID: p.ID}); err != nil {
		t.Fatal(err)
	}

	backing.failWrites = true
	if err := r.DeleteProject(p.ID); !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want wrapped store failure", err)
	}

	// Deletion must not have proceeded past the failed reassignment.
	if _, err := r.Project(p.ID); err != nil {
		t.Error("project removed despite failed task reassignment")
	}
}

func TestCorruptReadFallsBackToEmpty(t *testing.T) {
	mem := kv.NewMemoryStore()
	if err := mem.Write("tasks", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	r := store.New(mem)
	if got := r.Tasks(); len(got) != 0 {
		t.Errorf("tasks = %v, want empty fallback", got)
	}
	// The default project fallback still applies.
	if def := r.DefaultProject(); !def.IsDefault {
		t.Error("no default project after fallback")
	}
}

func TestExternalChangeNotifiesObservers(t *testing.T) {
	mem := kv.NewMemoryStore()
	r := store.New(mem)

	stop, err := r.Watch()
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	notified := 0
	unsubscribe := r.Subscribe(func() { notified++ })

	// Another session sharing the store writes a task, then the change
	// surfaces through the watch channel.
	other := store.New(mem)
	if _, err := other.CreateTask(model.TaskInput{Title: "from elsewhere"}); err != nil {
		t.Fatal(err)
	}
	mem.FireChange("tasks")

	if notified != 1 {
		t.Fatalf("notified = %d, want 1", notified)
	}
	if got := r.Tasks(); len(got) != 1 || got[0].Title != "from elsewhere" {
		t.Errorf("tasks after external change = %+v", got)
	}

	unsubscribe()
	mem.FireChange("tasks")
	if notified != 1 {
		t.Errorf("observer fired after unsubscribe")
	}
}
