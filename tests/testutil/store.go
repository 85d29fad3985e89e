package testutil

import (
	"testing"
	"time"

	"github.com/taskdesk/taskdesk/internal/kv"
	"github.com/taskdesk/taskdesk/internal/store"
)

// NewTestStore creates an in-memory SQLite kv store with all migrations
// applied. It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *kv.SQLiteStore {
	t.Helper()

	s, err := kv.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestRepository builds a repository over an in-memory SQLite store.
func NewTestRepository(t *testing.T, opts ...store.Option) *store.Repository {
	t.Helper()
	return store.New(NewTestStore(t), opts...)
}

// FixedClock returns a clock that always reports the given instant.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
