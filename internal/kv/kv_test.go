package kv

import (
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating sqlite store: %v", err)
	}
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}

	stores := map[string]Store{
		"sqlite": sq,
		"file":   fs,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for name, s := range stores {
			if err := s.Close(); err != nil {
				t.Errorf("closing %s store: %v", name, err)
			}
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Read("tasks"); err != nil || ok {
				t.Fatalf("Read(missing) = ok=%v err=%v, want absent", ok, err)
			}

			if err := s.Write("tasks", []byte(`[{"id":"1"}]`)); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, ok, err := s.Read("tasks")
			if err != nil || !ok {
				t.Fatalf("Read = ok=%v err=%v, want value", ok, err)
			}
			if string(got) != `[{"id":"1"}]` {
				t.Errorf("Read = %q", got)
			}

			// Whole-value overwrite.
			if err := s.Write("tasks", []byte(`[]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _, _ = s.Read("tasks")
			if string(got) != `[]` {
				t.Errorf("after overwrite Read = %q", got)
			}

			if err := s.Remove("tasks"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, ok, _ := s.Read("tasks"); ok {
				t.Error("key still present after Remove")
			}
			// Removing an absent key is not an error.
			if err := s.Remove("tasks"); err != nil {
				t.Errorf("Remove(absent): %v", err)
			}
		})
	}
}

func TestStoresAreIndependentPerKey(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Write("tasks", []byte("a")); err != nil {
				t.Fatal(err)
			}
			if err := s.Write("projects", []byte("b")); err != nil {
				t.Fatal(err)
			}
			if err := s.Remove("tasks"); err != nil {
				t.Fatal(err)
			}
			if got, ok, _ := s.Read("projects"); !ok || string(got) != "b" {
				t.Errorf("projects = %q ok=%v after removing tasks", got, ok)
			}
		})
	}
}

func TestMemoryStoreWatch(t *testing.T) {
	s := NewMemoryStore()

	var changed []string
	stop, err := s.Watch(func(key string) { changed = append(changed, key) })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	s.FireChange("tasks")
	if len(changed) != 1 || changed[0] != "tasks" {
		t.Fatalf("changed = %v, want [tasks]", changed)
	}

	stop()
	s.FireChange("tasks")
	if len(changed) != 1 {
		t.Errorf("callback fired after stop: %v", changed)
	}
}
