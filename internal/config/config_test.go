package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite default", cfg.Storage.Backend)
	}
	if cfg.DefaultProject != "Inbox" {
		t.Errorf("default project = %q", cfg.DefaultProject)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Config{
		Storage:        StorageConfig{Backend: BackendFile, Path: "/tmp/taskdesk-data"},
		DefaultProject: "General",
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Storage != want.Storage || got.DefaultProject != want.DefaultProject {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted unknown backend")
	}
}
