package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

const fileExt = ".json"

// FileStore implements Store with one JSON file per key under a directory.
// A flock on a sidecar lock file serializes writers across processes, and
// Watch reports writes made by other processes via fsnotify. This is the
// closest filesystem analogue of browser local storage plus its cross-tab
// storage event.
type FileStore struct {
	dir string
	flk *flock.Flock

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
}

// NewFileStore creates the directory if needed and prepares the lock file.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &FileStore{
		dir: dir,
		flk: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

// Close stops any active watcher.
func (s *FileStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Read returns the contents of the key's file.
func (s *FileStore) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return data, true, nil
}

// Write stores value atomically: it writes a temp file under the exclusive
// lock and renames it over the key's file, so readers never observe a
// partial write.
func (s *FileStore) Write(key string, value []byte) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("locking store for key %q: %w", key, err)
	}
	defer s.flk.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for key %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for key %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key's file. Removing an absent key is not an error.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// Watch reports writes to the store directory. Events fire for this
// process's own writes too; the repository's reload path is a semantic
// no-op in that case.
func (s *FileStore) Watch(onChange func(key string)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", s.dir, err)
	}

	s.watchMu.Lock()
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.watcher = w
	s.watchMu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				name := filepath.Base(ev.Name)
				if !strings.HasSuffix(name, fileExt) {
					continue // temp files, lock file
				}
				onChange(strings.TrimSuffix(name, fileExt))
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if s.watcher == w {
			s.watcher = nil
		}
		w.Close()
	}, nil
}
