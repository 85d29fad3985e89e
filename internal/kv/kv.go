// Package kv provides the key-value backing stores the repository persists
// collections into. Writes are whole-value overwrites with last-write-wins
// semantics; concurrent writers (e.g. two processes sharing a file) are
// reconciled only by re-reading, never merged.
package kv

import "errors"

// ErrNotWatchable is returned when a store cannot report external changes.
var ErrNotWatchable = errors.New("kv: store does not support watching")

// Store is a minimal key-value store. Values are opaque byte blobs; the
// caller owns serialization.
type Store interface {
	// Read returns the value for key. ok is false when the key is absent.
	Read(key string) (value []byte, ok bool, err error)

	// Write stores value under key, replacing any previous value.
	Write(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	Close() error
}

// Watcher is implemented by stores that can report writes made by another
// process or connection. The callback receives the changed key, or "" when
// the backend cannot tell which key changed. Callbacks may fire for the
// watching process's own writes; consumers are expected to treat a reload
// after their own write as a no-op.
type Watcher interface {
	Watch(onChange func(key string)) (stop func(), err error)
}
