package kv

import "sync"

// MemoryStore is a map-backed Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string][]byte
	onChange func(key string)
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Read returns the stored value for key.
func (s *MemoryStore) Read(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Write stores a copy of value under key.
func (s *MemoryStore) Write(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Watch registers the change callback. MemoryStore has no external writers,
// so changes are only reported through FireChange (a test hook standing in
// for another tab writing the shared store).
func (s *MemoryStore) Watch(onChange func(key string)) (func(), error) {
	s.mu.Lock()
	s.onChange = onChange
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.onChange = nil
		s.mu.Unlock()
	}, nil
}

// FireChange invokes the watch callback, simulating an external write.
func (s *MemoryStore) FireChange(key string) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(key)
	}
}
