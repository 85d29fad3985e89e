package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// dataVersionPollInterval is how often a watching SQLiteStore checks
// PRAGMA data_version for external writes.
const dataVersionPollInterval = 2 * time.Second

// SQLiteStore implements Store using a single-table SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	watchMu   sync.Mutex
	watchStop chan struct{}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection: there is a single logical writer, and it keeps
	// :memory: databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close stops any active watcher and closes the database connection.
func (s *SQLiteStore) Close() error {
	s.stopWatcher(nil)
	return s.db.Close()
}

// stopWatcher closes the given watch channel if it is still the active one.
// A nil argument stops whichever watcher is active. Safe to call repeatedly.
func (s *SQLiteStore) stopWatcher(ch chan struct{}) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if ch == nil {
		ch = s.watchStop
	}
	if ch != nil && ch == s.watchStop {
		close(ch)
		s.watchStop = nil
	}
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Read returns the stored value for key.
func (s *SQLiteStore) Read(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, true, nil
}

// Write stores value under key, replacing any previous value.
func (s *SQLiteStore) Write(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// Watch polls PRAGMA data_version, which SQLite increments whenever another
// connection commits a write to the database. The changed key cannot be
// recovered from the pragma, so the callback receives "".
func (s *SQLiteStore) Watch(onChange func(key string)) (func(), error) {
	var last int64
	if err := s.db.Get(&last, "PRAGMA data_version"); err != nil {
		return nil, fmt.Errorf("reading data_version: %w", err)
	}

	s.stopWatcher(nil)
	stop := make(chan struct{})
	s.watchMu.Lock()
	s.watchStop = stop
	s.watchMu.Unlock()

	go func() {
		ticker := time.NewTicker(dataVersionPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var v int64
				if err := s.db.Get(&v, "PRAGMA data_version"); err != nil {
					continue
				}
				if v != last {
					last = v
					onChange("")
				}
			}
		}
	}()

	return func() { s.stopWatcher(stop) }, nil
}
