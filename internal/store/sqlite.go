package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteBackend persists slots to a single SQLite table.
type SQLiteBackend struct {
	db       *sql.DB
	mu       sync.RWMutex // protects watchers only
	watchers watchers
	closed   bool
}

// NewSQLiteBackend opens (or creates) the SQLite database at path and makes
// sure the slots table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Get(slot string) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM slots WHERE name = ?`, slot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %q: %w", slot, err)
	}
	return raw, nil
}

func (s *SQLiteBackend) Put(origin, slot string, value []byte) error {
	if s.isClosed() {
		return ErrClosed
	}
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO slots (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		slot, value, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert slot %q: %w", slot, err)
	}

	s.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotPut,
		Slot:   slot,
		Origin: origin,
		Value:  value,
		At:     now,
	})
	return nil
}

func (s *SQLiteBackend) Remove(origin, slot string) error {
	if s.isClosed() {
		return ErrClosed
	}
	res, err := s.db.Exec(`DELETE FROM slots WHERE name = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	s.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotRemoved,
		Slot:   slot,
		Origin: origin,
		At:     time.Now(),
	})
	return nil
}

func (s *SQLiteBackend) Watch(prefix string) (<-chan v1alpha1.SlotEvent, func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return closedWatch()
	}
	w := s.watchers.add(prefix)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.watchers.remove(w)
		})
	}
	return w.ch, cancel
}

func (s *SQLiteBackend) Close() error {
	s.mu.Lock()
	s.watchers.closeAll()
	s.closed = true
	s.mu.Unlock()

	return s.db.Close()
}

func (s *SQLiteBackend) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *SQLiteBackend) notify(evt v1alpha1.SlotEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.watchers.notify(evt)
}
