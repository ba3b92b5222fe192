// Package localstate is the device-local durable store backing session
// resumability and the offline finalize retry queue. It is scoped to one
// device; nothing here is shared across devices.
package localstate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed key/blob store plus a retry queue.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local state database at dir/session.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS session_state (
			key        TEXT PRIMARY KEY,
			blob       BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS retry_queue (
			session_id TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			queued_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating state tables: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Get returns the blob stored under key, or nil if absent.
func (s *Store) Get(key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM session_state WHERE key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state %s: %w", key, err)
	}
	return blob, nil
}

// Set stores blob under key, replacing any previous value.
func (s *Store) Set(key string, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO session_state (key, blob, updated_at) VALUES (?, ?, ?)`,
		key, blob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing state %s: %w", key, err)
	}
	return nil
}

// Remove deletes the blob stored under key. Removing an absent key is not an
// error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM session_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing state %s: %w", key, err)
	}
	return nil
}

// Enqueue stores a finalize payload for later retry. The session ID is the
// idempotency key: re-enqueueing the same session replaces the payload rather
// than duplicating it.
func (s *Store) Enqueue(sessionID string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO retry_queue (session_id, payload, queued_at) VALUES (?, ?, ?)`,
		sessionID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("enqueueing session %s: %w", sessionID, err)
	}
	return nil
}

// QueuedItem is one pending finalize payload.
type QueuedItem struct {
	SessionID string
	Payload   []byte
	QueuedAt  time.Time
}

// Pending returns all queued finalize payloads, oldest first.
func (s *Store) Pending() ([]QueuedItem, error) {
	rows, err := s.db.Query(
		`SELECT session_id, payload, queued_at FROM retry_queue ORDER BY queued_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading retry queue: %w", err)
	}
	defer rows.Close()

	var items []QueuedItem
	for rows.Next() {
		var it QueuedItem
		if err := rows.Scan(&it.SessionID, &it.Payload, &it.QueuedAt); err != nil {
			return nil, fmt.Errorf("scanning retry item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Dequeue removes a successfully delivered payload from the queue.
func (s *Store) Dequeue(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM retry_queue WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("dequeueing session %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}
