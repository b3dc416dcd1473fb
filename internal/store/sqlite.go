package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLiteBackend stores records in a single-table SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at dbPath and applies migrations.
func OpenSQLite(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(full)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening record db: %w", err)
	}
	// One writer at a time keeps write-through ordering trivial.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening record db: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Get returns the record stored under key.
func (b *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading record %q: %w", key, err)
	}
	return value, true, nil
}

// Put replaces the record stored under key.
func (b *SQLiteBackend) Put(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := b.db.Exec(`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("writing record %q: %w", key, err)
	}
	return nil
}

// Delete removes the record stored under key.
func (b *SQLiteBackend) Delete(key string) error {
	if _, err := b.db.Exec("DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting record %q: %w", key, err)
	}
	return nil
}
