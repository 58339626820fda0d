// Package store is the local persistence layer for transfer bookkeeping.
//
// It is a best-effort cache, never the source of truth: every read is total
// over a missing or corrupt database, and write failures are swallowed
// after a debug log. The durable table mirrors the web client's local
// storage; the session table mirrors its session storage and is wiped
// whenever a new session begins.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Well-known durable keys, shared contract with the web client.
const (
	KeyLastTransfer = "last_transfer"
	KeyPendingFlag  = "hb_open_txn"
	KeyUserName     = "hb_user_name"
	KeyCheckingBal  = "hb_acc_checking_bal"
	KeySavingsBal   = "hb_acc_savings_bal"
)

// Session-scoped keys.
const keyOTPBundle = "otp_bundle"

const pendingFlagValue = "1"

// Store is a SQLite-backed key-value store with a durable scope and a
// session scope.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the local store at dbPath.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS local_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			session_id TEXT NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to migrate store: %w", err)
		}
	}
	return nil
}

// get returns the value for key in the given table, or "" and false when
// missing or unreadable.
func (s *Store) get(ctx context.Context, table, key string) (string, bool) {
	var value string
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = ?", table) //nolint:gosec // table is a compile-time constant
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// set writes key=value in the given table, last write wins.
func (s *Store) set(ctx context.Context, table, key, value string) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		table) //nolint:gosec // table is a compile-time constant
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

func (s *Store) delete(ctx context.Context, table, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", table) //nolint:gosec // table is a compile-time constant
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// BeginSession records the active backend session. When the session id
// differs from the previous run, all session-scoped state (the OTP bundle)
// is wiped, matching session-storage semantics in the web client.
func (s *Store) BeginSession(ctx context.Context, sessionID string) {
	var current string
	err := s.db.QueryRowContext(ctx, "SELECT session_id FROM session_meta WHERE id = 1").Scan(&current)
	if err == nil && current == sessionID {
		return
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_state"); err != nil {
		logStoreFailure("wipe session state", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_meta (id, session_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET session_id = excluded.session_id`, sessionID)
	if err != nil {
		logStoreFailure("record session", err)
	}
}
