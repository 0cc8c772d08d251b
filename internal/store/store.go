// Package store persists transactions, alerts, and investigation reports
// in SQLite. A single store backs both the CLI and the HTTP server.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store wraps the SQLite database. All methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	logger *zap.Logger
}

// Open initializes the database at path, creating the parent directory and
// the schema as needed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id   TEXT PRIMARY KEY,
			customer_id      TEXT NOT NULL,
			merchant_id      TEXT NOT NULL,
			amount           REAL NOT NULL,
			ts               TEXT NOT NULL,
			merchant_category      TEXT,
			merchant_category_code TEXT,
			location         TEXT,
			country          TEXT,
			currency         TEXT,
			payment_method   TEXT,
			payment_sub_type TEXT,
			pin_verified     INTEGER NOT NULL DEFAULT 0,
			device_id        TEXT,
			ip_address       TEXT,
			latitude         REAL,
			longitude        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_customer_ts
			ON transactions(customer_id, ts)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id         TEXT PRIMARY KEY,
			customer_id      TEXT NOT NULL,
			transaction_id   TEXT NOT NULL,
			created_at       TEXT NOT NULL,
			alert_json       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_customer
			ON alerts(customer_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS investigations (
			investigation_id TEXT PRIMARY KEY,
			alert_id         TEXT NOT NULL,
			customer_id      TEXT NOT NULL,
			verdict          TEXT NOT NULL,
			action           TEXT NOT NULL,
			false_positive   INTEGER NOT NULL,
			started_at       TEXT NOT NULL,
			finished_at      TEXT NOT NULL,
			report_json      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_investigations_alert
			ON investigations(alert_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
