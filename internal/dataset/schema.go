// Package dataset provides the SQLite-backed structured dataset: documents,
// tax expenses, daily expenses, salary entries and trades, with optional
// FTS5 full-text search over extracted document content.
package dataset

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	kind         TEXT NOT NULL DEFAULT 'other',
	category     TEXT NOT NULL DEFAULT 'Sonstiges',
	sub_category TEXT NOT NULL DEFAULT '',
	year         INTEGER NOT NULL DEFAULT 0,
	created      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	content      TEXT NOT NULL DEFAULT '',
	file_name    TEXT NOT NULL DEFAULT '',
	file_path    TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	checksum     TEXT NOT NULL DEFAULT '',
	tax_relevant INTEGER NOT NULL DEFAULT 0,
	is_expense   INTEGER NOT NULL DEFAULT 0,
	expense_id   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_file_path ON documents(file_path);

CREATE TABLE IF NOT EXISTS tax_expenses (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	description  TEXT NOT NULL DEFAULT '',
	amount       REAL NOT NULL DEFAULT 0,
	currency     TEXT NOT NULL DEFAULT 'EUR',
	rate         REAL NOT NULL DEFAULT 1,
	cat          TEXT NOT NULL DEFAULT '',
	year         INTEGER NOT NULL DEFAULT 0,
	receipts     TEXT NOT NULL DEFAULT '[]',
	tax_relevant INTEGER NOT NULL DEFAULT 1,
	note_ref     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS expenses (
	id           TEXT PRIMARY KEY,
	date         DATETIME NOT NULL,
	merchant     TEXT NOT NULL DEFAULT '',
	amount       REAL NOT NULL DEFAULT 0,
	currency     TEXT NOT NULL DEFAULT 'EUR',
	rate         REAL NOT NULL DEFAULT 1,
	category     TEXT NOT NULL DEFAULT '',
	receipt_id   TEXT NOT NULL DEFAULT '',
	tax_relevant INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS salary_entries (
	year         INTEGER NOT NULL,
	month        INTEGER NOT NULL,
	net_income   REAL NOT NULL DEFAULT 0,
	gross_income REAL NOT NULL DEFAULT 0,
	deductions   TEXT NOT NULL DEFAULT '{}',
	pdf_filename TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (year, month)
);

CREATE TABLE IF NOT EXISTS trades (
	id        TEXT PRIMARY KEY,
	date      TEXT NOT NULL DEFAULT '',
	symbol    TEXT NOT NULL DEFAULT '',
	image_ids TEXT NOT NULL DEFAULT '[]'
);
`

// Store wraps a sql.DB with dataset-specific operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("dataset: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dataset: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dataset: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dataset: apply fts schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
