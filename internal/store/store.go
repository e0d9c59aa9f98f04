package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for a sapling workspace.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
-- Code documents: scripts and user function bodies, stored as JSON trees.

CREATE TABLE IF NOT EXISTS documents (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE,
  kind            TEXT NOT NULL,
  hash            TEXT NOT NULL,
  body            TEXT NOT NULL,
  updated_at      TIMESTAMP
);

-- Go files external functions were imported from.

CREATE TABLE IF NOT EXISTS sources (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  hash            TEXT NOT NULL,
  imported_at     TIMESTAMP
);

-- Catalog declarations. A function belongs to a source (external) or a
-- document (user-defined), never both.

CREATE TABLE IF NOT EXISTS functions (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  source_id       INTEGER REFERENCES sources(id),
  document_id     TEXT REFERENCES documents(id),
  signature_hash  TEXT NOT NULL,
  body            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS type_specs (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE,
  kind            TEXT NOT NULL,
  body            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);
CREATE INDEX IF NOT EXISTS idx_functions_source ON functions(source_id);
CREATE INDEX IF NOT EXISTS idx_functions_document ON functions(document_id);
`

// DeleteSourceData transactionally removes a source and every function
// imported from it.
func (s *Store) DeleteSourceData(sourceID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM functions WHERE source_id = ?",
		"DELETE FROM sources WHERE id = ?",
	} {
		if _, err := tx.Exec(q, sourceID); err != nil {
			return fmt.Errorf("delete source data: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteDocument transactionally removes a document and the user function
// whose body it is, if any.
func (s *Store) DeleteDocument(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM functions WHERE document_id = ?",
		"DELETE FROM documents WHERE id = ?",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
	}
	return tx.Commit()
}
