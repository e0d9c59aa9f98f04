package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Document operations ---

const documentCols = "id, name, kind, hash, body, updated_at"

// SaveDocument inserts or updates d. Hash is recomputed from Body; when the
// stored hash already matches nothing is written and changed is false.
func (s *Store) SaveDocument(d *Document) (changed bool, err error) {
	d.Hash = ContentHash([]byte(d.Body))
	existing, err := s.DocumentByID(d.ID)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.Hash == d.Hash && existing.Name == d.Name {
		d.UpdatedAt = existing.UpdatedAt
		return false, nil
	}
	d.UpdatedAt = time.Now().Truncate(time.Second)
	_, err = s.db.Exec(
		`INSERT INTO documents (id, name, kind, hash, body, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind,
			hash = excluded.hash, body = excluded.body, updated_at = excluded.updated_at`,
		d.ID, d.Name, d.Kind, d.Hash, d.Body, d.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("save document %q: %w", d.Name, err)
	}
	return true, nil
}

func (s *Store) scanDocument(scanner interface{ Scan(...any) error }) (*Document, error) {
	d := &Document{}
	if err := scanner.Scan(&d.ID, &d.Name, &d.Kind, &d.Hash, &d.Body, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) documentWhere(where string, arg any) (*Document, error) {
	d, err := s.scanDocument(s.db.QueryRow("SELECT "+documentCols+" FROM documents WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("document lookup: %w", err)
	}
	return d, nil
}

func (s *Store) DocumentByID(id string) (*Document, error) {
	return s.documentWhere("id = ?", id)
}

func (s *Store) DocumentByName(name string) (*Document, error) {
	return s.documentWhere("name = ?", name)
}

// ListDocuments returns every document ordered by name. An empty kind
// matches all kinds.
func (s *Store) ListDocuments(kind string) ([]*Document, error) {
	query := "SELECT " + documentCols + " FROM documents"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	rows, err := s.db.Query(query+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var docs []*Document
	for rows.Next() {
		d, err := s.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// --- Metadata operations ---

// GetMetadata returns the value stored under key, or "" if unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}
