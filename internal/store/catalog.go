package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Source operations ---

func (s *Store) InsertSource(src *Source) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO sources (path, hash, imported_at) VALUES (?, ?, ?)",
		src.Path, src.Hash, src.ImportedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	src.ID = id
	return id, nil
}

// UpdateSourceHash records that the source at id was re-imported with new
// content.
func (s *Store) UpdateSourceHash(id int64, hash string, at time.Time) error {
	if _, err := s.db.Exec("UPDATE sources SET hash = ?, imported_at = ? WHERE id = ?", hash, at, id); err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	return nil
}

func (s *Store) SourceByPath(path string) (*Source, error) {
	src := &Source{}
	err := s.db.QueryRow(
		"SELECT id, path, hash, imported_at FROM sources WHERE path = ?", path,
	).Scan(&src.ID, &src.Path, &src.Hash, &src.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("source by path: %w", err)
	}
	return src, nil
}

func (s *Store) ListSources() ([]*Source, error) {
	rows, err := s.db.Query("SELECT id, path, hash, imported_at FROM sources ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()
	var out []*Source
	for rows.Next() {
		src := &Source{}
		if err := rows.Scan(&src.ID, &src.Path, &src.Hash, &src.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// --- Function operations ---

const functionCols = "id, name, kind, source_id, document_id, signature_hash, body"

const upsertFunctionSQL = `INSERT INTO functions (id, name, kind, source_id, document_id, signature_hash, body)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind,
		source_id = excluded.source_id, document_id = excluded.document_id,
		signature_hash = excluded.signature_hash, body = excluded.body`

func (s *Store) UpsertFunction(f *Function) error {
	if _, err := s.db.Exec(upsertFunctionSQL,
		f.ID, f.Name, f.Kind, f.SourceID, f.DocumentID, f.SignatureHash, f.Body,
	); err != nil {
		return fmt.Errorf("upsert function %q: %w", f.Name, err)
	}
	return nil
}

func upsertFunctionTx(tx *sql.Tx, f *Function) error {
	_, err := tx.Exec(upsertFunctionSQL,
		f.ID, f.Name, f.Kind, f.SourceID, f.DocumentID, f.SignatureHash, f.Body,
	)
	return err
}

func (s *Store) queryFunctions(query string, args ...any) ([]*Function, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Function
	for rows.Next() {
		f := &Function{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Kind, &f.SourceID, &f.DocumentID, &f.SignatureHash, &f.Body); err != nil {
			return nil, fmt.Errorf("scan function: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListFunctions returns every persisted function ordered by name.
func (s *Store) ListFunctions() ([]*Function, error) {
	return s.queryFunctions("SELECT " + functionCols + " FROM functions ORDER BY name, id")
}

func (s *Store) FunctionsBySource(sourceID int64) ([]*Function, error) {
	return s.queryFunctions("SELECT "+functionCols+" FROM functions WHERE source_id = ? ORDER BY name", sourceID)
}

// FunctionByDocument returns the user function whose body is the document,
// or nil.
func (s *Store) FunctionByDocument(documentID string) (*Function, error) {
	fns, err := s.queryFunctions("SELECT "+functionCols+" FROM functions WHERE document_id = ?", documentID)
	if err != nil {
		return nil, fmt.Errorf("function by document: %w", err)
	}
	if len(fns) == 0 {
		return nil, nil
	}
	return fns[0], nil
}

// DeleteFunctions removes the functions with the given ids.
func (s *Store) DeleteFunctions(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := "DELETE FROM functions WHERE id IN (" + placeholderList(len(ids)) + ")"
	if _, err := s.db.Exec(q, stringsToArgs(ids)...); err != nil {
		return fmt.Errorf("delete functions: %w", err)
	}
	return nil
}

// --- Type spec operations ---

func (s *Store) UpsertTypeSpec(ts *TypeSpec) error {
	_, err := s.db.Exec(
		`INSERT INTO type_specs (id, name, kind, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind, body = excluded.body`,
		ts.ID, ts.Name, ts.Kind, ts.Body,
	)
	if err != nil {
		return fmt.Errorf("upsert type spec %q: %w", ts.Name, err)
	}
	return nil
}

func (s *Store) ListTypeSpecs() ([]*TypeSpec, error) {
	rows, err := s.db.Query("SELECT id, name, kind, body FROM type_specs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list type specs: %w", err)
	}
	defer rows.Close()
	var out []*TypeSpec
	for rows.Next() {
		ts := &TypeSpec{}
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.Kind, &ts.Body); err != nil {
			return nil, fmt.Errorf("scan type spec: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
