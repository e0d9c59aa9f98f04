package store

import "fmt"

// CommitBatch writes all buffered functions from a BatchedStore into SQLite
// within a single transaction. Function ids are stable across imports, so
// rows are upserted rather than remapped.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	batch.mu.Lock()
	defer batch.mu.Unlock()
	for i := range batch.Functions {
		f := &batch.Functions[i]
		if err := upsertFunctionTx(tx, f); err != nil {
			return fmt.Errorf("commit batch: function %q: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	batch.Functions = nil
	return nil
}
