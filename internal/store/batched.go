package store

import "sync"

// BatchedStore buffers imported functions in memory. It implements
// DataStore so import workers can write to it without knowing whether
// they're hitting SQLite or an in-memory buffer.
//
// Thread safety: the mutex protects slice appends. Read queries are passed
// through to the underlying Store, which is safe for concurrent reads.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	Functions []Function
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{store: s}
}

func (b *BatchedStore) UpsertFunction(f *Function) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Functions = append(b.Functions, *f)
	return nil
}

// FunctionsBySource returns functions for a source, with buffered (not yet
// committed) functions replacing database rows of the same id.
func (b *BatchedStore) FunctionsBySource(sourceID int64) ([]*Function, error) {
	dbFns, err := b.store.FunctionsBySource(sourceID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	buffered := make(map[string]bool)
	var out []*Function
	for i := range b.Functions {
		f := &b.Functions[i]
		if f.SourceID != nil && *f.SourceID == sourceID {
			buffered[f.ID] = true
			out = append(out, f)
		}
	}
	for _, f := range dbFns {
		if !buffered[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

// Len reports how many functions are buffered.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Functions)
}
