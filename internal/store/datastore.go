package store

// DataStore is the write interface used while importing declarations.
// Both *Store (direct SQLite writes) and *BatchedStore (in-memory buffering
// for parallel import) implement this interface.
type DataStore interface {
	UpsertFunction(f *Function) error
	FunctionsBySource(sourceID int64) ([]*Function, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
