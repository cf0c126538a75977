package store

import "context"

// Record is one wire row, column name to value. nil values map to NULL.
type Record = map[string]any

// Rejected pairs a record that failed an individual submission with its error.
type Rejected struct {
	Record Record
	Err    error
}

// UpsertResult splits accepted rows into created vs updated so idempotent
// re-imports are observable.
type UpsertResult struct {
	Created  int
	Updated  int
	Rejected []Rejected
}

// Store is the persistence collaborator the reconciler drives. Implementations
// own connections, credentials and retry policy; the engine never retries.
type Store interface {
	// Upsert writes records into table, resolving conflicts on conflictKeys
	// (existing rows are updated). A returned error means the whole call
	// failed and nothing is known about individual records.
	Upsert(ctx context.Context, table string, records []Record, conflictKeys []string) (UpsertResult, error)
	// Lookup returns rows of table matching all equality filters.
	Lookup(ctx context.Context, table string, filter map[string]any) ([]Record, error)
}
