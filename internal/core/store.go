package core

import "context"

// Store is the persistence contract the core depends on.
// Implementations live under internal/store.
type Store interface {
	// Count returns the number of records matching f.
	Count(ctx context.Context, f Filter) (int64, error)

	// Find returns the records matching f, ordered by sort and bounded by page.
	// A page past the end yields an empty slice and no error.
	Find(ctx context.Context, f Filter, sort SortSpec, page Page) ([]Record, error)

	// Begin opens a transaction. The caller must Commit or Rollback it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work against the store.
// Rollback after a successful Commit is a no-op.
type Tx interface {
	Insert(ctx context.Context, rec NewRecord) (int64, error)
	InsertMany(ctx context.Context, recs []NewRecord) (int64, error)
	UpdateFields(ctx context.Context, id int64, fields Fields) (found bool, err error)
	DeleteByID(ctx context.Context, id int64) (found bool, err error)
	DeleteByIDs(ctx context.Context, ids []int64) (deleted int64, err error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
