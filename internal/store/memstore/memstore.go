// Package memstore is an in-memory core.Store.
//
// It backs the tests of the core and web packages and can be selected with
// DB_DRIVER=memory for local experiments. Transactions are serialized: Begin
// takes the store lock and holds it until Commit or Rollback, and all writes
// go to a private copy that replaces the committed state on Commit.
package memstore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/JonMunkholm/roster/internal/core"
)

// ErrTxDone is returned by operations on a committed or rolled back Tx.
var ErrTxDone = errors.New("memstore: transaction already finished")

// Store keeps records ordered by id.
type Store struct {
	mu      sync.Mutex
	records []core.Record
	lastID  int64
}

// New returns an empty store. The first assigned id is 1.
func New() *Store {
	return &Store{}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Count returns the number of records matching f.
func (s *Store) Count(ctx context.Context, f core.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, rec := range s.records {
		if matches(rec, f) {
			n++
		}
	}
	return n, nil
}

// Find returns the matching records ordered by sort and cut to page.
func (s *Store) Find(ctx context.Context, f core.Filter, sort core.SortSpec, page core.Page) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	matched := make([]core.Record, 0, len(s.records))
	for _, rec := range s.records {
		if matches(rec, f) {
			matched = append(matched, rec)
		}
	}
	s.mu.Unlock()

	if sort.Field != core.SortNone {
		slices.SortStableFunc(matched, func(a, b core.Record) int {
			c := compareBy(sort.Field, a, b)
			if sort.Desc {
				return -c
			}
			return c
		})
	}

	offset, ok := page.Offset()
	if !ok || offset >= int64(len(matched)) {
		return []core.Record{}, nil
	}
	end := int64(len(matched))
	if page.Size > 0 && offset+int64(page.Size) < end {
		end = offset + int64(page.Size)
	}
	return slices.Clone(matched[offset:end]), nil
}

// Begin locks the store until the returned Tx is finished.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &tx{
		store:   s,
		records: slices.Clone(s.records),
		lastID:  s.lastID,
	}, nil
}

// Len returns the number of committed records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func matches(rec core.Record, f core.Filter) bool {
	if f.IsEmpty() {
		return true
	}
	if strings.Contains(rec.Name, f.Search) || strings.Contains(rec.Email, f.Search) {
		return true
	}
	id, ok := f.IDMatch()
	return ok && rec.ID == id
}

func compareBy(field core.SortField, a, b core.Record) int {
	switch field {
	case core.SortName:
		return strings.Compare(a.Name, b.Name)
	case core.SortEmail:
		return strings.Compare(a.Email, b.Email)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

type tx struct {
	store   *Store
	records []core.Record
	lastID  int64
	done    bool
}

func (t *tx) Insert(ctx context.Context, rec core.NewRecord) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.lastID++
	t.records = append(t.records, core.Record{ID: t.lastID, Name: rec.Name, Email: rec.Email})
	return t.lastID, nil
}

func (t *tx) InsertMany(ctx context.Context, recs []core.NewRecord) (int64, error) {
	for i, rec := range recs {
		if _, err := t.Insert(ctx, rec); err != nil {
			return int64(i), err
		}
	}
	return int64(len(recs)), nil
}

func (t *tx) UpdateFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	if t.done {
		return false, ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	i, ok := t.index(id)
	if !ok {
		return false, nil
	}
	if fields.Name != nil {
		t.records[i].Name = *fields.Name
	}
	if fields.Email != nil {
		t.records[i].Email = *fields.Email
	}
	return true, nil
}

func (t *tx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	n, err := t.DeleteByIDs(ctx, []int64{id})
	return n > 0, err
}

func (t *tx) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	before := len(t.records)
	t.records = slices.DeleteFunc(t.records, func(rec core.Record) bool {
		return slices.Contains(ids, rec.ID)
	})
	return int64(before - len(t.records)), nil
}

func (t *tx) Commit(context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.store.records = t.records
	t.store.lastID = t.lastID
	t.store.mu.Unlock()
	return nil
}

// Rollback discards the writes but keeps the id counter, so ids handed out
// inside the transaction are never assigned again.
func (t *tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.lastID = t.lastID
	t.store.mu.Unlock()
	return nil
}

// index finds id with a binary search; records stay ordered by id.
func (t *tx) index(id int64) (int, bool) {
	return slices.BinarySearchFunc(t.records, id, func(rec core.Record, id int64) int {
		return cmp.Compare(rec.ID, id)
	})
}
