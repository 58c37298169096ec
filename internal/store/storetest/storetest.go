// Package storetest holds the behavior every core.Store adapter must share.
//
// Adapter packages call [Run] from their own tests with a factory that
// returns an empty store.
package storetest

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/roster/internal/core"
)

// Factory returns a new, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) core.Store

// Run executes the shared adapter suite.
func Run(t *testing.T, open Factory) {
	t.Run("InsertAssignsIncreasingIDs", func(t *testing.T) { testInsertIDs(t, open(t)) })
	t.Run("CountAndFindWithFilter", func(t *testing.T) { testFilter(t, open(t)) })
	t.Run("SearchIsCaseSensitiveAndLiteral", func(t *testing.T) { testLiteralSearch(t, open(t)) })
	t.Run("SortAndPaginate", func(t *testing.T) { testSortPaginate(t, open(t)) })
	t.Run("PagePastEndIsEmpty", func(t *testing.T) { testPagePastEnd(t, open(t)) })
	t.Run("UpdateFieldsIsPartial", func(t *testing.T) { testUpdateFields(t, open(t)) })
	t.Run("DeleteByID", func(t *testing.T) { testDeleteByID(t, open(t)) })
	t.Run("DeleteByIDsIgnoresMissing", func(t *testing.T) { testDeleteByIDs(t, open(t)) })
	t.Run("RollbackDiscardsWrites", func(t *testing.T) { testRollback(t, open(t)) })
	t.Run("IDsAreNotReused", func(t *testing.T) { testIDsNotReused(t, open(t)) })
	t.Run("InsertManyEmpty", func(t *testing.T) { testInsertManyEmpty(t, open(t)) })
}

// Seed inserts recs in one transaction and returns their ids in order.
func Seed(t *testing.T, s core.Store, recs ...core.NewRecord) []int64 {
	t.Helper()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		id, err := tx.Insert(ctx, rec)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, tx.Commit(ctx))
	return ids
}

// All returns every record ordered by id.
func All(t *testing.T, s core.Store) []core.Record {
	t.Helper()
	recs, err := s.Find(context.Background(), core.Filter{},
		core.SortSpec{Field: core.SortID}, core.Page{Number: 1, Size: 1 << 20})
	require.NoError(t, err)
	return recs
}

func people() []core.NewRecord {
	return []core.NewRecord{
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "alice", Email: "alice@corp.io"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Dave", Email: "dave@corp.io"},
		{Name: "Eve", Email: "eve@example.com"},
	}
}

func names(recs []core.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func testInsertIDs(t *testing.T, s core.Store) {
	ids := Seed(t, s, people()...)
	require.Len(t, ids, 5)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	all := All(t, s)
	require.Len(t, all, 5)
	assert.Equal(t, core.Record{ID: ids[0], Name: "Carol", Email: "carol@example.com"}, all[0])
}

func testFilter(t *testing.T, s core.Store) {
	ctx := context.Background()
	ids := Seed(t, s, people()...)

	n, err := s.Count(ctx, core.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = s.Count(ctx, core.Filter{Search: "corp.io"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	recs, err := s.Find(ctx, core.Filter{Search: "corp.io"},
		core.SortSpec{Field: core.SortName}, core.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dave", "alice"}, names(recs))

	// A numeric search also matches the id.
	idSearch := core.Filter{Search: strconv.FormatInt(ids[2], 10)}
	recs, err = s.Find(ctx, idSearch, core.SortSpec{Field: core.SortID}, core.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Contains(t, names(recs), "Bob")
}

func testLiteralSearch(t *testing.T, s core.Store) {
	ctx := context.Background()
	Seed(t, s,
		core.NewRecord{Name: "100% Pure", Email: "a@x.io"},
		core.NewRecord{Name: "under_score", Email: "b@x.io"},
		core.NewRecord{Name: "Plain", Email: "c@x.io"},
	)

	n, err := s.Count(ctx, core.Filter{Search: "%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Count(ctx, core.Filter{Search: "_"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Count(ctx, core.Filter{Search: "plain"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func testSortPaginate(t *testing.T, s core.Store) {
	ctx := context.Background()
	Seed(t, s, people()...)

	byName := core.SortSpec{Field: core.SortName}
	page1, err := s.Find(ctx, core.Filter{}, byName, core.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	page2, err := s.Find(ctx, core.Filter{}, byName, core.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	page3, err := s.Find(ctx, core.Filter{}, byName, core.Page{Number: 3, Size: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob", "Carol"}, names(page1))
	assert.Equal(t, []string{"Dave", "Eve"}, names(page2))
	assert.Equal(t, []string{"alice"}, names(page3))

	desc, err := s.Find(ctx, core.Filter{}, core.SortSpec{Field: core.SortEmail, Desc: true},
		core.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Eve", "Dave"}, names(desc))
}

func testPagePastEnd(t *testing.T, s core.Store) {
	Seed(t, s, people()...)

	recs, err := s.Find(context.Background(), core.Filter{}, core.SortSpec{Field: core.SortID},
		core.Page{Number: 99, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testUpdateFields(t *testing.T, s core.Store) {
	ctx := context.Background()
	ids := Seed(t, s, core.NewRecord{Name: "Ann", Email: "ann@x.io"})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	newEmail := "ann@y.io"
	found, err := tx.UpdateFields(ctx, ids[0], core.Fields{Email: &newEmail})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = tx.UpdateFields(ctx, ids[0]+1000, core.Fields{Email: &newEmail})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = tx.UpdateFields(ctx, ids[0], core.Fields{})
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, []core.Record{{ID: ids[0], Name: "Ann", Email: "ann@y.io"}}, All(t, s))
}

func testDeleteByID(t *testing.T, s core.Store) {
	ctx := context.Background()
	ids := Seed(t, s, people()...)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	found, err := tx.DeleteByID(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, found)
	found, err = tx.DeleteByID(ctx, ids[1])
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, tx.Commit(ctx))

	assert.NotContains(t, names(All(t, s)), "alice")
}

func testDeleteByIDs(t *testing.T, s core.Store) {
	ctx := context.Background()
	ids := Seed(t, s, people()...)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	n, err := tx.DeleteByIDs(ctx, []int64{ids[0], ids[4], ids[4] + 500})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, []string{"alice", "Bob", "Dave"}, names(All(t, s)))
}

func testRollback(t *testing.T, s core.Store) {
	ctx := context.Background()
	Seed(t, s, people()...)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, core.NewRecord{Name: "Zed", Email: "zed@x.io"})
	require.NoError(t, err)
	_, err = tx.DeleteByIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	assert.Len(t, All(t, s), 5)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, tx.Rollback(ctx), "rollback after commit is a no-op")
}

func testIDsNotReused(t *testing.T, s core.Store) {
	ctx := context.Background()
	ids := Seed(t, s, core.NewRecord{Name: "a", Email: "a"}, core.NewRecord{Name: "b", Email: "b"})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.DeleteByIDs(ctx, ids)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	next := Seed(t, s, core.NewRecord{Name: "c", Email: "c"})
	assert.Greater(t, next[0], ids[1])
}

func testInsertManyEmpty(t *testing.T, s core.Store) {
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	n, err := tx.InsertMany(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = tx.InsertMany(ctx, []core.NewRecord{{Name: "x", Email: "y"}, {Name: "", Email: ""}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, tx.Commit(ctx))

	assert.Len(t, All(t, s), 2)
}
