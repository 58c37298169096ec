package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/roster/internal/store/sqlq"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUp_CreatesRecordsTable(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	r, err := New(db, sqlq.SQLite, nil)
	require.NoError(t, err)

	before, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.False(t, before[0].Applied)

	require.NoError(t, r.Up(ctx))

	_, err = db.ExecContext(ctx, "INSERT INTO records (name, email) VALUES ('a', 'b')")
	require.NoError(t, err)

	after, err := r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, after[0].Applied)
	assert.EqualValues(t, 1, after[0].Version)
}

func TestUp_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Apply(ctx, db, sqlq.SQLite, nil))
	require.NoError(t, Apply(ctx, db, sqlq.SQLite, nil))
}

func TestNew_RejectsUnknownDialect(t *testing.T) {
	db := openSQLite(t)

	_, err := New(db, sqlq.Dialect(42), nil)
	assert.Error(t, err)
}
