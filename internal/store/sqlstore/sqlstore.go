// Package sqlstore implements core.Store on SQLite through database/sql.
//
// Two drivers are registered: "sqlite" (modernc.org/sqlite, pure Go) and
// "sqlite3" (github.com/mattn/go-sqlite3, requires cgo). Both speak the same
// SQL, so the choice only affects how the binary is built.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/store/sqlq"
)

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// deleteChunk bounds the IN list of one delete statement, keeping it below
// SQLite's host parameter limit.
const deleteChunk = 500

// Store is a SQLite-backed core.Store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path with the given driver.
//
// The connection is configured with:
//   - a single connection, since SQLite allows one writer at a time
//   - WAL journaling so readers do not block on the writer
//   - a 5 second busy timeout
func Open(ctx context.Context, driver, path string) (*Store, error) {
	switch driver {
	case DriverModernc, DriverCgo:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// DB returns the underlying handle, used by the migration runner.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the number of records matching f.
func (s *Store) Count(ctx context.Context, f core.Filter) (int64, error) {
	q, args := sqlq.Count(sqlq.SQLite, f)

	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Find returns one sorted page of records matching f.
func (s *Store) Find(ctx context.Context, f core.Filter, sort core.SortSpec, page core.Page) ([]core.Record, error) {
	if _, ok := page.Offset(); !ok {
		return []core.Record{}, nil
	}

	q, args := sqlq.Find(sqlq.SQLite, f, sort, page)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := []core.Record{}
	for rows.Next() {
		var r core.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Email); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

// Begin opens a transaction.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Insert(ctx context.Context, rec core.NewRecord) (int64, error) {
	res, err := t.tx.ExecContext(ctx, sqlq.Insert(sqlq.SQLite), rec.Name, rec.Email)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// InsertMany reuses one prepared statement for every row.
func (t *sqlTx) InsertMany(ctx context.Context, recs []core.NewRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	stmt, err := t.tx.PrepareContext(ctx, sqlq.Insert(sqlq.SQLite))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.Name, rec.Email); err != nil {
			return n, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		n++
	}
	return n, nil
}

func (t *sqlTx) UpdateFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	q, args := sqlq.Update(sqlq.SQLite, id, fields)

	if fields.IsEmpty() {
		var n int64
		if err := t.tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
			return false, fmt.Errorf("check record: %w", err)
		}
		return n > 0, nil
	}

	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}
	return n > 0, nil
}

func (t *sqlTx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx, sqlq.DeleteByID(sqlq.SQLite), id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}
	return n > 0, nil
}

func (t *sqlTx) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))

		q, args := sqlq.DeleteIn(sqlq.SQLite, ids[start:end])
		res, err := t.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("delete records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("read affected rows: %w", err)
		}
		total += n
	}
	return total, nil
}

func (t *sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
