// Package pgstore implements core.Store on PostgreSQL with pgx.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/store/sqlq"
)

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed core.Store.
type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open connects to the database at url and verifies the connection.
func Open(ctx context.Context, url string, opts PoolOptions) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool. The Store owns the pool from then on.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: stdlib.OpenDBFromPool(pool)}
}

// DB returns the database/sql handle sharing the pool, for the migration
// runner. It is closed by Close.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database/sql handle and releases every pooled connection.
func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	if err != nil {
		return fmt.Errorf("close sql handle: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Count returns the number of records matching f.
func (s *Store) Count(ctx context.Context, f core.Filter) (int64, error) {
	q, args := sqlq.Count(sqlq.Postgres, f)

	var n int64
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Find returns one sorted page of records matching f.
func (s *Store) Find(ctx context.Context, f core.Filter, sort core.SortSpec, page core.Page) ([]core.Record, error) {
	if _, ok := page.Offset(); !ok {
		return []core.Record{}, nil
	}

	q, args := sqlq.Find(sqlq.Postgres, f, sort, page)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	recs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.Record])
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	if recs == nil {
		recs = []core.Record{}
	}
	return recs, nil
}

// Begin opens a read-committed transaction.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Insert(ctx context.Context, rec core.NewRecord) (int64, error) {
	var id int64
	if err := t.tx.QueryRow(ctx, sqlq.Insert(sqlq.Postgres), rec.Name, rec.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// InsertMany streams the rows with the COPY protocol.
func (t *pgTx) InsertMany(ctx context.Context, recs []core.NewRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	n, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{sqlq.Table},
		[]string{"name", "email"},
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			return []any{recs[i].Name, recs[i].Email}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy records: %w", err)
	}
	return n, nil
}

func (t *pgTx) UpdateFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	q, args := sqlq.Update(sqlq.Postgres, id, fields)

	if fields.IsEmpty() {
		var n int64
		if err := t.tx.QueryRow(ctx, q, args...).Scan(&n); err != nil {
			return false, fmt.Errorf("check record: %w", err)
		}
		return n > 0, nil
	}

	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (t *pgTx) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, sqlq.DeleteByID(sqlq.Postgres), id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (t *pgTx) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, "DELETE FROM "+sqlq.Table+" WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
