// Package store opens the configured core.Store implementation.
//
// Supported drivers:
//   - sqlite: modernc.org/sqlite, pure Go (default)
//   - sqlite3: github.com/mattn/go-sqlite3, requires cgo
//   - postgres: jackc/pgx connection pool
//   - memory: in-process store, lost on exit
//
// SQL-backed stores run the embedded goose migrations on open unless
// AutoMigrate is false.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/store/memstore"
	"github.com/JonMunkholm/roster/internal/store/migrations"
	"github.com/JonMunkholm/roster/internal/store/pgstore"
	"github.com/JonMunkholm/roster/internal/store/sqlq"
	"github.com/JonMunkholm/roster/internal/store/sqlstore"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = sqlstore.DriverModernc
	DriverSQLite3  = sqlstore.DriverCgo
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrNoMigrations is returned by Migrations for the memory driver.
var ErrNoMigrations = errors.New("store has no schema migrations")

// Store is a core.Store that can be health checked and closed.
type Store interface {
	core.Store
	core.Pinger
	io.Closer
}

// Options selects and configures a store.
type Options struct {
	Driver      string
	URL         string
	AutoMigrate bool
	Pool        pgstore.PoolOptions
	Logger      *slog.Logger
}

// Open connects to the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var s Store
	switch opts.Driver {
	case DriverSQLite, DriverSQLite3:
		ss, err := sqlstore.Open(ctx, opts.Driver, opts.URL)
		if err != nil {
			return nil, err
		}
		s = ss
	case DriverPostgres:
		ps, err := pgstore.Open(ctx, opts.URL, opts.Pool)
		if err != nil {
			return nil, err
		}
		s = ps
	case DriverMemory:
		return memoryStore{memstore.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	if opts.AutoMigrate {
		r, err := Migrations(s, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := r.Up(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}

	log.Info("store opened", "driver", opts.Driver, "auto_migrate", opts.AutoMigrate)
	return s, nil
}

// Migrations returns the migration runner for s.
func Migrations(s Store, log *slog.Logger) (*migrations.Runner, error) {
	db, dialect, ok := sqlHandle(s)
	if !ok {
		return nil, ErrNoMigrations
	}
	return migrations.New(db, dialect, log)
}

func sqlHandle(s Store) (*sql.DB, sqlq.Dialect, bool) {
	switch v := s.(type) {
	case *sqlstore.Store:
		return v.DB(), sqlq.SQLite, true
	case *pgstore.Store:
		return v.DB(), sqlq.Postgres, true
	default:
		return nil, 0, false
	}
}

// memoryStore adds a no-op Close to memstore.Store.
type memoryStore struct {
	*memstore.Store
}

func (memoryStore) Close() error { return nil }
