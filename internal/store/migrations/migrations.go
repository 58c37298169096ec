// Package migrations creates the records table with goose.
//
// SQL files are embedded per dialect under sql/<dialect>. Only the initial
// schema ships; the table layout is not expected to evolve.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/JonMunkholm/roster/internal/store/sqlq"
)

//go:embed sql
var embedded embed.FS

// Runner applies the embedded migrations for one dialect.
type Runner struct {
	provider *goose.Provider
	log      *slog.Logger
}

// New returns a runner for db. log may be nil.
func New(db *sql.DB, dialect sqlq.Dialect, log *slog.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database")
	}
	if log == nil {
		log = slog.Default()
	}

	var (
		gd  goose.Dialect
		dir string
	)
	switch dialect {
	case sqlq.Postgres:
		gd, dir = goose.DialectPostgres, "sql/postgres"
	case sqlq.SQLite:
		gd, dir = goose.DialectSQLite3, "sql/sqlite"
	default:
		return nil, fmt.Errorf("unsupported dialect %s", dialect)
	}

	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		return nil, fmt.Errorf("locate migrations: %w", err)
	}

	p, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}
	return &Runner{provider: p, log: log}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	results, err := r.provider.Up(runCtx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		r.log.Info("migration applied",
			"version", res.Source.Version,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return nil
}

// Status describes one embedded migration.
type Status struct {
	Version int64
	Applied bool
	Path    string
}

// Status reports which embedded migrations have been applied.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	sts, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]Status, 0, len(sts))
	for _, st := range sts {
		out = append(out, Status{
			Version: st.Source.Version,
			Applied: st.State == goose.StateApplied,
			Path:    st.Source.Path,
		})
	}
	return out, nil
}

// Apply is a convenience wrapper around New and Up.
func Apply(ctx context.Context, db *sql.DB, dialect sqlq.Dialect, log *slog.Logger) error {
	r, err := New(db, dialect, log)
	if err != nil {
		return err
	}
	return r.Up(ctx)
}
