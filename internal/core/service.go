package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultPerPage is the page size used when a request does not specify one.
const DefaultPerPage = 10

// Options configures a Service.
type Options struct {
	// DefaultPerPage replaces a missing or non-positive page size.
	DefaultPerPage int

	// StrictSort rejects unknown sort fields with a ValidationError instead
	// of falling back to the store's default order.
	StrictSort bool

	// MaxConcurrentImports bounds parallel imports; ImportWait is how long
	// an import waits for a slot. Zero values use the package defaults.
	MaxConcurrentImports int
	ImportWait           time.Duration

	// Registerer receives the service counters. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Service provides the record table operations on top of a Store.
type Service struct {
	store   Store
	opts    Options
	metrics *serviceMetrics
	imports *ImportLimiter
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("nil store")
	}
	if opts.DefaultPerPage <= 0 {
		opts.DefaultPerPage = DefaultPerPage
	}

	m, err := newServiceMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return &Service{
		store:   store,
		opts:    opts,
		metrics: m,
		imports: NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
	}, nil
}

// ImportStatus reports how many imports are running.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.imports.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.imports.WaitForDrain(ctx)
}

// Ping checks that the store is reachable, when it supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// withTx runs fn inside a transaction and commits on success.
// The transaction is rolled back on every other exit path.
func (s *Service) withTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
