package cli

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/store"
	"github.com/JonMunkholm/roster/internal/store/pgstore"
)

// storeOptions translates the database section of cfg.
func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Driver:      cfg.Database.Driver,
		URL:         cfg.Database.URL,
		AutoMigrate: cfg.Database.AutoMigrate,
		Pool: pgstore.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		},
		Logger: slog.Default(),
	}
}

// openService opens the configured store and builds a service on it.
// reg may be nil. The caller closes the returned store.
func openService(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*core.Service, store.Store, error) {
	st, err := store.Open(ctx, storeOptions(cfg))
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "failed to open store", err)
	}

	svc, err := core.NewService(st, core.Options{
		DefaultPerPage: cfg.Query.DefaultPerPage,
		StrictSort:     cfg.Query.StrictSort,

		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWait,

		Registerer: reg,
	})
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitFailure, "failed to create service", err)
	}
	return svc, st, nil
}

// closeStore closes st and logs a failure.
func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing store", "error", err)
	}
}
