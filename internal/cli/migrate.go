package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/store"
	"github.com/JonMunkholm/roster/internal/store/migrations"
)

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or inspect the embedded schema migrations.

Migrations run automatically on startup unless DB_AUTO_MIGRATE=false.
The memory driver has no schema.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openMigrations(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := r.Up(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "migration failed", err)
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format,
				map[string]string{"status": "ok"}, "migrations applied")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openMigrations(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			sts, err := r.Status(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read migration status", err)
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, sts, formatStatus(sts))
		},
	})

	return cmd
}

// openMigrations opens the store without migrating it.
func openMigrations(cmd *cobra.Command, opts *RootOptions) (*migrations.Runner, func(), error) {
	so := storeOptions(opts.Config)
	so.AutoMigrate = false

	st, err := store.Open(cmd.Context(), so)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "failed to open store", err)
	}
	r, err := store.Migrations(st, slog.Default())
	if err != nil {
		closeStore(st)
		if errors.Is(err, store.ErrNoMigrations) {
			return nil, nil, WrapExitError(ExitUsage, fmt.Sprintf("driver %q has no migrations", so.Driver), err)
		}
		return nil, nil, WrapExitError(ExitFailure, "failed to prepare migrations", err)
	}
	return r, func() { closeStore(st) }, nil
}

func formatStatus(sts []migrations.Status) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
	for _, st := range sts {
		state := "pending"
		if st.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", st.Version, state, st.Path)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
