// Package cli implements the roster command line.
//
// Every command loads .env files and the environment into a config.Config
// before it runs. Logs go to stderr so export can write CSV to stdout.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/logging"
)

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	EnvFiles []string
	Verbose  bool
	Format   string // "json" | "text"

	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster - a person record table",
		Long: `Roster stores person records (name and email) and serves them through
a browser table with search, sorting, pagination, CSV import and CSV export.

Configuration is read from the environment. Files given with --env-file
(default .env) are loaded first and override the process environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// load reads the configuration and installs the default logger.
func (o *RootOptions) load() error {
	if err := config.LoadDotEnv(o.EnvFiles...); err != nil {
		return WrapExitError(ExitConfig, "failed to load env file", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitConfig, "invalid configuration", err)
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	o.Config = cfg
	return nil
}
