package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/core"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	Params core.ListParams
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one page of records as CSV",
		Long: `Export one page of records as CSV, selected like the web table.

Only the requested page is written, with a name,email header. The id
column is not exported.

Example:
  roster export --search example.com --sort-by name -o people.csv
  roster export --page 2 --per-page 50 > page2.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Params.Search, "search", "", "substring of name or email, or an exact id")
	cmd.Flags().StringVar(&opts.Params.SortBy, "sort-by", "id", "sort field (id|name|email)")
	cmd.Flags().StringVar(&opts.Params.Order, "order", "asc", "sort order (asc|desc)")
	cmd.Flags().IntVar(&opts.Params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.Params.PerPage, "per-page", 0, "page size (default QUERY_DEFAULT_PER_PAGE)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	ctx := cmd.Context()
	svc, st, err := openService(ctx, opts.Config, nil)
	if err != nil {
		return err
	}
	defer closeStore(st)

	data, err := svc.ExportCSV(ctx, opts.Params)
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}

	if opts.Output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	return nil
}
