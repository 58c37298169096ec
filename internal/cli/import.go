package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/core"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import records from a CSV file",
		Long: `Import records from a CSV file with the same rules as the web upload.

The first row is a header and is ignored. Every following row with at
least two columns becomes a record (name, email); shorter rows are
skipped. All rows are inserted in one transaction.

Example:
  roster import people.csv
  roster import --format json people.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitUsage, "failed to read file", err)
	}
	if limit := opts.Config.Import.MaxFileSize; int64(len(data)) > limit {
		return NewExitError(ExitUsage, fmt.Sprintf("file is larger than %d bytes", limit))
	}

	ctx := cmd.Context()
	svc, st, err := openService(ctx, opts.Config, nil)
	if err != nil {
		return err
	}
	defer closeStore(st)

	res, err := svc.ImportCSV(ctx, &core.Upload{FileName: filepath.Base(path), Data: data})
	if err != nil {
		return WrapExitError(ExitFailure, "import failed", err)
	}

	text := fmt.Sprintf("imported %d records from %s (%d rows skipped)", res.Inserted, path, res.Skipped)
	return printResult(cmd.OutOrStdout(), opts.Format, res, text)
}
