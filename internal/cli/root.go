// Package cli implements the csv2sql command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(stdinIsTerminal)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. interactive reports whether stdin is
// a terminal, in which case the path prompt is shown.
func newRootCmd(interactive func() bool) *cobra.Command {
	flags := &convertFlags{}

	rootCmd := &cobra.Command{
		Use:   "csv2sql [paths...]",
		Short: "Convert CSV, TSV, XLSX and Parquet files into SQL scripts",
		Long: `csv2sql reads tabular files and writes, next to each input, a .sql script
with one CREATE TABLE statement and one INSERT statement per valid row.

Column names are normalized, column types are inferred from the data and rows
whose field count differs from the header are skipped with a warning.

Settings are resolved in this order: flag, environment variable (CSV2SQL_*),
config file (.csv2sql.yaml), default.

Run without arguments to be asked for the input path.`,
		Example: `  csv2sql people.csv
  csv2sql --schema width --inference all data/
  csv2sql --compression zstd --verify --dsn postgres://localhost/app orders.tsv.gz`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags, interactive)
		},
	}
	flags.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newConvertCmd(flags, interactive))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
