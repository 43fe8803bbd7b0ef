package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/csv2sql"
	"github.com/nao1215/csv2sql/domain/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Flag names
const (
	flagConfig      = "config"
	flagSchema      = "schema"
	flagInference   = "inference"
	flagUSDates     = "us-dates"
	flagDelimiter   = "delimiter"
	flagEncoding    = "encoding"
	flagCompression = "compression"
	flagSheet       = "sheet"
	flagLazyQuotes  = "lazy-quotes"
	flagVerify      = "verify"
	flagDSN         = "dsn"
	flagStdout      = "stdout"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
)

// convertFlags holds the values bound to the conversion flags.
type convertFlags struct {
	configPath  string
	schema      string
	inference   string
	usDates     bool
	delimiter   string
	encoding    string
	compression string
	sheet       string
	lazyQuotes  bool
	verify      bool
	dsn         string
	stdout      bool
	logLevel    string
	logFormat   string
}

func (f *convertFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, flagConfig, defaultConfigPath, "Config file")
	fs.StringVar(&f.schema, flagSchema, "typed", "Column declarations (typed, width)")
	fs.StringVar(&f.inference, flagInference, "sample", "Type inference strategy (sample, all)")
	fs.BoolVar(&f.usDates, flagUSDates, true, "Recognize MM/DD/YYYY dates")
	fs.StringVar(&f.delimiter, flagDelimiter, "", "Field delimiter for delimited input (default: ',' for csv, tab for tsv)")
	fs.StringVar(&f.encoding, flagEncoding, "utf8", "Input text encoding (utf8, utf16, windows1252, latin1)")
	fs.StringVar(&f.compression, flagCompression, "none", "Compress written scripts (none, gz, xz, zstd)")
	fs.StringVar(&f.sheet, flagSheet, "", "XLSX sheet to convert (default: first sheet)")
	fs.BoolVar(&f.lazyQuotes, flagLazyQuotes, false, "Accept bare quotes in unquoted CSV fields")
	fs.BoolVar(&f.verify, flagVerify, false, "Execute each script in in-memory SQLite and check the row count")
	fs.StringVar(&f.dsn, flagDSN, "", "Also load each script into this database (sqlite path, postgres://, sqlserver://)")
	fs.BoolVar(&f.stdout, flagStdout, false, "Print scripts to standard output instead of writing files")
	fs.StringVar(&f.logLevel, flagLogLevel, "error", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, flagLogFormat, logFormatConsole, "Log format (console, json)")
}

// resolve fills every flag not set on the command line from its
// environment variable, then from the config file.
func (f *convertFlags) resolve(cmd *cobra.Command, lookupEnv func(string) (string, bool)) error {
	flags := cmd.Flags()

	explicit := flags.Changed(flagConfig)
	if !explicit {
		if v, ok := lookupEnv(envName(flagConfig)); ok && v != "" {
			f.configPath = v
			explicit = true
		}
	}
	cfg, err := LoadFileConfig(f.configPath, explicit)
	if err != nil {
		return err
	}
	fileValues := cfg.values()

	var errs []error
	flags.VisitAll(func(fl *pflag.Flag) {
		if fl.Changed || fl.Name == flagConfig || fl.Name == "help" {
			return
		}
		source := envName(fl.Name)
		value, ok := lookupEnv(source)
		if !ok {
			source = f.configPath
			value, ok = fileValues[fl.Name]
		}
		if !ok {
			return
		}
		if err := fl.Value.Set(value); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s value %q from %s: %w", fl.Name, value, source, err))
		}
	})
	return errors.Join(errs...)
}

// options converts the resolved flags into conversion options.
func (f *convertFlags) options(logger *zap.Logger) (csv2sql.Options, error) {
	opts := csv2sql.NewOptions().
		WithUSDates(f.usDates).
		WithLazyQuotes(f.lazyQuotes).
		WithSheet(f.sheet).
		WithLogger(logger)

	schema, err := model.ParseSchemaPolicy(f.schema)
	if err != nil {
		return opts, err
	}
	inference, err := model.ParseInferenceStrategy(f.inference)
	if err != nil {
		return opts, err
	}
	delimiter, err := model.ParseDelimiter(f.delimiter)
	if err != nil {
		return opts, err
	}
	encoding, err := model.ParseEncoding(f.encoding)
	if err != nil {
		return opts, err
	}
	compression, err := model.ParseCompression(f.compression)
	if err != nil {
		return opts, err
	}

	return opts.
		WithSchema(schema).
		WithInference(inference).
		WithDelimiter(delimiter).
		WithEncoding(encoding).
		WithCompression(compression), nil
}

func newConvertCmd(flags *convertFlags, interactive func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert files and directories into SQL scripts",
		Long: `Convert every named file, and every supported file below every named
directory, into <table>.sql next to the input. A warning line is printed for
each skipped row and a confirmation line for each written script.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags, interactive)
		},
	}
}

func runConvert(cmd *cobra.Command, args []string, f *convertFlags, interactive func() bool) error {
	if err := f.resolve(cmd, os.LookupEnv); err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger, err := newLogger(f.logLevel, f.logFormat, stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // Ignore sync error on exit
	}()

	opts, err := f.options(logger)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		// Piped input carries the path without a prompt.
		prompt := io.Discard
		if interactive() {
			prompt = stdout
		}
		path, err := promptPath(cmd.InOrStdin(), prompt)
		if err != nil {
			return err
		}
		paths = []string{path}
	}

	ctx := cmd.Context()
	if f.stdout {
		return convertToStdout(ctx, paths, f, opts, stdout, stderr)
	}

	results, err := csv2sql.ConvertPaths(ctx, paths, opts)
	for _, r := range results {
		printWarnings(stdout, r.Script)
		_, _ = fmt.Fprintf(stdout, "wrote %s\n", r.Output)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if err := postProcess(ctx, r.Script, f, opts, stdout); err != nil {
			return err
		}
	}
	return nil
}

// convertToStdout prints every script to stdout. Everything else goes to
// stderr so the output stays a valid script.
func convertToStdout(ctx context.Context, paths []string, f *convertFlags, opts csv2sql.Options, stdout, stderr io.Writer) error {
	for _, path := range paths {
		script, err := csv2sql.ConvertFile(ctx, path, opts)
		if err != nil {
			return err
		}
		printWarnings(stderr, script)
		if err := postProcess(ctx, script, f, opts, stderr); err != nil {
			return err
		}
		if _, err := script.WriteTo(stdout); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
	}
	return nil
}

// postProcess verifies and loads the script as requested.
func postProcess(ctx context.Context, script *csv2sql.Script, f *convertFlags, opts csv2sql.Options, w io.Writer) error {
	if f.verify {
		if err := csv2sql.Verify(ctx, script); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "verified %s: %d rows\n", script.Table, len(script.Inserts))
	}
	if f.dsn != "" {
		count, err := csv2sql.Apply(ctx, f.dsn, script, opts)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "loaded %s: %d rows\n", script.Table, count)
	}
	return nil
}

func printWarnings(w io.Writer, script *csv2sql.Script) {
	for _, warning := range script.Warnings {
		_, _ = fmt.Fprintln(w, warning.String())
	}
}
