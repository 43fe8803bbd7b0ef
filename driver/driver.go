// Package driver provides the csv2sql driver implementation for database/sql.
//
// A connection converts every file named in the DSN into a SQL script and
// executes that script against a fresh in-memory SQLite database, so queries
// observe exactly the tables and rows a generated .sql file would create.
//
// Usage:
//
//	import _ "github.com/nao1215/csv2sql"
//	db, err := sql.Open("csv2sql", "data.csv?schema=width&us_dates=false")
package driver

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/csv2sql/domain/model"
	"modernc.org/sqlite"
)

// DSN query parameters
const (
	paramSchema    = "schema"
	paramInference = "inference"
	paramUSDates   = "us_dates"
	paramDelimiter = "delimiter"
	paramEncoding  = "encoding"
	paramSheet     = "sheet"
)

// Driver implements database/sql/driver.Driver interface.
type Driver struct{}

// Connector implements database/sql/driver.Connector interface.
// paths are the input files or directories, opts the conversion options
// parsed from the DSN query.
type Connector struct {
	driver *Driver
	paths  []string
	opts   model.Options
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection that holds the converted tables.
type Connection struct {
	conn driver.Conn
}

// Transaction implements database/sql/driver.Tx interface.
type Transaction struct {
	tx driver.Tx
}

// NewDriver creates a new csv2sql driver
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	paths, opts, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return &Connector{
		driver: d,
		paths:  paths,
		opts:   opts,
	}, nil
}

// ParseDSN splits a DSN of the form "path[;path...][?key=value&...]" into
// input paths and conversion options.
func ParseDSN(dsn string) ([]string, model.Options, error) {
	opts := model.NewOptions()

	rawPaths, rawQuery, _ := strings.Cut(dsn, "?")
	var paths []string
	for p := range strings.SplitSeq(rawPaths, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := ValidatePath(p); err != nil {
			return nil, opts, err
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, opts, ErrNoPathsProvided
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, opts, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	opts, err = applyQuery(opts, query)
	if err != nil {
		return nil, opts, err
	}
	return paths, opts, nil
}

func applyQuery(opts model.Options, query url.Values) (model.Options, error) {
	for key, values := range query {
		value := values[len(values)-1]
		switch key {
		case paramSchema:
			policy, err := model.ParseSchemaPolicy(value)
			if err != nil {
				return opts, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
			}
			opts = opts.WithSchema(policy)
		case paramInference:
			strategy, err := model.ParseInferenceStrategy(value)
			if err != nil {
				return opts, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
			}
			opts = opts.WithInference(strategy)
		case paramUSDates:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return opts, fmt.Errorf("%w: %s: %w", ErrInvalidDSN, paramUSDates, err)
			}
			opts = opts.WithUSDates(enabled)
		case paramDelimiter:
			delimiter, err := model.ParseDelimiter(value)
			if err != nil {
				return opts, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
			}
			opts = opts.WithDelimiter(delimiter)
		case paramEncoding:
			enc, err := model.ParseEncoding(value)
			if err != nil {
				return opts, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
			}
			opts = opts.WithEncoding(enc)
		case paramSheet:
			opts = opts.WithSheet(value)
		default:
			return opts, fmt.Errorf("%w: unknown parameter %q", ErrInvalidDSN, key)
		}
	}
	return opts, nil
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	if err := c.loadPaths(ctx, conn); err != nil {
		_ = conn.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("failed to load file: %w", err)
	}

	return &Connection{conn: conn}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// loadPaths loads every file and directory of the DSN.
func (c *Connector) loadPaths(ctx context.Context, conn driver.Conn) error {
	tableNames := make(map[string]string) // table name -> file path

	var filesToLoad []string
	for _, path := range c.paths {
		files, err := c.collectFilesFromPath(path, tableNames)
		if err != nil {
			return err
		}
		filesToLoad = append(filesToLoad, files...)
	}
	if len(filesToLoad) == 0 {
		return ErrNoFilesLoaded
	}

	for _, filePath := range filesToLoad {
		if err := c.loadSingleFile(ctx, conn, filePath); err != nil {
			return fmt.Errorf("failed to load file %s: %w", filePath, err)
		}
	}
	return nil
}

// collectFilesFromPath collects files from a single path (file or directory)
func (c *Connector) collectFilesFromPath(path string, tableNames map[string]string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return c.collectDirectoryFiles(path, tableNames)
	}
	if !model.IsSupportedFile(path) {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, path)
	}
	if err := claimTableName(model.TableFromFilePath(path), path, tableNames); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// collectDirectoryFiles collects supported files directly inside dirPath.
// An uncompressed file wins over compressed copies of the same table.
func (c *Connector) collectDirectoryFiles(dirPath string, tableNames map[string]string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	local := make(map[string]string)
	var order []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsValidFileName(name) || !model.IsSupportedFile(name) {
			continue
		}
		filePath := filepath.Join(dirPath, name)
		tableName := model.TableFromFilePath(filePath)

		existing, ok := local[tableName]
		if !ok {
			local[tableName] = filePath
			order = append(order, tableName)
			continue
		}
		if baseExt(existing) != baseExt(filePath) {
			return nil, fmt.Errorf("%w: table '%s' from files '%s' and '%s'",
				ErrDuplicateTableName, tableName, existing, filePath)
		}
		if model.NewFile(existing).IsCompressed() && !model.NewFile(filePath).IsCompressed() {
			local[tableName] = filePath
		}
	}

	if err := ValidateFileCount(len(order)); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(order))
	for _, tableName := range order {
		if err := claimTableName(tableName, local[tableName], tableNames); err != nil {
			return nil, err
		}
		files = append(files, local[tableName])
	}
	return files, nil
}

// baseExt returns the format extension after stripping compression.
func baseExt(path string) string {
	fileType, _ := model.DetectFileType(path)
	return fileType.String()
}

func claimTableName(tableName, filePath string, tableNames map[string]string) error {
	if existing, exists := tableNames[tableName]; exists {
		return fmt.Errorf("%w: table '%s' from files '%s' and '%s'",
			ErrDuplicateTableName, tableName, existing, filePath)
	}
	tableNames[tableName] = filePath
	return nil
}

// loadSingleFile converts one file and executes its script.
func (c *Connector) loadSingleFile(ctx context.Context, conn driver.Conn, filePath string) error {
	file := model.NewFile(filePath)
	header, rows, err := file.Read(ctx, c.opts)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	if err := ValidateColumnCount(len(header)); err != nil {
		return err
	}

	table := model.NewTable(file.TableName(), header, rows, c.opts)
	script := model.NewScript(table, c.opts.Schema)
	for _, stmt := range script.Statements() {
		if err := c.executeStatement(ctx, conn, stmt); err != nil {
			if unsafe := model.UnsafeIdentifiers(script.Columns); len(unsafe) > 0 {
				return fmt.Errorf("failed to execute statement for table %s (columns %s cannot be used unquoted): %w",
					table.Name(), strings.Join(unsafe, ", "), err)
			}
			return fmt.Errorf("failed to execute statement for table %s: %w", table.Name(), err)
		}
	}
	return nil
}

// executeStatement prepares and executes a statement without arguments.
func (c *Connector) executeStatement(ctx context.Context, conn driver.Conn, query string) error {
	prepared, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer prepared.Close()

	stmtExecCtx, ok := prepared.(driver.StmtExecContext)
	if !ok {
		return ErrStmtExecContextNotSupported
	}
	_, err = stmtExecCtx.ExecContext(ctx, nil)
	return err
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}
