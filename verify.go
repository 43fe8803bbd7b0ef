package csv2sql

import (
	"context"
	"fmt"

	"github.com/nao1215/csv2sql/loader"
	"go.uber.org/zap"
)

// verifyDSN is the database scripts are verified against.
const verifyDSN = ":memory:"

// Verify executes the script in an in-memory SQLite database and checks
// that the table holds exactly one row per INSERT statement.
//
// Column names are not quoted in scripts, so a column named after an SQL
// keyword (order, select), starting with a digit or left empty by header
// normalization fails to load; the error then names those columns.
func Verify(ctx context.Context, script *Script) error {
	if script == nil {
		return fmt.Errorf("%w: script cannot be nil", ErrInvalidOptions)
	}

	count, err := loader.Load(ctx, verifyDSN, script)
	if err != nil {
		return NewErrorContext("verify", "").WithTable(script.Table).Error(err)
	}
	if count != int64(len(script.Inserts)) {
		return NewErrorContext("verify", "").
			WithTable(script.Table).
			WithDetails(fmt.Sprintf("expected %d rows, got %d", len(script.Inserts), count)).
			Error(ErrVerifyMismatch)
	}
	return nil
}

// Apply executes the script inside one transaction on the database named by
// dsn and returns the resulting row count of the table. The backend is
// chosen from the DSN: "sqlite://path", a path ending in .db, .sqlite or
// .sqlite3, "postgres://..." or "sqlserver://...".
func Apply(ctx context.Context, dsn string, script *Script, opts Options) (int64, error) {
	if script == nil {
		return 0, fmt.Errorf("%w: script cannot be nil", ErrInvalidOptions)
	}

	count, err := loader.Load(ctx, dsn, script)
	if err != nil {
		return 0, NewErrorContext("apply", "").WithTable(script.Table).Error(err)
	}
	opts.Log().Info("applied script",
		zap.String("table", script.Table),
		zap.Int64("rows", count))
	return count, nil
}
