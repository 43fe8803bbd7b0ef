package loader

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlTarget runs scripts through database/sql.
type sqlTarget struct {
	backend string
	db      *sql.DB
}

// openSQL opens and pings a database/sql handle.
func openSQL(ctx context.Context, backend, driverName, dsn string) (*sqlTarget, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlTarget{backend: backend, db: db}, nil
}

func (t *sqlTarget) Backend() string { return t.backend }

func (t *sqlTarget) Exec(ctx context.Context, statements []string) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Ignore rollback error, the exec error is returned
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *sqlTarget) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return n, nil
}

func (t *sqlTarget) Close() error {
	return t.db.Close()
}
