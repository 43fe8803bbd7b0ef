package loader

import (
	"context"

	_ "modernc.org/sqlite"
)

func init() {
	Register(BackendSQLite, newSQLite)
}

func newSQLite(ctx context.Context, dsn string) (Target, error) {
	t, err := openSQL(ctx, BackendSQLite, "sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	t.db.SetMaxOpenConns(1)
	return t, nil
}
