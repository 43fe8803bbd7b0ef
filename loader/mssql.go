package loader

import (
	"context"

	_ "github.com/microsoft/go-mssqldb"
)

func init() {
	Register(BackendSQLServer, newSQLServer)
}

func newSQLServer(ctx context.Context, dsn string) (Target, error) {
	return openSQL(ctx, BackendSQLServer, "sqlserver", dsn)
}
