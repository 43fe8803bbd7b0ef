package loader

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func init() {
	Register(BackendPostgres, newPostgres)
}

// postgresTarget runs scripts over a single pgx connection.
type postgresTarget struct {
	conn *pgx.Conn
}

func newPostgres(ctx context.Context, dsn string) (Target, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &postgresTarget{conn: conn}, nil
}

func (t *postgresTarget) Backend() string { return BackendPostgres }

func (t *postgresTarget) Exec(ctx context.Context, statements []string) error {
	return pgx.BeginFunc(ctx, t.conn, func(tx pgx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (t *postgresTarget) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := t.conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return n, nil
}

func (t *postgresTarget) Close() error {
	return t.conn.Close(context.Background())
}
