// Package db is C3 (Block Repository) and C4 (Transfer Repositories),
// grounded on the teacher's service/persist/postgres.NewPgxClient pool
// setup and db/gen/indexerdb's sqlc-generated query style, and on the
// Rust original's sqlx-based repositories (services/repositories/*.rs).
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPool opens a connection pool sized per spec.md §5 (max 15, min 5),
// retrying is left to the caller via context deadline — the teacher's
// NewPgxClient retries at startup; this module's binaries wrap the call
// in their own fatal-on-error init path instead of baking retry in here.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("db: parse connection string: %w", err)
	}
	cfg.MaxConns = 15
	cfg.MinConns = 5

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return pool, nil
}
