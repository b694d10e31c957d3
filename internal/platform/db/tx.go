package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn inside a transaction. The transaction is opened on the
// tenant-scoped connection when the context carries one, so the tenant's
// search_path stays in effect; otherwise it falls back to the pool. The
// transaction is stored in the context handed to fn, which makes every
// repository call inside fn join it. Rolls back on error or panic.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	var b beginner = pool
	if q := QuerierFromContext(ctx); q != nil {
		if tb, ok := q.(beginner); ok {
			b = tb
		}
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithQuerier(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
