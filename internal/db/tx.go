package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// txBeginner is satisfied by *pgxpool.Pool. Kept as an interface so the
// runner can be tested with a fake transaction.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Runner owns every transaction boundary in the application. Units of work
// receive the transaction handle and signal failure by returning an error,
// they never commit or roll back themselves.
type Runner struct {
	pool txBeginner
}

func NewRunner(pool txBeginner) *Runner {
	return &Runner{pool: pool}
}

// RunInTx begins a transaction, invokes fn with the handle, commits when fn
// returns nil and rolls back otherwise. A failed unit of work leaves no
// partial writes behind.
func (r *Runner) RunInTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	// no-op after a successful commit
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = fn(tx)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
