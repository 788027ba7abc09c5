package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise. Lock contention (SQLITE_BUSY, PostgreSQL
// serialization failures) restarts the whole transaction with backoff, so fn
// must not have side effects outside tx.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// ExecWithRetry executes a single statement outside an explicit transaction,
// retrying on lock contention.
func (db *DB) ExecWithRetry(ctx context.Context, query string, args ...any) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := db.ExecContext(ctx, db.Rebind(query), args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
