package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"karaoke/internal/storage"
)

// SQLStore implements Store on top of the shared SQLite/PostgreSQL database.
type SQLStore struct {
	sqlView
	db *storage.DB
}

// NewSQLStore binds a store to an opened database. The caller owns db unless
// it hands ownership over through Close.
func NewSQLStore(db *storage.DB) (*SQLStore, error) {
	if db == nil || db.DB == nil {
		return nil, errors.New("queue: database is nil")
	}
	return &SQLStore{
		sqlView: sqlView{ext: db.DB, bind: sqlx.BindType(db.DriverName())},
		db:      db,
	}, nil
}

// InTx runs fn inside one database transaction. PostgreSQL additionally takes
// a transaction-scoped advisory lock on the queue id so concurrent writers of
// the same room serialize; SQLite already serializes writers through
// BEGIN IMMEDIATE.
func (s *SQLStore) InTx(ctx context.Context, queueID string, fn func(tx Tx) error) error {
	return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if s.db.Dialect() == storage.Postgres {
			if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", queueID); err != nil {
				return fmt.Errorf("lock queue %s: %w", queueID, err)
			}
		}
		return fn(sqlView{ext: tx, bind: s.bind})
	})
}

// Queues lists every queue that holds at least one item.
func (s *SQLStore) Queues(ctx context.Context) ([]Summary, error) {
	var rows []struct {
		QueueID string `db:"queue_id"`
		Items   int    `db:"items"`
	}
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		"SELECT queue_id, COUNT(1) AS items FROM queue_items GROUP BY queue_id ORDER BY queue_id")
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, Summary{QueueID: row.QueueID, Items: row.Items})
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
