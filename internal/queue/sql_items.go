package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"karaoke/internal/storage"
)

func (v sqlView) Insert(ctx context.Context, queueID string, position float64, ref ItemRef) (Item, error) {
	now := time.Now().UTC()
	var id int64
	err := sqlx.GetContext(ctx, v.ext, &id, v.q(`INSERT INTO queue_items (
            queue_id, position, song_id, title, artist, source, filename, duration, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		queueID, position, ref.SongID, ref.Title, ref.Artist, ref.Source, ref.Filename, ref.Duration,
		storage.NewTime(now),
	)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return Item{}, conflictAt("insert", queueID, position, err)
		}
		return Item{}, fmt.Errorf("insert queue item: %w", err)
	}
	return Item{ID: id, QueueID: queueID, Position: position, Ref: ref, CreatedAt: now}, nil
}

func (v sqlView) DeleteAt(ctx context.Context, queueID string, position float64) error {
	res, err := v.ext.ExecContext(ctx, v.q("DELETE FROM queue_items WHERE queue_id = ? AND position = ?"), queueID, position)
	if err != nil {
		return fmt.Errorf("delete queue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete queue item rows: %w", err)
	}
	if affected == 0 {
		return notFoundAt("delete", queueID, position)
	}
	return nil
}

func (v sqlView) FirstPosition(ctx context.Context, queueID string) (float64, error) {
	var pos float64
	if err := sqlx.GetContext(ctx, v.ext, &pos,
		v.q("SELECT COALESCE(MIN(position), ?) FROM queue_items WHERE queue_id = ?"), EmptyFirstPosition, queueID); err != nil {
		return 0, fmt.Errorf("first position: %w", err)
	}
	return pos, nil
}

func (v sqlView) LastPosition(ctx context.Context, queueID string) (float64, error) {
	var pos float64
	if err := sqlx.GetContext(ctx, v.ext, &pos,
		v.q("SELECT COALESCE(MAX(position), ?) FROM queue_items WHERE queue_id = ?"), EmptyLastPosition, queueID); err != nil {
		return 0, fmt.Errorf("last position: %w", err)
	}
	return pos, nil
}

func (v sqlView) NextPositionAfter(ctx context.Context, queueID string, position float64) (float64, bool, error) {
	return v.scanPosition(ctx, "next position",
		"SELECT position FROM queue_items WHERE queue_id = ? AND position > ? ORDER BY position LIMIT 1",
		queueID, position)
}

func (v sqlView) PositionBefore(ctx context.Context, queueID string, position float64, skip int) (float64, bool, error) {
	if skip < 0 {
		skip = 0
	}
	return v.scanPosition(ctx, "previous position",
		"SELECT position FROM queue_items WHERE queue_id = ? AND position < ? ORDER BY position DESC LIMIT 1 OFFSET ?",
		queueID, position, skip)
}

func (v sqlView) scanPosition(ctx context.Context, what, query string, args ...any) (float64, bool, error) {
	var pos float64
	err := sqlx.GetContext(ctx, v.ext, &pos, v.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", what, err)
	}
	return pos, true, nil
}

func (v sqlView) TopN(ctx context.Context, queueID string, n int) ([]Item, error) {
	query := "SELECT " + itemColumns + " FROM queue_items WHERE queue_id = ? ORDER BY position"
	args := []any{queueID}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, v.ext, &rows, v.q(query), args...); err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, nil
}

func (v sqlView) Get(ctx context.Context, queueID string, position float64) (Item, bool, error) {
	var row itemRow
	err := sqlx.GetContext(ctx, v.ext, &row,
		v.q("SELECT "+itemColumns+" FROM queue_items WHERE queue_id = ? AND position = ?"), queueID, position)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("get queue item: %w", err)
	}
	return row.item(), true, nil
}

func (v sqlView) Count(ctx context.Context, queueID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, v.ext, &count, v.q("SELECT COUNT(1) FROM queue_items WHERE queue_id = ?"), queueID); err != nil {
		return 0, fmt.Errorf("count queue items: %w", err)
	}
	return count, nil
}

func (v sqlView) UpdatePosition(ctx context.Context, queueID string, oldPosition, newPosition float64) error {
	if oldPosition == newPosition {
		_, ok, err := v.Get(ctx, queueID, oldPosition)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundAt("update_position", queueID, oldPosition)
		}
		return nil
	}
	res, err := v.ext.ExecContext(ctx,
		v.q("UPDATE queue_items SET position = ? WHERE queue_id = ? AND position = ?"),
		newPosition, queueID, oldPosition)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return conflictAt("update_position", queueID, newPosition, err)
		}
		return fmt.Errorf("update position: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update position rows: %w", err)
	}
	if affected == 0 {
		return notFoundAt("update_position", queueID, oldPosition)
	}
	return nil
}

// Renumber moves every row to a temporary negative slot below the current
// minimum first, then to 1..N, so the unique index never sees two rows on the
// same position.
func (v sqlView) Renumber(ctx context.Context, queueID string) error {
	var rows []struct {
		ID       int64   `db:"id"`
		Position float64 `db:"position"`
	}
	if err := sqlx.SelectContext(ctx, v.ext, &rows,
		v.q("SELECT id, position FROM queue_items WHERE queue_id = ? ORDER BY position"), queueID); err != nil {
		return fmt.Errorf("renumber: load positions: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	update := v.q("UPDATE queue_items SET position = ? WHERE id = ?")
	base := math.Min(rows[0].Position, 0) - 1
	for i, row := range rows {
		if _, err := v.ext.ExecContext(ctx, update, base-float64(i), row.ID); err != nil {
			return fmt.Errorf("renumber: park item %d: %w", row.ID, err)
		}
	}
	for i, row := range rows {
		if _, err := v.ext.ExecContext(ctx, update, float64(i+1), row.ID); err != nil {
			return fmt.Errorf("renumber: place item %d: %w", row.ID, err)
		}
	}
	return nil
}

func (v sqlView) Clear(ctx context.Context, queueID string) (int, error) {
	res, err := v.ext.ExecContext(ctx, v.q("DELETE FROM queue_items WHERE queue_id = ?"), queueID)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear queue rows: %w", err)
	}
	return int(affected), nil
}
