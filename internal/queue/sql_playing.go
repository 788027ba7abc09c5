package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"karaoke/internal/storage"
)

func (v sqlView) SetPlaying(ctx context.Context, queueID string, ref ItemRef) (Playing, error) {
	now := time.Now().UTC()
	_, err := v.ext.ExecContext(ctx, v.q(`INSERT INTO now_playing (`+playingColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (queue_id) DO UPDATE SET
            song_id = excluded.song_id,
            title = excluded.title,
            artist = excluded.artist,
            source = excluded.source,
            filename = excluded.filename,
            duration = excluded.duration,
            started_at = excluded.started_at`),
		queueID, ref.SongID, ref.Title, ref.Artist, ref.Source, ref.Filename, ref.Duration, storage.NewTime(now),
	)
	if err != nil {
		return Playing{}, fmt.Errorf("set playing: %w", err)
	}
	return Playing{QueueID: queueID, Ref: ref, StartedAt: now}, nil
}

func (v sqlView) ClearPlaying(ctx context.Context, queueID string) (bool, error) {
	res, err := v.ext.ExecContext(ctx, v.q("DELETE FROM now_playing WHERE queue_id = ?"), queueID)
	if err != nil {
		return false, fmt.Errorf("clear playing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear playing rows: %w", err)
	}
	return affected > 0, nil
}

func (v sqlView) Playing(ctx context.Context, queueID string) (Playing, bool, error) {
	var row playingRow
	err := sqlx.GetContext(ctx, v.ext, &row,
		v.q("SELECT "+playingColumns+" FROM now_playing WHERE queue_id = ?"), queueID)
	if errors.Is(err, sql.ErrNoRows) {
		return Playing{}, false, nil
	}
	if err != nil {
		return Playing{}, false, fmt.Errorf("get playing: %w", err)
	}
	return row.playing(), true, nil
}
