package queue

import (
	"github.com/jmoiron/sqlx"

	"karaoke/internal/storage"
)

const itemColumns = "id, queue_id, position, song_id, title, artist, source, filename, duration, created_at"

const playingColumns = "queue_id, song_id, title, artist, source, filename, duration, started_at"

// sqlView runs store statements against either the pool or an open
// transaction. Queries are written with ? placeholders and rebound.
type sqlView struct {
	ext  sqlx.ExtContext
	bind int
}

func (v sqlView) q(query string) string {
	return sqlx.Rebind(v.bind, query)
}

type itemRow struct {
	ID        int64        `db:"id"`
	QueueID   string       `db:"queue_id"`
	Position  float64      `db:"position"`
	SongID    int64        `db:"song_id"`
	Title     string       `db:"title"`
	Artist    string       `db:"artist"`
	Source    string       `db:"source"`
	Filename  string       `db:"filename"`
	Duration  int          `db:"duration"`
	CreatedAt storage.Time `db:"created_at"`
}

func (r itemRow) item() Item {
	return Item{
		ID:       r.ID,
		QueueID:  r.QueueID,
		Position: r.Position,
		Ref: ItemRef{
			SongID:   r.SongID,
			Title:    r.Title,
			Artist:   r.Artist,
			Source:   r.Source,
			Filename: r.Filename,
			Duration: r.Duration,
		},
		CreatedAt: r.CreatedAt.Time,
	}
}

type playingRow struct {
	QueueID   string       `db:"queue_id"`
	SongID    int64        `db:"song_id"`
	Title     string       `db:"title"`
	Artist    string       `db:"artist"`
	Source    string       `db:"source"`
	Filename  string       `db:"filename"`
	Duration  int          `db:"duration"`
	StartedAt storage.Time `db:"started_at"`
}

func (r playingRow) playing() Playing {
	return Playing{
		QueueID: r.QueueID,
		Ref: ItemRef{
			SongID:   r.SongID,
			Title:    r.Title,
			Artist:   r.Artist,
			Source:   r.Source,
			Filename: r.Filename,
			Duration: r.Duration,
		},
		StartedAt: r.StartedAt.Time,
	}
}
