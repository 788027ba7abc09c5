package catalog

import (
	"errors"
	"time"

	"karaoke/internal/queue"
)

var (
	// ErrNotFound reports an unknown song id.
	ErrNotFound = errors.New("song not found")
	// ErrInvalid reports a song that fails validation.
	ErrInvalid = errors.New("invalid song")
)

// Song is a catalog entry.
type Song struct {
	ID         int64
	Title      string
	Artist     string
	Source     string
	Filename   string
	Duration   int // seconds
	Plays      int
	LastPlayed time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ref converts the song into the reference stored on queue items.
func (s Song) Ref() queue.ItemRef {
	return queue.ItemRef{
		SongID:   s.ID,
		Title:    s.Title,
		Artist:   s.Artist,
		Source:   s.Source,
		Filename: s.Filename,
		Duration: s.Duration,
	}
}
