package catalog

import (
	"context"
	"time"
)

// Repository persists songs. Get, Delete and RecordPlay return ErrNotFound
// for unknown ids.
type Repository interface {
	Create(ctx context.Context, song Song) (Song, error)
	Get(ctx context.Context, id int64) (Song, error)
	// List orders by title then artist.
	List(ctx context.Context, limit, offset int) ([]Song, error)
	// SearchSongs returns one page of songs matching q and the total number of
	// matches. Matching is case-insensitive, by prefix unless q.Exact is set.
	SearchSongs(ctx context.Context, q SearchQuery) ([]Song, int, error)
	// SearchGroups collapses the matches of a title or artist search into
	// distinct names, ordered by name, and returns the total number of names.
	SearchGroups(ctx context.Context, q SearchQuery) ([]Group, int, error)
	Delete(ctx context.Context, id int64) error
	RecordPlay(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int, error)
}
