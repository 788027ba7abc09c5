package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"karaoke/internal/catalog"
	"karaoke/internal/queue"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FormatPosition renders a position for URL paths. ParsePosition reverses it
// exactly.
func FormatPosition(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// ParsePosition parses a position path segment.
func ParsePosition(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

// FromItemRef converts a queue song reference.
func FromItemRef(ref queue.ItemRef) Song {
	return Song{
		SongID:   ref.SongID,
		Title:    ref.Title,
		Artist:   ref.Artist,
		Source:   ref.Source,
		Filename: ref.Filename,
		Duration: ref.Duration,
	}
}

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item queue.Item) QueueItem {
	return QueueItem{
		ID:        item.ID,
		QueueID:   item.QueueID,
		Position:  item.Position,
		Song:      FromItemRef(item.Ref),
		CreatedAt: formatTime(item.CreatedAt),
	}
}

// FromQueueItems converts queue records, returning an empty (non-nil) slice
// for empty queues so JSON renders [].
func FromQueueItems(items []queue.Item) []QueueItem {
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromPlaying converts the now-playing pointer; nil stays nil.
func FromPlaying(p *queue.Playing) *Playing {
	if p == nil {
		return nil
	}
	return &Playing{
		QueueID:   p.QueueID,
		Song:      FromItemRef(p.Ref),
		StartedAt: formatTime(p.StartedAt),
	}
}

func FromSummaries(summaries []queue.Summary) []QueueSummary {
	out := make([]QueueSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, QueueSummary{QueueID: s.QueueID, Items: s.Items})
	}
	return out
}

// FromSong converts a catalog song.
func FromSong(song catalog.Song) CatalogSong {
	return CatalogSong{
		ID:         song.ID,
		Title:      song.Title,
		Artist:     song.Artist,
		Source:     song.Source,
		Filename:   song.Filename,
		Duration:   song.Duration,
		Plays:      song.Plays,
		LastPlayed: formatTime(song.LastPlayed),
		CreatedAt:  formatTime(song.CreatedAt),
	}
}

func FromSongs(songs []catalog.Song) []CatalogSong {
	out := make([]CatalogSong, 0, len(songs))
	for _, song := range songs {
		out = append(out, FromSong(song))
	}
	return out
}

// ToQuery converts a search request into a catalog query.
func (r SearchSongsRequest) ToQuery() (catalog.SearchQuery, error) {
	mode, err := catalog.ParseSearchMode(r.SearchMode)
	if err != nil {
		return catalog.SearchQuery{}, err
	}
	q := catalog.SearchQuery{Text: r.Query, Mode: mode, Exact: r.Exact, Limit: r.Limit, Offset: r.Offset}
	switch strings.ToLower(strings.TrimSpace(r.ResultType)) {
	case "", ResultTypeShort:
		q.Short = true
	case ResultTypeFull:
	default:
		return catalog.SearchQuery{}, fmt.Errorf("%w: unknown result type %q", catalog.ErrInvalid, r.ResultType)
	}
	return q, nil
}

// FromSearchResult converts a catalog search page.
func FromSearchResult(result catalog.SearchResult) SearchSongsResponse {
	resp := SearchSongsResponse{ResultType: string(result.Type), Total: result.Total}
	if result.Type == catalog.ResultSong {
		resp.Songs = FromSongs(result.Songs)
	}
	for _, g := range result.Groups {
		resp.Groups = append(resp.Groups, SearchGroup{Name: g.Name, Count: g.Count})
	}
	return resp
}

// ToSong converts a create request into a catalog song.
func (r CreateSongRequest) ToSong() catalog.Song {
	return catalog.Song{
		Title:    r.Title,
		Artist:   r.Artist,
		Source:   r.Source,
		Filename: r.Filename,
		Duration: r.Duration,
	}
}
