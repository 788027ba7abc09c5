package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"karaoke/internal/logging"
)

// SearchMode selects the fields a search looks at.
type SearchMode string

const (
	SearchTitle  SearchMode = "title"
	SearchArtist SearchMode = "artist"
	// SearchText matches title or artist.
	SearchText SearchMode = "text"
	// SearchID looks a single song up by its numeric id.
	SearchID SearchMode = "id"
)

// ParseSearchMode accepts the mode names case-insensitively. Empty means
// SearchText.
func ParseSearchMode(raw string) (SearchMode, error) {
	switch mode := SearchMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return SearchText, nil
	case SearchTitle, SearchArtist, SearchText, SearchID:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown search mode %q", ErrInvalid, raw)
	}
}

// ResultType tells which slice of a SearchResult is populated.
type ResultType string

const (
	ResultSong   ResultType = "song"
	ResultArtist ResultType = "artist"
	ResultTitle  ResultType = "title"
)

// SearchQuery describes one page of a catalog search.
type SearchQuery struct {
	Text string
	Mode SearchMode
	// Exact compares whole values case-insensitively instead of by prefix.
	Exact bool
	// Short collapses title and artist searches into distinct names with song
	// counts. Text and id searches always return songs.
	Short  bool
	Limit  int
	Offset int
}

// Grouped reports whether q returns groups rather than songs.
func (q SearchQuery) Grouped() bool {
	return q.Short && (q.Mode == SearchTitle || q.Mode == SearchArtist)
}

// Group is one distinct title or artist and the number of songs carrying it.
type Group struct {
	Name  string
	Count int
}

// SearchResult is one page of matches. Total counts every match, not just
// the page.
type SearchResult struct {
	Type   ResultType
	Songs  []Song
	Groups []Group
	Total  int
}

// Search runs q against the catalog.
func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return SearchResult{}, fmt.Errorf("%w: search query is required", ErrInvalid)
	}
	mode, err := ParseSearchMode(string(q.Mode))
	if err != nil {
		return SearchResult{}, err
	}
	q.Mode = mode
	q.Offset = max(q.Offset, 0)

	var result SearchResult
	switch {
	case q.Mode == SearchID:
		result, err = s.searchID(ctx, q.Text)
	case q.Grouped():
		result.Type = ResultTitle
		if q.Mode == SearchArtist {
			result.Type = ResultArtist
		}
		result.Groups, result.Total, err = s.repo.SearchGroups(ctx, q)
	default:
		result.Type = ResultSong
		result.Songs, result.Total, err = s.repo.SearchSongs(ctx, q)
	}
	if err != nil {
		return SearchResult{}, err
	}
	logging.WithContext(ctx, s.logger).Debug("search completed",
		logging.String("mode", string(q.Mode)),
		logging.String("query", q.Text),
		logging.String("result_type", string(result.Type)),
		logging.Int("total", result.Total),
	)
	return result, nil
}

func (s *Service) searchID(ctx context.Context, raw string) (SearchResult, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return SearchResult{}, fmt.Errorf("%w: song id %q is not a positive integer", ErrInvalid, raw)
	}
	result := SearchResult{Type: ResultSong, Songs: []Song{}}
	song, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return SearchResult{}, err
	}
	result.Songs = append(result.Songs, song)
	result.Total = 1
	return result, nil
}
