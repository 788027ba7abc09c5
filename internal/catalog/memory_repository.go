package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps songs in memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	songs  map[int64]Song
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{songs: make(map[int64]Song)}
}

func (r *MemoryRepository) Create(_ context.Context, song Song) (Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.nextID++
	song.ID = r.nextID
	song.Plays = 0
	song.LastPlayed = time.Time{}
	song.CreatedAt = now
	song.UpdatedAt = now
	r.songs[song.ID] = song
	return song, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (Song, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	song, ok := r.songs[id]
	if !ok {
		return Song{}, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return song, nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]Song, error) {
	return paginate(r.matching(func(Song) bool { return true }, byTitle), limit, offset), nil
}

func (r *MemoryRepository) SearchSongs(_ context.Context, q SearchQuery) ([]Song, int, error) {
	order := byTitle
	if q.Mode == SearchArtist {
		order = byArtist
	}
	songs := r.matching(matcher(q), order)
	return paginate(songs, q.Limit, q.Offset), len(songs), nil
}

func (r *MemoryRepository) SearchGroups(_ context.Context, q SearchQuery) ([]Group, int, error) {
	name := func(s Song) string { return s.Title }
	if q.Mode == SearchArtist {
		name = func(s Song) string { return s.Artist }
	}
	counts := make(map[string]int)
	for _, song := range r.matching(matcher(q), byTitle) {
		counts[name(song)]++
	}
	groups := make([]Group, 0, len(counts))
	for value, count := range counts {
		groups = append(groups, Group{Name: value, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Name, groups[j].Name
		if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
			return la < lb
		}
		return a < b
	})
	return paginate(groups, q.Limit, q.Offset), len(groups), nil
}

func matcher(q SearchQuery) func(Song) bool {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	match := func(value string) bool {
		value = strings.ToLower(value)
		if q.Exact {
			return value == needle
		}
		return strings.HasPrefix(value, needle)
	}
	switch q.Mode {
	case SearchTitle:
		return func(s Song) bool { return match(s.Title) }
	case SearchArtist:
		return func(s Song) bool { return match(s.Artist) }
	default:
		return func(s Song) bool { return match(s.Title) || match(s.Artist) }
	}
}

func byTitle(a, b Song) bool {
	if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
		return ta < tb
	}
	if aa, ab := strings.ToLower(a.Artist), strings.ToLower(b.Artist); aa != ab {
		return aa < ab
	}
	return a.ID < b.ID
}

func byArtist(a, b Song) bool {
	if aa, ab := strings.ToLower(a.Artist), strings.ToLower(b.Artist); aa != ab {
		return aa < ab
	}
	return byTitle(a, b)
}

func (r *MemoryRepository) matching(keep func(Song) bool, less func(a, b Song) bool) []Song {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Song, 0, len(r.songs))
	for _, song := range r.songs {
		if keep(song) {
			out = append(out, song)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.songs[id]; !ok {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	delete(r.songs, id)
	return nil
}

func (r *MemoryRepository) RecordPlay(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	song, ok := r.songs[id]
	if !ok {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	song.Plays++
	song.LastPlayed = at.UTC()
	song.UpdatedAt = at.UTC()
	r.songs[id] = song
	return nil
}

func (r *MemoryRepository) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.songs), nil
}
