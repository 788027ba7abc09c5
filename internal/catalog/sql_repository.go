package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"karaoke/internal/storage"
)

const songColumns = "song_id, title, artist, source, filename, duration, plays, last_played, created_at, updated_at"

type songRow struct {
	ID         int64        `db:"song_id"`
	Title      string       `db:"title"`
	Artist     string       `db:"artist"`
	Source     string       `db:"source"`
	Filename   string       `db:"filename"`
	Duration   int          `db:"duration"`
	Plays      int          `db:"plays"`
	LastPlayed storage.Time `db:"last_played"`
	CreatedAt  storage.Time `db:"created_at"`
	UpdatedAt  storage.Time `db:"updated_at"`
}

func (r songRow) song() Song {
	return Song{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		Source:     r.Source,
		Filename:   r.Filename,
		Duration:   r.Duration,
		Plays:      r.Plays,
		LastPlayed: r.LastPlayed.Time,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

// SQLRepository stores songs in the shared storage database.
type SQLRepository struct {
	db *storage.DB
}

// NewSQLRepository wraps an opened database.
func NewSQLRepository(db *storage.DB) (*SQLRepository, error) {
	if db == nil || db.DB == nil {
		return nil, errors.New("catalog: database is nil")
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Create(ctx context.Context, song Song) (Song, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`INSERT INTO songs (
            title, artist, source, filename, duration, plays, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, 0, ?, ?) RETURNING song_id`),
		song.Title, song.Artist, song.Source, song.Filename, song.Duration,
		storage.NewTime(now), storage.NewTime(now),
	)
	if err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}
	song.ID = id
	song.Plays = 0
	song.LastPlayed = time.Time{}
	song.CreatedAt = now
	song.UpdatedAt = now
	return song, nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (Song, error) {
	var row songRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+songColumns+" FROM songs WHERE song_id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song %d: %w", id, err)
	}
	return row.song(), nil
}

func (r *SQLRepository) List(ctx context.Context, limit, offset int) ([]Song, error) {
	return r.selectSongs(ctx, "", orderByTitle, nil, limit, offset)
}

const (
	orderByTitle  = "LOWER(title), LOWER(artist), song_id"
	orderByArtist = "LOWER(artist), LOWER(title), song_id"
)

func (r *SQLRepository) SearchSongs(ctx context.Context, q SearchQuery) ([]Song, int, error) {
	where, args := searchFilter(q)
	order := orderByTitle
	if q.Mode == SearchArtist {
		order = orderByArtist
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM songs "+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count songs: %w", err)
	}
	songs, err := r.selectSongs(ctx, where, order, args, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	return songs, total, nil
}

type groupRow struct {
	Name string `db:"name"`
	Hits int    `db:"hits"`
}

func (r *SQLRepository) SearchGroups(ctx context.Context, q SearchQuery) ([]Group, int, error) {
	column := "title"
	if q.Mode == SearchArtist {
		column = "artist"
	}
	where, args := searchFilter(q)
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(DISTINCT "+column+") FROM songs "+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count %ss: %w", column, err)
	}
	query, args := r.paged("SELECT "+column+" AS name, COUNT(*) AS hits FROM songs "+where+
		" GROUP BY "+column+" ORDER BY LOWER("+column+"), "+column, args, q.Limit, q.Offset)
	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("group %ss: %w", column, err)
	}
	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, Group{Name: row.Name, Count: row.Hits})
	}
	return groups, total, nil
}

// searchFilter builds the WHERE clause for q. Comparisons run on lowered
// values; prefix matches escape LIKE wildcards in the needle.
func searchFilter(q SearchQuery) (string, []any) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	cmp, arg := " = ?", needle
	if !q.Exact {
		cmp, arg = ` LIKE ? ESCAPE '\'`, escapeLike(needle)+"%"
	}
	switch q.Mode {
	case SearchTitle:
		return "WHERE LOWER(title)" + cmp, []any{arg}
	case SearchArtist:
		return "WHERE LOWER(artist)" + cmp, []any{arg}
	default:
		return "WHERE LOWER(title)" + cmp + " OR LOWER(artist)" + cmp, []any{arg, arg}
	}
}

func (r *SQLRepository) selectSongs(ctx context.Context, where, order string, args []any, limit, offset int) ([]Song, error) {
	query, args := r.paged("SELECT "+songColumns+" FROM songs "+where+" ORDER BY "+order, args, limit, offset)
	var rows []songRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	songs := make([]Song, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, row.song())
	}
	return songs, nil
}

func (r *SQLRepository) paged(query string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	} else if offset > 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded there and
		// PostgreSQL accepts LIMIT ALL.
		if r.db.Dialect() == storage.Postgres {
			query += " LIMIT ALL OFFSET ?"
		} else {
			query += " LIMIT -1 OFFSET ?"
		}
		args = append(args, offset)
	}
	return query, args
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.db.ExecWithRetry(ctx, "DELETE FROM songs WHERE song_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) RecordPlay(ctx context.Context, id int64, at time.Time) error {
	stamp := storage.NewTime(at)
	affected, err := r.db.ExecWithRetry(ctx,
		"UPDATE songs SET plays = plays + 1, last_played = ?, updated_at = ? WHERE song_id = ?",
		stamp, stamp, id)
	if err != nil {
		return fmt.Errorf("record play %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM songs"); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return count, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
