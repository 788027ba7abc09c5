package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/catalog"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/storage"
)

func repositories(t *testing.T) map[string]catalog.Repository {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), 0)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	sqlRepo, err := catalog.NewSQLRepository(db)
	if err != nil {
		t.Fatalf("NewSQLRepository: %v", err)
	}
	return map[string]catalog.Repository{
		"memory": catalog.NewMemoryRepository(),
		"sqlite": sqlRepo,
	}
}

func forEachService(t *testing.T, fn func(t *testing.T, svc *catalog.Service)) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			svc, err := catalog.NewService(repo, logging.NewNop())
			if err != nil {
				t.Fatalf("NewService: %v", err)
			}
			fn(t, svc)
		})
	}
}

func mustCreate(t *testing.T, svc *catalog.Service, title, artist string) catalog.Song {
	t.Helper()
	song, err := svc.Create(context.Background(), catalog.Song{Title: title, Artist: artist, Duration: 200})
	if err != nil {
		t.Fatalf("Create %q: %v", title, err)
	}
	return song
}

func titles(songs []catalog.Song) string {
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Title)
	}
	return strings.Join(out, ",")
}

func TestCreateValidatesAndTrims(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		song, err := svc.Create(ctx, catalog.Song{Title: "  Africa ", Artist: "Toto", Filename: "africa.cdg"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if song.ID <= 0 || song.Title != "Africa" || song.CreatedAt.IsZero() {
			t.Fatalf("unexpected song %+v", song)
		}

		for _, bad := range []catalog.Song{
			{Title: "", Artist: "x"},
			{Title: "x", Artist: "  "},
			{Title: "x", Artist: "y", Duration: -1},
		} {
			if _, err := svc.Create(ctx, bad); !errors.Is(err, catalog.ErrInvalid) {
				t.Fatalf("expected ErrInvalid for %+v, got %v", bad, err)
			}
		}

		got, err := svc.Get(ctx, song.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Filename != "africa.cdg" || got.Artist != "Toto" {
			t.Fatalf("unexpected stored song %+v", got)
		}
		if _, err := svc.Get(ctx, song.ID+100); !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestListAndSearch(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		mustCreate(t, svc, "Dancing Queen", "ABBA")
		mustCreate(t, svc, "africa", "Toto")
		mustCreate(t, svc, "Bohemian Rhapsody", "Queen")
		mustCreate(t, svc, "100% Pure Love", "Crystal Waters")

		all, err := svc.List(ctx, 0, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got := titles(all); got != "100% Pure Love,africa,Bohemian Rhapsody,Dancing Queen" {
			t.Fatalf("List order = %s", got)
		}

		page, err := svc.List(ctx, 2, 1)
		if err != nil {
			t.Fatalf("List page: %v", err)
		}
		if got := titles(page); got != "africa,Bohemian Rhapsody" {
			t.Fatalf("List page = %s", got)
		}

		tail, err := svc.List(ctx, 0, 3)
		if err != nil {
			t.Fatalf("List offset only: %v", err)
		}
		if got := titles(tail); got != "Dancing Queen" {
			t.Fatalf("List offset only = %s", got)
		}

		prefix, err := svc.Search(ctx, catalog.SearchQuery{Text: "QUE"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if got := titles(prefix.Songs); got != "Bohemian Rhapsody" || prefix.Type != catalog.ResultSong || prefix.Total != 1 {
			t.Fatalf("prefix search = %s (%s, total %d)", got, prefix.Type, prefix.Total)
		}

		exact, err := svc.Search(ctx, catalog.SearchQuery{Text: "abba", Exact: true})
		if err != nil {
			t.Fatalf("exact Search: %v", err)
		}
		if got := titles(exact.Songs); got != "Dancing Queen" {
			t.Fatalf("exact search = %s", got)
		}

		literal, err := svc.Search(ctx, catalog.SearchQuery{Text: "100%"})
		if err != nil {
			t.Fatalf("Search wildcard: %v", err)
		}
		if got := titles(literal.Songs); got != "100% Pure Love" {
			t.Fatalf("wildcards must match literally, got %s", got)
		}

		if _, err := svc.Search(ctx, catalog.SearchQuery{Text: "  "}); !errors.Is(err, catalog.ErrInvalid) {
			t.Fatalf("expected ErrInvalid for empty query, got %v", err)
		}
	})
}

func groups(gs []catalog.Group) string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, fmt.Sprintf("%s:%d", g.Name, g.Count))
	}
	return strings.Join(out, ",")
}

func TestSearchModesAndGroups(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		mustCreate(t, svc, "Dancing Queen", "ABBA")
		mustCreate(t, svc, "Waterloo", "ABBA")
		mustCreate(t, svc, "Mamma Mia", "ABBA")
		mustCreate(t, svc, "Abracadabra", "Steve Miller Band")
		mustCreate(t, svc, "Africa", "Toto")
		mustCreate(t, svc, "Africa", "Weezer")
		hold := mustCreate(t, svc, "Hold the Line", "Toto")

		byTitle, err := svc.Search(ctx, catalog.SearchQuery{Text: "a", Mode: catalog.SearchTitle, Limit: 2})
		if err != nil {
			t.Fatalf("title search: %v", err)
		}
		if got := titles(byTitle.Songs); got != "Abracadabra,Africa" || byTitle.Total != 3 {
			t.Fatalf("title search = %s total %d", got, byTitle.Total)
		}

		byArtist, err := svc.Search(ctx, catalog.SearchQuery{Text: "abba", Mode: catalog.SearchArtist, Offset: 1})
		if err != nil {
			t.Fatalf("artist search: %v", err)
		}
		if got := titles(byArtist.Songs); got != "Mamma Mia,Waterloo" || byArtist.Total != 3 {
			t.Fatalf("artist search = %s total %d", got, byArtist.Total)
		}

		artists, err := svc.Search(ctx, catalog.SearchQuery{Text: "t", Mode: catalog.SearchArtist, Short: true})
		if err != nil {
			t.Fatalf("short artist search: %v", err)
		}
		if artists.Type != catalog.ResultArtist || groups(artists.Groups) != "Toto:2" || artists.Total != 1 || artists.Songs != nil {
			t.Fatalf("short artist search = %+v", artists)
		}

		titleGroups, err := svc.Search(ctx, catalog.SearchQuery{Text: "a", Mode: catalog.SearchTitle, Short: true, Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("short title search: %v", err)
		}
		if titleGroups.Type != catalog.ResultTitle || groups(titleGroups.Groups) != "Africa:2" || titleGroups.Total != 2 {
			t.Fatalf("short title search = %+v", titleGroups)
		}

		// Short only groups title and artist searches.
		text, err := svc.Search(ctx, catalog.SearchQuery{Text: "toto", Short: true})
		if err != nil {
			t.Fatalf("text search: %v", err)
		}
		if text.Type != catalog.ResultSong || titles(text.Songs) != "Africa,Hold the Line" || text.Total != 2 {
			t.Fatalf("text search = %+v", text)
		}

		byID, err := svc.Search(ctx, catalog.SearchQuery{Text: fmt.Sprint(hold.ID), Mode: catalog.SearchID})
		if err != nil {
			t.Fatalf("id search: %v", err)
		}
		if titles(byID.Songs) != "Hold the Line" || byID.Total != 1 {
			t.Fatalf("id search = %+v", byID)
		}
		missing, err := svc.Search(ctx, catalog.SearchQuery{Text: "9999", Mode: catalog.SearchID})
		if err != nil {
			t.Fatalf("missing id search: %v", err)
		}
		if len(missing.Songs) != 0 || missing.Total != 0 {
			t.Fatalf("missing id search = %+v", missing)
		}

		if _, err := svc.Search(ctx, catalog.SearchQuery{Text: "abc", Mode: catalog.SearchID}); !errors.Is(err, catalog.ErrInvalid) {
			t.Fatalf("expected ErrInvalid for non-numeric id, got %v", err)
		}
		if _, err := svc.Search(ctx, catalog.SearchQuery{Text: "abba", Mode: "lyrics"}); !errors.Is(err, catalog.ErrInvalid) {
			t.Fatalf("expected ErrInvalid for unknown mode, got %v", err)
		}
	})
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    catalog.SearchMode
		wantErr bool
	}{
		{raw: "", want: catalog.SearchText},
		{raw: " Title ", want: catalog.SearchTitle},
		{raw: "ARTIST", want: catalog.SearchArtist},
		{raw: "id", want: catalog.SearchID},
		{raw: "genre", wantErr: true},
	}
	for _, tt := range tests {
		got, err := catalog.ParseSearchMode(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseSearchMode(%q) = %q, %v", tt.raw, got, err)
		}
	}
}

func TestDeleteAndRecordPlay(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		song := mustCreate(t, svc, "Africa", "Toto")

		if err := svc.RecordPlay(ctx, song.ID); err != nil {
			t.Fatalf("RecordPlay: %v", err)
		}
		if err := svc.RecordPlay(ctx, song.ID); err != nil {
			t.Fatalf("RecordPlay: %v", err)
		}
		got, err := svc.Get(ctx, song.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Plays != 2 || got.LastPlayed.IsZero() {
			t.Fatalf("expected 2 plays with timestamp, got %+v", got)
		}

		if err := svc.Delete(ctx, song.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := svc.Delete(ctx, song.ID); !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
		if err := svc.RecordPlay(ctx, song.ID); !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on RecordPlay, got %v", err)
		}
		count, err := svc.Count(ctx)
		if err != nil || count != 0 {
			t.Fatalf("Count = %d, %v", count, err)
		}
	})
}

func TestLookupSongFeedsQueueEngine(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		song := mustCreate(t, svc, "Africa", "Toto")

		_, err := svc.LookupSong(ctx, song.ID+1)
		if !errors.Is(err, queue.ErrNotFound) || queue.CodeOf(err) != queue.CodeNoSong {
			t.Fatalf("expected NO_SONG_FOUND, got %v", err)
		}

		engine, err := queue.NewEngine(queue.NewMemoryStore(), queue.WithSongLookup(svc))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		item, err := engine.EnqueueAtEnd(ctx, "room", song.ID)
		if err != nil {
			t.Fatalf("EnqueueAtEnd: %v", err)
		}
		if item.Ref.Title != "Africa" || item.Ref.Artist != "Toto" || item.Ref.Duration != 200 {
			t.Fatalf("unexpected ref %+v", item.Ref)
		}
		if _, _, err := engine.PlayNext(ctx, "room"); err != nil {
			t.Fatalf("PlayNext: %v", err)
		}
		got, err := svc.Get(ctx, song.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Plays != 1 {
			t.Fatalf("expected play recorded through the engine, got %d", got.Plays)
		}
	})
}

func TestImportYAML(t *testing.T) {
	forEachService(t, func(t *testing.T, svc *catalog.Service) {
		ctx := context.Background()
		doc := `songs:
  - title: Africa
    artist: Toto
    source: karafun
    filename: toto-africa.mp4
    duration: 295
  - title: Dancing Queen
    artist: ABBA
`
		created, err := svc.ImportYAML(ctx, strings.NewReader(doc))
		if err != nil {
			t.Fatalf("ImportYAML: %v", err)
		}
		if len(created) != 2 || created[0].Source != "karafun" || created[0].Duration != 295 {
			t.Fatalf("unexpected import %+v", created)
		}

		invalid := "songs:\n  - title: Lonely\n"
		if _, err := svc.ImportYAML(ctx, strings.NewReader(invalid)); !errors.Is(err, catalog.ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
		if _, err := svc.ImportYAML(ctx, strings.NewReader("songs: [")); err == nil {
			t.Fatal("expected parse error")
		}
		count, err := svc.Count(ctx)
		if err != nil || count != 2 {
			t.Fatalf("Count = %d, %v; failed imports must not write", count, err)
		}
	})
}
