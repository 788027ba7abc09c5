package testsupport

import (
	"context"
	"testing"

	"karaoke/internal/catalog"
	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/storage"
)

// MustOpenDB opens the SQL database described by cfg and registers cleanup.
func MustOpenDB(t testing.TB, cfg *config.Config) *storage.DB {
	t.Helper()

	db, err := storage.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// MustOpenQueueStore returns the queue store for cfg.Storage.Driver. The db
// is nil for the memory driver.
func MustOpenQueueStore(t testing.TB, cfg *config.Config) (queue.Store, *storage.DB) {
	t.Helper()

	if cfg.Storage.Driver == config.DriverMemory {
		return queue.NewMemoryStore(), nil
	}
	db := MustOpenDB(t, cfg)
	store, err := queue.NewSQLStore(db)
	if err != nil {
		t.Fatalf("queue.NewSQLStore: %v", err)
	}
	return store, db
}

// MustNewCatalog builds a catalog service on db, or in memory when db is nil.
func MustNewCatalog(t testing.TB, db *storage.DB) *catalog.Service {
	t.Helper()

	var repo catalog.Repository = catalog.NewMemoryRepository()
	if db != nil {
		sqlRepo, err := catalog.NewSQLRepository(db)
		if err != nil {
			t.Fatalf("catalog.NewSQLRepository: %v", err)
		}
		repo = sqlRepo
	}
	svc, err := catalog.NewService(repo, logging.NewNop())
	if err != nil {
		t.Fatalf("catalog.NewService: %v", err)
	}
	return svc
}

// SeedSongs adds songs given as title/artist pairs and returns them in order.
func SeedSongs(t testing.TB, svc *catalog.Service, pairs ...string) []catalog.Song {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatalf("SeedSongs: odd number of title/artist values")
	}
	songs := make([]catalog.Song, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		song, err := svc.Create(context.Background(), catalog.Song{Title: pairs[i], Artist: pairs[i+1], Duration: 180})
		if err != nil {
			t.Fatalf("seed %q: %v", pairs[i], err)
		}
		songs = append(songs, song)
	}
	return songs
}
