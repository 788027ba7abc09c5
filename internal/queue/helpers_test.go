package queue_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"karaoke/internal/queue"
	"karaoke/internal/storage"
)

type storeFactory struct {
	name string
	open func(t *testing.T) queue.Store
}

// storeFactories lists every backend the contract runs against. PostgreSQL
// joins when KARAOKE_TEST_POSTGRES_DSN points at a scratch database.
func storeFactories() []storeFactory {
	factories := []storeFactory{
		{name: "memory", open: func(*testing.T) queue.Store { return queue.NewMemoryStore() }},
		{name: "sqlite", open: openSQLiteStore},
	}
	if dsn := os.Getenv("KARAOKE_TEST_POSTGRES_DSN"); dsn != "" {
		factories = append(factories, storeFactory{name: "postgres", open: func(t *testing.T) queue.Store {
			return openPostgresStore(t, dsn)
		}})
	}
	return factories
}

func forEachStore(t *testing.T, fn func(t *testing.T, store queue.Store)) {
	t.Helper()
	for _, factory := range storeFactories() {
		t.Run(factory.name, func(t *testing.T) {
			fn(t, factory.open(t))
		})
	}
}

func openSQLiteStore(t *testing.T) queue.Store {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "queue.db"), 0)
	require.NoError(t, err)
	store, err := queue.NewSQLStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openPostgresStore(t *testing.T, dsn string) queue.Store {
	t.Helper()
	db, err := storage.OpenPostgres(context.Background(), dsn, 4, 1)
	require.NoError(t, err)
	for _, table := range []string{"queue_items", "now_playing"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
	store, err := queue.NewSQLStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newEngine(t *testing.T, store queue.Store, opts ...queue.Option) *queue.Engine {
	t.Helper()
	engine, err := queue.NewEngine(store, opts...)
	require.NoError(t, err)
	return engine
}

func songIDs(items []queue.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.Ref.SongID)
	}
	return out
}

func positions(items []queue.Item) []float64 {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, item.Position)
	}
	return out
}

// requireValidQueue checks that positions are strictly increasing.
func requireValidQueue(t *testing.T, items []queue.Item) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		require.Less(t, items[i-1].Position, items[i].Position, "positions out of order at %d: %v", i, positions(items))
	}
}

func mustItems(t *testing.T, engine *queue.Engine, queueID string) []queue.Item {
	t.Helper()
	items, err := engine.Items(context.Background(), queueID, 0)
	require.NoError(t, err)
	requireValidQueue(t, items)
	return items
}
