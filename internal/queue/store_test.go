package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"karaoke/internal/queue"
)

func TestStoreEmptyQueue(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()

		first, err := store.FirstPosition(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, queue.EmptyFirstPosition, first)

		last, err := store.LastPosition(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, queue.EmptyLastPosition, last)

		_, ok, err := store.NextPositionAfter(ctx, "room", 0)
		require.NoError(t, err)
		require.False(t, ok)

		_, ok, err = store.PositionBefore(ctx, "room", 10, 0)
		require.NoError(t, err)
		require.False(t, ok)

		items, err := store.TopN(ctx, "room", 5)
		require.NoError(t, err)
		require.Empty(t, items)

		count, err := store.Count(ctx, "room")
		require.NoError(t, err)
		require.Zero(t, count)

		_, ok, err = store.Get(ctx, "room", 1)
		require.NoError(t, err)
		require.False(t, ok)

		removed, err := store.Clear(ctx, "room")
		require.NoError(t, err)
		require.Zero(t, removed)
	})
}

func TestStoreOrderingAndNeighbours(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		for i, pos := range []float64{3, -1, 1.5, 2} {
			item, err := store.Insert(ctx, "room", pos, queue.ItemRef{SongID: int64(i + 1), Title: "t"})
			require.NoError(t, err)
			require.NotZero(t, item.ID)
			require.Equal(t, pos, item.Position)
		}

		items, err := store.TopN(ctx, "room", 0)
		require.NoError(t, err)
		require.Equal(t, []float64{-1, 1.5, 2, 3}, positions(items))
		require.Equal(t, []int64{2, 3, 4, 1}, songIDs(items))

		top, err := store.TopN(ctx, "room", 2)
		require.NoError(t, err)
		require.Equal(t, []float64{-1, 1.5}, positions(top))

		first, err := store.FirstPosition(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, -1.0, first)
		last, err := store.LastPosition(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, 3.0, last)

		next, ok, err := store.NextPositionAfter(ctx, "room", 1.5)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 2.0, next)

		next, ok, err = store.NextPositionAfter(ctx, "room", 1.7)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 2.0, next, "reference position need not exist")

		_, ok, err = store.NextPositionAfter(ctx, "room", 3)
		require.NoError(t, err)
		require.False(t, ok)

		before, ok, err := store.PositionBefore(ctx, "room", 3, 0)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 2.0, before)

		before, ok, err = store.PositionBefore(ctx, "room", 3, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1.5, before)

		_, ok, err = store.PositionBefore(ctx, "room", 1.5, 1)
		require.NoError(t, err)
		require.False(t, ok)

		got, ok, err := store.Get(ctx, "room", 1.5)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(3), got.Ref.SongID)
		require.Equal(t, "t", got.Ref.Title)
		require.Equal(t, "room", got.QueueID)
		require.False(t, got.CreatedAt.IsZero())
	})
}

func TestStoreConflictsAndMissingRows(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		_, err := store.Insert(ctx, "room", 1, queue.ItemRef{SongID: 1})
		require.NoError(t, err)
		_, err = store.Insert(ctx, "room", 2, queue.ItemRef{SongID: 2})
		require.NoError(t, err)

		_, err = store.Insert(ctx, "room", 1, queue.ItemRef{SongID: 3})
		require.ErrorIs(t, err, queue.ErrConflict)

		_, err = store.Insert(ctx, "other", 1, queue.ItemRef{SongID: 3})
		require.NoError(t, err, "positions are scoped per queue")

		err = store.UpdatePosition(ctx, "room", 1, 2)
		require.ErrorIs(t, err, queue.ErrConflict)

		err = store.UpdatePosition(ctx, "room", 7, 8)
		require.ErrorIs(t, err, queue.ErrNotFound)

		err = store.DeleteAt(ctx, "room", 7)
		require.ErrorIs(t, err, queue.ErrNotFound)

		require.NoError(t, store.UpdatePosition(ctx, "room", 1, 0.5))
		item, ok, err := store.Get(ctx, "room", 0.5)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), item.Ref.SongID)

		require.NoError(t, store.DeleteAt(ctx, "room", 0.5))
		count, err := store.Count(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestStoreRenumberKeepsOrderAndIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		var ids []int64
		for i, pos := range []float64{-5, -4.5, 0.25, 1, 1.0000001, 7} {
			item, err := store.Insert(ctx, "room", pos, queue.ItemRef{SongID: int64(i + 1)})
			require.NoError(t, err)
			ids = append(ids, item.ID)
		}
		_, err := store.Insert(ctx, "other", 1, queue.ItemRef{SongID: 99})
		require.NoError(t, err)

		require.NoError(t, store.Renumber(ctx, "room"))

		items, err := store.TopN(ctx, "room", 0)
		require.NoError(t, err)
		require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, positions(items))
		require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, songIDs(items))
		for i, item := range items {
			require.Equal(t, ids[i], item.ID)
		}

		other, err := store.TopN(ctx, "other", 0)
		require.NoError(t, err)
		require.Equal(t, []float64{1}, positions(other))

		require.NoError(t, store.Renumber(ctx, "empty"))
	})
}

func TestStoreClearAndQueues(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		for i := 1; i <= 3; i++ {
			_, err := store.Insert(ctx, "alpha", float64(i), queue.ItemRef{SongID: int64(i)})
			require.NoError(t, err)
		}
		_, err := store.Insert(ctx, "beta", 1, queue.ItemRef{SongID: 9})
		require.NoError(t, err)

		summaries, err := store.Queues(ctx)
		require.NoError(t, err)
		require.Equal(t, []queue.Summary{{QueueID: "alpha", Items: 3}, {QueueID: "beta", Items: 1}}, summaries)

		removed, err := store.Clear(ctx, "alpha")
		require.NoError(t, err)
		require.Equal(t, 3, removed)

		summaries, err = store.Queues(ctx)
		require.NoError(t, err)
		require.Equal(t, []queue.Summary{{QueueID: "beta", Items: 1}}, summaries)
	})
}

func TestStoreTransactionRollsBack(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		for i := 1; i <= 2; i++ {
			_, err := store.Insert(ctx, "room", float64(i)*10, queue.ItemRef{SongID: int64(i)})
			require.NoError(t, err)
		}
		_, err := store.SetPlaying(ctx, "room", queue.ItemRef{SongID: 5})
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.InTx(ctx, "room", func(tx queue.Tx) error {
			if _, err := tx.Insert(ctx, "room", 15, queue.ItemRef{SongID: 3}); err != nil {
				return err
			}
			if err := tx.Renumber(ctx, "room"); err != nil {
				return err
			}
			if _, err := tx.ClearPlaying(ctx, "room"); err != nil {
				return err
			}
			items, err := tx.TopN(ctx, "room", 0)
			require.NoError(t, err)
			require.Equal(t, []float64{1, 2, 3}, positions(items), "changes are visible inside the transaction")
			return boom
		})
		require.ErrorIs(t, err, boom)

		items, err := store.TopN(ctx, "room", 0)
		require.NoError(t, err)
		require.Equal(t, []float64{10, 20}, positions(items))
		playing, ok, err := store.Playing(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(5), playing.Ref.SongID)
	})
}

func TestStorePlayingPointer(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		_, ok, err := store.Playing(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = store.SetPlaying(ctx, "room", queue.ItemRef{SongID: 1, Title: "First"})
		require.NoError(t, err)
		set, err := store.SetPlaying(ctx, "room", queue.ItemRef{SongID: 2, Title: "Second", Duration: 200})
		require.NoError(t, err)
		require.Equal(t, "room", set.QueueID)

		got, ok, err := store.Playing(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(2), got.Ref.SongID)
		require.Equal(t, "Second", got.Ref.Title)
		require.Equal(t, 200, got.Ref.Duration)
		require.False(t, got.StartedAt.IsZero())

		cleared, err := store.ClearPlaying(ctx, "room")
		require.NoError(t, err)
		require.True(t, cleared)
		cleared, err = store.ClearPlaying(ctx, "room")
		require.NoError(t, err)
		require.False(t, cleared)
	})
}
