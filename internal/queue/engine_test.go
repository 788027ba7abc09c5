package queue_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"karaoke/internal/queue"
)

func TestEnqueueAtEndIsFIFO(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		for id := int64(1); id <= 3; id++ {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}
		items := mustItems(t, engine, "room")
		require.Equal(t, []float64{1, 2, 3}, positions(items))

		for want := int64(1); want <= 3; want++ {
			item, ok, err := engine.Dequeue(ctx, "room")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, want, item.Ref.SongID)
		}
		_, ok, err := engine.Dequeue(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestEnqueueAtFrontReverses(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		for id := int64(1); id <= 3; id++ {
			_, err := engine.EnqueueAtFront(ctx, "room", id)
			require.NoError(t, err)
		}
		items := mustItems(t, engine, "room")
		require.Equal(t, []int64{3, 2, 1}, songIDs(items))
		require.Equal(t, []float64{-1, 0, 1}, positions(items))
	})
}

func TestEnqueueAfterItem(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		_, err := engine.EnqueueAtEnd(ctx, "room", 1)
		require.NoError(t, err)
		_, err = engine.EnqueueAtEnd(ctx, "room", 2)
		require.NoError(t, err)

		x, err := engine.EnqueueAfter(ctx, "room", 3, 1)
		require.NoError(t, err)
		require.Greater(t, x.Position, 1.0)
		require.Less(t, x.Position, 2.0)
		require.Equal(t, []int64{1, 3, 2}, songIDs(mustItems(t, engine, "room")))

		tail, err := engine.EnqueueAfter(ctx, "room", 4, 2)
		require.NoError(t, err)
		require.Equal(t, 3.0, tail.Position, "no successor appends at the end")

		head, err := engine.EnqueueAfter(ctx, "room", 5, -10)
		require.NoError(t, err)
		require.Less(t, head.Position, 1.0, "reference below the head lands before it")
		require.Equal(t, []int64{5, 1, 3, 2, 4}, songIDs(mustItems(t, engine, "room")))
	})
}

func TestEmptyQueueSemantics(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)

		_, ok, err := engine.Peek(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)
		_, ok, err = engine.Dequeue(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, mustItems(t, engine, "room"))

		front, err := engine.EnqueueAtFront(ctx, "room", 1)
		require.NoError(t, err)
		require.Equal(t, 1.0, front.Position, "front of an empty queue matches the end")

		removed, err := engine.Clear(ctx, "room")
		require.NoError(t, err)
		require.Equal(t, 1, removed)

		after, err := engine.EnqueueAfter(ctx, "room", 2, 42)
		require.NoError(t, err)
		require.Equal(t, 1.0, after.Position)
	})
}

func TestPeekDoesNotRemove(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		_, err := engine.EnqueueAtEnd(ctx, "room", 7)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			item, ok, err := engine.Peek(ctx, "room")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, int64(7), item.Ref.SongID)
		}
		require.Len(t, mustItems(t, engine, "room"), 1)
	})
}

func TestMoveFrontDequeueEnqueueAfterScenario(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		const a, b, c, d = 1, 2, 3, 4
		for _, id := range []int64{a, b, c} {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}

		moved, err := engine.MoveToFront(ctx, "room", 3)
		require.NoError(t, err)
		require.Equal(t, 0.0, moved.Position)
		require.Equal(t, []int64{c, a, b}, songIDs(mustItems(t, engine, "room")))

		head, ok, err := engine.Dequeue(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(c), head.Ref.SongID)

		added, err := engine.EnqueueAfter(ctx, "room", d, 1)
		require.NoError(t, err)
		require.Equal(t, 1.5, added.Position)

		items := mustItems(t, engine, "room")
		require.Equal(t, []int64{a, d, b}, songIDs(items))
		require.Equal(t, []float64{1, 1.5, 2}, positions(items))
	})
}

func TestMovesReorder(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		for id := int64(1); id <= 3; id++ {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}

		up, err := engine.MoveUp(ctx, "room", 3)
		require.NoError(t, err)
		require.Equal(t, 1.5, up.Position)
		require.Equal(t, []int64{1, 3, 2}, songIDs(mustItems(t, engine, "room")))

		second, err := engine.MoveUp(ctx, "room", 1.5)
		require.NoError(t, err)
		require.Equal(t, 0.0, second.Position, "moving the second item up makes it first")
		require.Equal(t, []int64{3, 1, 2}, songIDs(mustItems(t, engine, "room")))

		down, err := engine.MoveDown(ctx, "room", 0)
		require.NoError(t, err)
		require.Equal(t, 1.5, down.Position)
		require.Equal(t, []int64{1, 3, 2}, songIDs(mustItems(t, engine, "room")))

		end, err := engine.MoveToEnd(ctx, "room", 1)
		require.NoError(t, err)
		require.Equal(t, 3.0, end.Position)
		require.Equal(t, []int64{3, 2, 1}, songIDs(mustItems(t, engine, "room")))

		after, err := engine.MoveAfter(ctx, "room", 1.5, 2)
		require.NoError(t, err)
		require.Equal(t, 2.5, after.Position)
		require.Equal(t, []int64{2, 3, 1}, songIDs(mustItems(t, engine, "room")))

		beyond, err := engine.MoveAfter(ctx, "room", 2, 3.2)
		require.NoError(t, err)
		require.Equal(t, math.Ceil(3.2+1), beyond.Position)
		require.Equal(t, []int64{3, 1, 2}, songIDs(mustItems(t, engine, "room")))

		explicit, err := engine.MoveTo(ctx, "room", 5, -7.25)
		require.NoError(t, err)
		require.Equal(t, -7.25, explicit.Position)
		require.Equal(t, []int64{2, 3, 1}, songIDs(mustItems(t, engine, "room")))
	})
}

func TestNoOpMovesLeaveQueueUntouched(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		notifier := &recordingNotifier{}
		engine := newEngine(t, store, queue.WithNotifier(notifier))
		for id := int64(1); id <= 3; id++ {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}
		before := mustItems(t, engine, "room")
		notified := notifier.queueEvents()

		cases := []struct {
			name string
			move func() (queue.Item, error)
			at   float64
		}{
			{"front of first", func() (queue.Item, error) { return engine.MoveToFront(ctx, "room", 1) }, 1},
			{"end of last", func() (queue.Item, error) { return engine.MoveToEnd(ctx, "room", 3) }, 3},
			{"up of first", func() (queue.Item, error) { return engine.MoveUp(ctx, "room", 1) }, 1},
			{"down of last", func() (queue.Item, error) { return engine.MoveDown(ctx, "room", 3) }, 3},
			{"after itself", func() (queue.Item, error) { return engine.MoveAfter(ctx, "room", 2, 2) }, 2},
			{"after predecessor", func() (queue.Item, error) { return engine.MoveAfter(ctx, "room", 2, 1) }, 2},
			{"to same position", func() (queue.Item, error) { return engine.MoveTo(ctx, "room", 2, 2) }, 2},
		}
		for _, tc := range cases {
			item, err := tc.move()
			require.NoError(t, err, tc.name)
			require.Equal(t, tc.at, item.Position, tc.name)
			require.Equal(t, before, mustItems(t, engine, "room"), tc.name)
		}
		require.Equal(t, notified, notifier.queueEvents(), "no-op moves do not notify")
	})
}

func TestMoveErrors(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		for id := int64(1); id <= 2; id++ {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}

		_, err := engine.MoveUp(ctx, "room", 9)
		require.ErrorIs(t, err, queue.ErrNotFound)
		require.Equal(t, queue.CodeNoItem, queue.CodeOf(err))

		_, err = engine.Remove(ctx, "room", 9)
		require.ErrorIs(t, err, queue.ErrNotFound)

		_, err = engine.MoveTo(ctx, "room", 1, 2)
		require.ErrorIs(t, err, queue.ErrConflict)
		require.Equal(t, queue.KindConflict, queue.KindOf(err))

		_, err = engine.Move(ctx, "room", queue.MoveMethod("sideways"), 1, 0)
		require.ErrorIs(t, err, queue.ErrValidation)

		require.Equal(t, []float64{1, 2}, positions(mustItems(t, engine, "room")))
	})
}

func TestValidationHappensBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: queue.NewMemoryStore()}
	engine := newEngine(t, store)

	_, err := engine.EnqueueAtEnd(ctx, "room", 0)
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.EnqueueAfter(ctx, "room", 1, math.NaN())
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.EnqueueAtEnd(ctx, "  ", 1)
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.MoveAfter(ctx, "room", 1, math.Inf(1))
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.MoveTo(ctx, "room", math.NaN(), 1)
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.Remove(ctx, "room", math.Inf(-1))
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.SetPlaying(ctx, "room", -3)
	require.ErrorIs(t, err, queue.ErrValidation)
	_, err = engine.Enqueue(ctx, "room", queue.Placement("middle"), 1, 0)
	require.ErrorIs(t, err, queue.ErrValidation)

	require.Zero(t, store.txCount, "no transaction should start for invalid input")
}

func TestRepeatedMidpointInsertionRenumbers(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		_, err := engine.EnqueueAtEnd(ctx, "room", 1)
		require.NoError(t, err)
		_, err = engine.EnqueueAtEnd(ctx, "room", 2)
		require.NoError(t, err)

		const inserts = 80
		for i := 1; i <= inserts; i++ {
			_, err := engine.EnqueueAfter(ctx, "room", int64(100+i), 1)
			require.NoError(t, err, "insert %d", i)
		}

		items := mustItems(t, engine, "room")
		require.Len(t, items, inserts+2)
		want := []int64{1}
		for i := inserts; i >= 1; i-- {
			want = append(want, int64(100+i))
		}
		want = append(want, 2)
		require.Equal(t, want, songIDs(items))
		require.Greater(t, items[len(items)-1].Position, 2.0, "tail was renumbered")
	})
}

func TestRenumberRemapsOperands(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store, queue.WithRenumberGap(0.3))
		for id := int64(1); id <= 3; id++ {
			_, err := engine.EnqueueAtEnd(ctx, "room", id)
			require.NoError(t, err)
		}
		x, err := engine.EnqueueAfter(ctx, "room", 10, 1)
		require.NoError(t, err)
		require.Equal(t, 1.5, x.Position)
		y, err := engine.EnqueueAfter(ctx, "room", 11, 1)
		require.NoError(t, err)
		require.Equal(t, 1.25, y.Position)

		// The gap between 1 and 1.25 is below 0.3, so the queue is renumbered
		// to 1..5 and song 3 (formerly at 3) is found again at 5.
		moved, err := engine.MoveAfter(ctx, "room", 3, 1)
		require.NoError(t, err)
		require.Equal(t, 1.5, moved.Position)

		items := mustItems(t, engine, "room")
		require.Equal(t, []int64{1, 3, 11, 10, 2}, songIDs(items))
		require.Equal(t, []float64{1, 1.5, 2, 3, 4}, positions(items))
	})
}

func seedPositions(t *testing.T, store queue.Store, queueID string, positions map[float64]int64) {
	t.Helper()
	err := store.InTx(context.Background(), queueID, func(tx queue.Tx) error {
		for pos, songID := range positions {
			if _, err := tx.Insert(context.Background(), queueID, pos, queue.ItemRef{SongID: songID}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestEnqueueAtFarEdgesRenumbers(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		// At 1e17 adding one is lost to rounding.
		seedPositions(t, store, "room", map[float64]int64{-1e17: 1, 1: 2, 1e17: 3})

		tail, err := engine.EnqueueAtEnd(ctx, "room", 4)
		require.NoError(t, err)
		require.Equal(t, 4.0, tail.Position)

		head, err := engine.EnqueueAtFront(ctx, "room", 5)
		require.NoError(t, err)
		require.Equal(t, 0.0, head.Position)

		items := mustItems(t, engine, "room")
		require.Equal(t, []int64{5, 1, 2, 3, 4}, songIDs(items))
		require.Equal(t, []float64{0, 1, 2, 3, 4}, positions(items))
	})
}

func TestMoveToFarEdgesRenumbers(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		seedPositions(t, store, "high", map[float64]int64{1: 1, 2: 2, 1e17: 3})
		seedPositions(t, store, "low", map[float64]int64{-1e17: 1, 1: 2, 2: 3})
		seedPositions(t, store, "after", map[float64]int64{1: 1, 2: 2, 1e17: 3})

		moved, err := engine.MoveToEnd(ctx, "high", 1)
		require.NoError(t, err)
		require.Equal(t, 4.0, moved.Position)
		require.Equal(t, []int64{2, 3, 1}, songIDs(mustItems(t, engine, "high")))

		moved, err = engine.MoveToFront(ctx, "low", 2)
		require.NoError(t, err)
		require.Equal(t, 0.0, moved.Position)
		require.Equal(t, []int64{3, 1, 2}, songIDs(mustItems(t, engine, "low")))

		moved, err = engine.MoveAfter(ctx, "after", 1, 1e17)
		require.NoError(t, err)
		require.Equal(t, 4.0, moved.Position)
		require.Equal(t, []int64{2, 3, 1}, songIDs(mustItems(t, engine, "after")))
	})
}

func TestMoveToRejectsUnrepresentableDestination(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		_, err := engine.EnqueueAtEnd(ctx, "room", 1)
		require.NoError(t, err)

		_, err = engine.MoveTo(ctx, "room", 1, 1e17)
		require.ErrorIs(t, err, queue.ErrValidation)
		_, err = engine.MoveTo(ctx, "room", 1, -queue.MaxPosition)
		require.ErrorIs(t, err, queue.ErrValidation)

		moved, err := engine.MoveTo(ctx, "room", 1, queue.MaxPosition-1)
		require.NoError(t, err)
		require.Equal(t, float64(queue.MaxPosition-1), moved.Position)
		_, err = engine.EnqueueAtEnd(ctx, "room", 2)
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2}, songIDs(mustItems(t, engine, "room")))
	})
}

func TestRetriedTransactionsForgetEarlierAttempts(t *testing.T) {
	ctx := context.Background()
	base := queue.NewMemoryStore()
	store := &replayingStore{Store: base}
	engine := newEngine(t, store)
	// Another writer empties the queue while the first attempt is retried.
	store.between = func() {
		_, err := base.Clear(ctx, "room")
		require.NoError(t, err)
	}

	_, err := base.Insert(ctx, "room", 1, queue.ItemRef{SongID: 1})
	require.NoError(t, err)
	head, ok, err := engine.Dequeue(ctx, "room")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, head)

	_, err = base.Insert(ctx, "room", 1, queue.ItemRef{SongID: 1})
	require.NoError(t, err)
	playing, started, err := engine.PlayNext(ctx, "room")
	require.NoError(t, err)
	require.False(t, started)
	require.Zero(t, playing)
	_, ok, err = base.Playing(ctx, "room")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFailedTransactionRollsBackRenumber(t *testing.T) {
	ctx := context.Background()
	base := queue.NewMemoryStore()
	engine := newEngine(t, base, queue.WithRenumberGap(0.3))
	for id := int64(1); id <= 2; id++ {
		_, err := engine.EnqueueAtEnd(ctx, "room", id)
		require.NoError(t, err)
	}
	_, err := engine.EnqueueAfter(ctx, "room", 3, 1)
	require.NoError(t, err)
	_, err = engine.EnqueueAfter(ctx, "room", 4, 1)
	require.NoError(t, err)
	before := mustItems(t, engine, "room")

	failing := newEngine(t, &failingInsertStore{Store: base}, queue.WithRenumberGap(0.3))
	_, err = failing.EnqueueAfter(ctx, "room", 5, 1)
	require.ErrorIs(t, err, queue.ErrStore)

	require.Equal(t, before, mustItems(t, engine, "room"), "renumber must roll back with the failed insert")
}

func TestConcurrentEnqueueKeepsPositionsUnique(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		const workers = 12

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				var err error
				if id%2 == 0 {
					_, err = engine.EnqueueAtEnd(ctx, "room", id)
				} else {
					_, err = engine.EnqueueAtFront(ctx, "room", id)
				}
				errs <- err
			}(int64(i + 1))
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		require.Len(t, mustItems(t, engine, "room"), workers)
	})
}

func TestSongLookupAndPlaying(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		songs := &fakeCatalog{songs: map[int64]queue.ItemRef{
			1: {Title: "Africa", Artist: "Toto", Duration: 295},
			2: {Title: "Dancing Queen", Artist: "ABBA", Duration: 231},
		}}
		notifier := &recordingNotifier{}
		engine := newEngine(t, store, queue.WithSongLookup(songs), queue.WithNotifier(notifier))

		_, err := engine.EnqueueAtEnd(ctx, "room", 404)
		require.ErrorIs(t, err, queue.ErrNotFound)
		require.Equal(t, queue.CodeNoSong, queue.CodeOf(err))

		item, err := engine.EnqueueAtEnd(ctx, "room", 1)
		require.NoError(t, err)
		require.Equal(t, "Africa", item.Ref.Title)
		require.Equal(t, int64(1), item.Ref.SongID)
		_, err = engine.EnqueueAtEnd(ctx, "room", 2)
		require.NoError(t, err)

		playing, ok, err := engine.PlayNext(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Africa", playing.Ref.Title)
		require.Equal(t, []int64{2}, songIDs(mustItems(t, engine, "room")))

		current, ok, err := engine.Playing(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), current.Ref.SongID)

		_, err = engine.SetPlaying(ctx, "room", 2)
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2}, songs.playedIDs())

		_, ok, err = engine.PlayNext(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = engine.PlayNext(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok, "empty queue stops playback")
		_, ok, err = engine.Playing(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)

		cleared, err := engine.ClearPlaying(ctx, "room")
		require.NoError(t, err)
		require.False(t, cleared)

		events := notifier.playingEvents()
		require.Len(t, events, 4)
		require.Nil(t, events[3])
	})
}

func TestSkipSignalsWithoutChangingState(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		notifier := &recordingNotifier{}
		engine := newEngine(t, store, queue.WithNotifier(notifier))

		_, ok, err := engine.Skip(ctx, "room")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = engine.EnqueueAtEnd(ctx, "room", 2)
		require.NoError(t, err)
		_, err = engine.SetPlaying(ctx, "room", 1)
		require.NoError(t, err)
		skipped, ok, err := engine.Skip(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), skipped.Ref.SongID)

		skips := notifier.skipEvents()
		require.Len(t, skips, 2)
		require.Nil(t, skips[0])
		require.Equal(t, int64(1), skips[1].Ref.SongID)

		playing, ok, err := engine.Playing(ctx, "room")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), playing.Ref.SongID)
		require.Equal(t, []int64{2}, songIDs(mustItems(t, engine, "room")))
		require.Len(t, notifier.playingEvents(), 1)
	})
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("broker down")}
	engine := newEngine(t, queue.NewMemoryStore(), queue.WithNotifier(notifier))

	item, err := engine.EnqueueAtEnd(ctx, "room", 1)
	require.NoError(t, err)
	require.Equal(t, 1.0, item.Position)
	require.Len(t, notifier.queueEvents(), 1)
	require.Equal(t, []int64{1}, songIDs(notifier.queueEvents()[0]))
}

func TestCompactRenumbersCrowdedQueues(t *testing.T) {
	ctx := context.Background()
	store := queue.NewMemoryStore()
	engine := newEngine(t, store)
	for i, pos := range []float64{1, 1 + 1e-12, 3} {
		_, err := store.Insert(ctx, "room", pos, queue.ItemRef{SongID: int64(i + 1)})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, "roomy", 1, queue.ItemRef{SongID: 9})
	require.NoError(t, err)

	compacted, err := engine.Compact(ctx, "room")
	require.NoError(t, err)
	require.True(t, compacted)
	require.Equal(t, []float64{1, 2, 3}, positions(mustItems(t, engine, "room")))

	compacted, err = engine.Compact(ctx, "roomy")
	require.NoError(t, err)
	require.False(t, compacted)
}

func TestQueuesAreIsolated(t *testing.T) {
	forEachStore(t, func(t *testing.T, store queue.Store) {
		ctx := context.Background()
		engine := newEngine(t, store)
		for i := 0; i < 3; i++ {
			_, err := engine.EnqueueAtEnd(ctx, fmt.Sprintf("room-%d", i%2), int64(i+1))
			require.NoError(t, err)
		}
		summaries, err := engine.Queues(ctx)
		require.NoError(t, err)
		require.Equal(t, []queue.Summary{{QueueID: "room-0", Items: 2}, {QueueID: "room-1", Items: 1}}, summaries)

		require.NoError(t, engine.Renumber(ctx, "room-0"))
		_, err = engine.Clear(ctx, "room-1")
		require.NoError(t, err)
		require.Equal(t, []int64{1, 3}, songIDs(mustItems(t, engine, "room-0")))
		require.Empty(t, mustItems(t, engine, "room-1"))
	})
}
