package queue_test

import (
	"context"
	"errors"
	"sync"

	"karaoke/internal/queue"
)

type recordingNotifier struct {
	mu      sync.Mutex
	err     error
	queues  [][]queue.Item
	playing []*queue.Playing
	skips   []*queue.Playing
}

func (n *recordingNotifier) QueueChanged(_ context.Context, _ string, items []queue.Item) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queues = append(n.queues, items)
	return n.err
}

func (n *recordingNotifier) PlayingChanged(_ context.Context, _ string, playing *queue.Playing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = append(n.playing, playing)
	return n.err
}

func (n *recordingNotifier) PlayingSkipped(_ context.Context, _ string, skipped *queue.Playing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.skips = append(n.skips, skipped)
	return n.err
}

func (n *recordingNotifier) skipEvents() []*queue.Playing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*queue.Playing(nil), n.skips...)
}

func (n *recordingNotifier) queueEvents() [][]queue.Item {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]queue.Item(nil), n.queues...)
}

func (n *recordingNotifier) playingEvents() []*queue.Playing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*queue.Playing(nil), n.playing...)
}

type fakeCatalog struct {
	mu     sync.Mutex
	songs  map[int64]queue.ItemRef
	played []int64
}

func (c *fakeCatalog) LookupSong(_ context.Context, songID int64) (queue.ItemRef, error) {
	ref, ok := c.songs[songID]
	if !ok {
		return queue.ItemRef{}, queue.SongNotFound(songID, nil)
	}
	return ref, nil
}

func (c *fakeCatalog) RecordPlay(_ context.Context, songID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = append(c.played, songID)
	return nil
}

func (c *fakeCatalog) playedIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.played...)
}

type countingStore struct {
	queue.Store
	txCount int
}

func (s *countingStore) InTx(ctx context.Context, queueID string, fn func(tx queue.Tx) error) error {
	s.txCount++
	return s.Store.InTx(ctx, queueID, fn)
}

// failingInsertStore lets every transaction run until its first insert.
type failingInsertStore struct {
	queue.Store
}

func (s *failingInsertStore) InTx(ctx context.Context, queueID string, fn func(tx queue.Tx) error) error {
	return s.Store.InTx(ctx, queueID, func(tx queue.Tx) error {
		return fn(failingInsertTx{Tx: tx})
	})
}

type failingInsertTx struct {
	queue.Tx
}

func (failingInsertTx) Insert(context.Context, string, float64, queue.ItemRef) (queue.Item, error) {
	return queue.Item{}, errors.New("disk full")
}

var errReplay = errors.New("replay")

// replayingStore runs every callback twice, the way a busy retry does. The
// first attempt is rolled back and between runs before the second one.
type replayingStore struct {
	queue.Store
	between func()
}

func (s *replayingStore) InTx(ctx context.Context, queueID string, fn func(tx queue.Tx) error) error {
	err := s.Store.InTx(ctx, queueID, func(tx queue.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errReplay
	})
	if !errors.Is(err, errReplay) {
		return err
	}
	if s.between != nil {
		s.between()
	}
	return s.Store.InTx(ctx, queueID, fn)
}
