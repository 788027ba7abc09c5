package queue

import (
	"context"
	"errors"

	"karaoke/internal/logging"
)

// EnqueueAtEnd appends songID to the queue.
func (e *Engine) EnqueueAtEnd(ctx context.Context, queueID string, songID int64) (Item, error) {
	return e.Enqueue(ctx, queueID, PlaceAtEnd, songID, 0)
}

// EnqueueAtFront puts songID ahead of every queued item.
func (e *Engine) EnqueueAtFront(ctx context.Context, queueID string, songID int64) (Item, error) {
	return e.Enqueue(ctx, queueID, PlaceAtFront, songID, 0)
}

// EnqueueAfter places songID directly behind position after. The position
// does not need to be occupied: the item lands before the first item greater
// than after, or at the end when there is none.
func (e *Engine) EnqueueAfter(ctx context.Context, queueID string, songID int64, after float64) (Item, error) {
	return e.Enqueue(ctx, queueID, PlaceAfterItem, songID, after)
}

// Enqueue adds songID according to placement. after is only read for
// PlaceAfterItem.
func (e *Engine) Enqueue(ctx context.Context, queueID string, placement Placement, songID int64, after float64) (Item, error) {
	op := "enqueue_" + string(placement)
	ctx, queueID, err := e.begin(ctx, op, queueID)
	if err != nil {
		return Item{}, err
	}
	switch placement {
	case PlaceAtEnd, PlaceAtFront:
	case PlaceAfterItem:
		if err := checkPosition(op, queueID, "afterPosition", after); err != nil {
			return Item{}, err
		}
	default:
		return Item{}, validationError(op, queueID, "unknown placement "+string(placement))
	}
	ref, err := e.resolveSong(ctx, op, queueID, songID)
	if err != nil {
		return Item{}, err
	}

	var created Item
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		pos, err := e.enqueuePosition(ctx, tx, queueID, placement, after)
		if err != nil {
			return err
		}
		created, err = tx.Insert(ctx, queueID, pos, ref)
		return err
	})
	if err != nil {
		return Item{}, wrap(op, queueID, err)
	}
	e.log(ctx).Info("enqueued song",
		logging.String("placement", string(placement)),
		logging.SongID(ref.SongID),
		logging.String("song", ref.Label()),
		logging.Position(created.Position),
	)
	e.queueChanged(ctx, queueID)
	return created, nil
}

func (e *Engine) enqueuePosition(ctx context.Context, tx Tx, queueID string, placement Placement, after float64) (float64, error) {
	alloc := e.allocator(tx, queueID)
	switch placement {
	case PlaceAtFront:
		count, err := tx.Count(ctx, queueID)
		if err != nil {
			return 0, err
		}
		if count == 0 {
			return EmptyFirstPosition, nil
		}
		first, err := tx.FirstPosition(ctx, queueID)
		if err != nil {
			return 0, err
		}
		return alloc.past(ctx, first, -1, nil)
	case PlaceAfterItem:
		next, ok, err := tx.NextPositionAfter(ctx, queueID, after)
		if err != nil {
			return 0, err
		}
		if ok {
			return alloc.between(ctx, after, next)
		}
	}
	last, err := tx.LastPosition(ctx, queueID)
	if err != nil {
		return 0, err
	}
	return alloc.past(ctx, last, 1, nil)
}

func (e *Engine) resolveSong(ctx context.Context, op, queueID string, songID int64) (ItemRef, error) {
	if songID <= 0 {
		return ItemRef{}, validationError(op, queueID, "songId must be a positive integer")
	}
	if e.songs == nil {
		return ItemRef{SongID: songID}, nil
	}
	ref, err := e.songs.LookupSong(ctx, songID)
	if err != nil {
		var qe *Error
		if errors.As(err, &qe) {
			return ItemRef{}, err
		}
		return ItemRef{}, storeError("lookup_song", queueID, err)
	}
	ref.SongID = songID
	return ref, nil
}
