package queue

import (
	"context"

	"karaoke/internal/logging"
)

// SetPlaying marks songID as playing in the queue's room.
func (e *Engine) SetPlaying(ctx context.Context, queueID string, songID int64) (Playing, error) {
	ctx, queueID, err := e.begin(ctx, "set_playing", queueID)
	if err != nil {
		return Playing{}, err
	}
	ref, err := e.resolveSong(ctx, "set_playing", queueID, songID)
	if err != nil {
		return Playing{}, err
	}
	var playing Playing
	if err := e.store.InTx(ctx, queueID, func(tx Tx) error {
		var err error
		playing, err = tx.SetPlaying(ctx, queueID, ref)
		return err
	}); err != nil {
		return Playing{}, wrap("set_playing", queueID, err)
	}
	e.log(ctx).Info("now playing", logging.SongID(ref.SongID), logging.String("song", ref.Label()))
	e.recordPlay(ctx, ref.SongID)
	e.playingChanged(ctx, queueID, &playing)
	return playing, nil
}

// ClearPlaying drops the now-playing pointer. It reports whether one was set.
func (e *Engine) ClearPlaying(ctx context.Context, queueID string) (bool, error) {
	ctx, queueID, err := e.begin(ctx, "clear_playing", queueID)
	if err != nil {
		return false, err
	}
	var cleared bool
	if err := e.store.InTx(ctx, queueID, func(tx Tx) error {
		var err error
		cleared, err = tx.ClearPlaying(ctx, queueID)
		return err
	}); err != nil {
		return false, wrap("clear_playing", queueID, err)
	}
	if cleared {
		e.log(ctx).Info("cleared now playing")
		e.playingChanged(ctx, queueID, nil)
	}
	return cleared, nil
}

// Playing returns the now-playing pointer; ok is false when nothing plays.
func (e *Engine) Playing(ctx context.Context, queueID string) (Playing, bool, error) {
	ctx, queueID, err := e.begin(ctx, "playing", queueID)
	if err != nil {
		return Playing{}, false, err
	}
	playing, ok, err := e.store.Playing(ctx, queueID)
	if err != nil {
		return Playing{}, false, wrap("playing", queueID, err)
	}
	return playing, ok, nil
}

// Skip asks the players of queueID to abandon the current song. It changes no
// state: players answer with PlayNext. The song being skipped is returned with
// ok=true, or ok=false when nothing was playing; the signal goes out either way.
func (e *Engine) Skip(ctx context.Context, queueID string) (Playing, bool, error) {
	ctx, queueID, err := e.begin(ctx, "skip", queueID)
	if err != nil {
		return Playing{}, false, err
	}
	playing, ok, err := e.store.Playing(ctx, queueID)
	if err != nil {
		return Playing{}, false, wrap("skip", queueID, err)
	}
	var skipped *Playing
	if ok {
		skipped = &playing
		e.log(ctx).Info("skip requested", logging.SongID(playing.Ref.SongID), logging.String("song", playing.Ref.Label()))
	} else {
		e.log(ctx).Info("skip requested with nothing playing")
	}
	if n, hasSkip := e.notifier.(SkipNotifier); hasSkip {
		if err := n.PlayingSkipped(ctx, queueID, skipped); err != nil {
			e.log(ctx).Warn("skip notification failed", logging.Error(err))
		}
	}
	return playing, ok, nil
}

// PlayNext dequeues the head of the queue and makes it the now-playing song
// in one transaction. An empty queue clears the pointer and reports ok=false.
func (e *Engine) PlayNext(ctx context.Context, queueID string) (Playing, bool, error) {
	ctx, queueID, err := e.begin(ctx, "play_next", queueID)
	if err != nil {
		return Playing{}, false, err
	}
	var (
		playing Playing
		started bool
		cleared bool
	)
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		playing, started, cleared = Playing{}, false, false
		items, err := tx.TopN(ctx, queueID, 1)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			cleared, err = tx.ClearPlaying(ctx, queueID)
			return err
		}
		head := items[0]
		if err := tx.DeleteAt(ctx, queueID, head.Position); err != nil {
			return err
		}
		playing, err = tx.SetPlaying(ctx, queueID, head.Ref)
		started = err == nil
		return err
	})
	if err != nil {
		return Playing{}, false, wrap("play_next", queueID, err)
	}
	switch {
	case started:
		e.log(ctx).Info("playing next song", logging.SongID(playing.Ref.SongID), logging.String("song", playing.Ref.Label()))
		e.recordPlay(ctx, playing.Ref.SongID)
		e.queueChanged(ctx, queueID)
		e.playingChanged(ctx, queueID, &playing)
	case cleared:
		e.log(ctx).Info("queue exhausted, cleared now playing")
		e.playingChanged(ctx, queueID, nil)
	}
	return playing, started, nil
}

func (e *Engine) recordPlay(ctx context.Context, songID int64) {
	if e.plays == nil {
		return
	}
	if err := e.plays.RecordPlay(ctx, songID); err != nil {
		e.log(ctx).Warn("record play failed", logging.SongID(songID), logging.Error(err))
	}
}
