package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"karaoke/internal/logging"
	"karaoke/internal/services"
)

// SongLookup resolves catalog songs for enqueue and now-playing.
type SongLookup interface {
	LookupSong(ctx context.Context, songID int64) (ItemRef, error)
}

// PlayRecorder is implemented by catalogs that count plays.
type PlayRecorder interface {
	RecordPlay(ctx context.Context, songID int64) error
}

// Notifier receives committed changes. Errors are logged and dropped.
type Notifier interface {
	QueueChanged(ctx context.Context, queueID string, items []Item) error
	// PlayingChanged receives nil when the pointer was cleared.
	PlayingChanged(ctx context.Context, queueID string, playing *Playing) error
}

// SkipNotifier is implemented by notifiers that relay skip requests to the
// players of a room.
type SkipNotifier interface {
	PlayingSkipped(ctx context.Context, queueID string, skipped *Playing) error
}

// Engine applies the placement rules on top of a Store.
type Engine struct {
	store       Store
	songs       SongLookup
	plays       PlayRecorder
	notifier    Notifier
	logger      *slog.Logger
	renumberGap float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSongLookup resolves song ids through lookup. When lookup also
// implements PlayRecorder, now-playing changes record plays.
func WithSongLookup(lookup SongLookup) Option {
	return func(e *Engine) {
		e.songs = lookup
		if recorder, ok := lookup.(PlayRecorder); ok {
			e.plays = recorder
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRenumberGap overrides DefaultRenumberGap. Non-positive values are
// ignored.
func WithRenumberGap(gap float64) Option {
	return func(e *Engine) {
		if gap > 0 && !math.IsInf(gap, 0) {
			e.renumberGap = gap
		}
	}
}

// NewEngine builds an engine over store.
func NewEngine(store Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("queue: store is nil")
	}
	e := &Engine{store: store, renumberGap: DefaultRenumberGap}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.logger = logging.NewComponentLogger(e.logger, "queue-engine")
	return e, nil
}

// Store exposes the backing store.
func (e *Engine) Store() Store { return e.store }

// begin validates the queue id and annotates ctx for logging.
func (e *Engine) begin(ctx context.Context, op, queueID string) (context.Context, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	queueID = strings.TrimSpace(queueID)
	if queueID == "" {
		return ctx, "", validationError(op, "", "queue id is required")
	}
	ctx = services.WithOperation(services.WithQueueID(ctx, queueID), op)
	return ctx, queueID, nil
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}

// MaxPosition bounds explicit destinations. Beyond it float64 can no longer
// tell p and p+1 apart.
const MaxPosition = 1 << 52

func checkPosition(op, queueID, name string, p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return validationError(op, queueID, name+" must be a finite number")
	}
	return nil
}

func checkDestination(op, queueID, name string, p float64) error {
	if err := checkPosition(op, queueID, name, p); err != nil {
		return err
	}
	if math.Abs(p) >= MaxPosition {
		return validationError(op, queueID, fmt.Sprintf("%s must be within ±%d", name, int64(MaxPosition)))
	}
	return nil
}

func (e *Engine) allocator(tx Tx, queueID string) *allocator {
	return &allocator{tx: tx, queueID: queueID, minGap: e.renumberGap}
}

// Items lists the queue in order; limit <= 0 returns everything.
func (e *Engine) Items(ctx context.Context, queueID string, limit int) ([]Item, error) {
	ctx, queueID, err := e.begin(ctx, "list", queueID)
	if err != nil {
		return nil, err
	}
	items, err := e.store.TopN(ctx, queueID, limit)
	if err != nil {
		return nil, wrap("list", queueID, err)
	}
	return items, nil
}

// Peek returns the first item without removing it. ok is false for an empty
// queue.
func (e *Engine) Peek(ctx context.Context, queueID string) (Item, bool, error) {
	ctx, queueID, err := e.begin(ctx, "peek", queueID)
	if err != nil {
		return Item{}, false, err
	}
	items, err := e.store.TopN(ctx, queueID, 1)
	if err != nil {
		return Item{}, false, wrap("peek", queueID, err)
	}
	if len(items) == 0 {
		return Item{}, false, nil
	}
	return items[0], true, nil
}

// Dequeue removes and returns the first item. ok is false for an empty
// queue, which is not an error.
func (e *Engine) Dequeue(ctx context.Context, queueID string) (Item, bool, error) {
	ctx, queueID, err := e.begin(ctx, "dequeue", queueID)
	if err != nil {
		return Item{}, false, err
	}
	var (
		head Item
		ok   bool
	)
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		head, ok = Item{}, false
		items, err := tx.TopN(ctx, queueID, 1)
		if err != nil || len(items) == 0 {
			return err
		}
		head, ok = items[0], true
		return tx.DeleteAt(ctx, queueID, head.Position)
	})
	if err != nil {
		return Item{}, false, wrap("dequeue", queueID, err)
	}
	if ok {
		e.log(ctx).Info("dequeued item", logging.Position(head.Position), logging.SongID(head.Ref.SongID))
		e.queueChanged(ctx, queueID)
	}
	return head, ok, nil
}

// Remove deletes the item at position.
func (e *Engine) Remove(ctx context.Context, queueID string, position float64) (Item, error) {
	ctx, queueID, err := e.begin(ctx, "remove", queueID)
	if err != nil {
		return Item{}, err
	}
	if err := checkPosition("remove", queueID, "position", position); err != nil {
		return Item{}, err
	}
	var removed Item
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		item, ok, err := tx.Get(ctx, queueID, position)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundAt("remove", queueID, position)
		}
		removed = item
		return tx.DeleteAt(ctx, queueID, position)
	})
	if err != nil {
		return Item{}, wrap("remove", queueID, err)
	}
	e.log(ctx).Info("removed item", logging.Position(position), logging.SongID(removed.Ref.SongID))
	e.queueChanged(ctx, queueID)
	return removed, nil
}

// Clear deletes every item of the queue and reports how many were removed.
func (e *Engine) Clear(ctx context.Context, queueID string) (int, error) {
	ctx, queueID, err := e.begin(ctx, "clear", queueID)
	if err != nil {
		return 0, err
	}
	removed, err := e.store.Clear(ctx, queueID)
	if err != nil {
		return 0, wrap("clear", queueID, err)
	}
	e.log(ctx).Info("cleared queue", logging.Int("removed", removed))
	e.queueChanged(ctx, queueID)
	return removed, nil
}

// Queues lists non-empty queues.
func (e *Engine) Queues(ctx context.Context) ([]Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := e.store.Queues(ctx)
	if err != nil {
		return nil, wrap("queues", "", err)
	}
	return out, nil
}

// Renumber rewrites the queue's positions to 1..N.
func (e *Engine) Renumber(ctx context.Context, queueID string) error {
	ctx, queueID, err := e.begin(ctx, "renumber", queueID)
	if err != nil {
		return err
	}
	if err := e.store.InTx(ctx, queueID, func(tx Tx) error {
		return tx.Renumber(ctx, queueID)
	}); err != nil {
		return wrap("renumber", queueID, err)
	}
	e.log(ctx).Info("renumbered queue")
	e.queueChanged(ctx, queueID)
	return nil
}

// Compact renumbers the queue when two neighbours sit closer than the
// renumber gap. It reports whether a renumber happened.
func (e *Engine) Compact(ctx context.Context, queueID string) (bool, error) {
	ctx, queueID, err := e.begin(ctx, "compact", queueID)
	if err != nil {
		return false, err
	}
	var compacted bool
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		items, err := tx.TopN(ctx, queueID, 0)
		if err != nil {
			return err
		}
		if minGap(items) >= e.renumberGap {
			return nil
		}
		compacted = true
		return tx.Renumber(ctx, queueID)
	})
	if err != nil {
		return false, wrap("compact", queueID, err)
	}
	if compacted {
		e.log(ctx).Info("compacted queue positions")
		e.queueChanged(ctx, queueID)
	}
	return compacted, nil
}

func (e *Engine) queueChanged(ctx context.Context, queueID string) {
	if e.notifier == nil {
		return
	}
	items, err := e.store.TopN(ctx, queueID, 0)
	if err != nil {
		e.log(ctx).Warn("load queue for notification failed", logging.Error(err))
		return
	}
	if err := e.notifier.QueueChanged(ctx, queueID, items); err != nil {
		e.log(ctx).Warn("queue change notification failed", logging.Error(err))
	}
}

func (e *Engine) playingChanged(ctx context.Context, queueID string, playing *Playing) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.PlayingChanged(ctx, queueID, playing); err != nil {
		e.log(ctx).Warn("now playing notification failed", logging.Error(err))
	}
}
