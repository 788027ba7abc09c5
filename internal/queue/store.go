package queue

import "context"

// Empty-queue answers of FirstPosition and LastPosition. They make "enqueue at
// end" of an empty queue land on 1.
const (
	EmptyFirstPosition float64 = 1
	EmptyLastPosition  float64 = 0
)

// OrderedItemStore persists (queue, position, ref) rows. It enforces position
// uniqueness per queue and nothing else.
type OrderedItemStore interface {
	Insert(ctx context.Context, queueID string, position float64, ref ItemRef) (Item, error)
	DeleteAt(ctx context.Context, queueID string, position float64) error
	FirstPosition(ctx context.Context, queueID string) (float64, error)
	LastPosition(ctx context.Context, queueID string) (float64, error)
	NextPositionAfter(ctx context.Context, queueID string, position float64) (float64, bool, error)
	// PositionBefore walks positions below position in descending order and
	// returns the one at offset skip.
	PositionBefore(ctx context.Context, queueID string, position float64, skip int) (float64, bool, error)
	// TopN returns the first n items in order; n <= 0 returns every item.
	TopN(ctx context.Context, queueID string, n int) ([]Item, error)
	Get(ctx context.Context, queueID string, position float64) (Item, bool, error)
	Count(ctx context.Context, queueID string) (int, error)
	UpdatePosition(ctx context.Context, queueID string, oldPosition, newPosition float64) error
	// Renumber rewrites positions to 1..N keeping the current order.
	Renumber(ctx context.Context, queueID string) error
	Clear(ctx context.Context, queueID string) (int, error)
}

// PlayingStore persists the now-playing pointer.
type PlayingStore interface {
	SetPlaying(ctx context.Context, queueID string, ref ItemRef) (Playing, error)
	ClearPlaying(ctx context.Context, queueID string) (bool, error)
	Playing(ctx context.Context, queueID string) (Playing, bool, error)
}

// Tx is the view handed to InTx callbacks.
type Tx interface {
	OrderedItemStore
	PlayingStore
}

// Store is the full persistence contract consumed by Engine.
type Store interface {
	Tx
	// InTx runs fn atomically with respect to other writers of queueID. A
	// non-nil error from fn rolls everything back.
	InTx(ctx context.Context, queueID string, fn func(tx Tx) error) error
	Queues(ctx context.Context) ([]Summary, error)
	Close() error
}
