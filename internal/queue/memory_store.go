package queue

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps queues in process memory. Transactions stage their
// changes in an overlay and publish it only when the callback succeeds.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	queues  map[string][]Item
	playing map[string]Playing
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queues:  make(map[string][]Item),
		playing: make(map[string]Playing),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// InTx serializes fn against every other caller of the store.
func (m *MemoryStore) InTx(ctx context.Context, _ string, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:   m,
		nextID:  m.nextID,
		queues:  make(map[string][]Item),
		playing: make(map[string]*Playing),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func memCall[T any](ctx context.Context, m *MemoryStore, queueID string, fn func(tx Tx) (T, error)) (T, error) {
	var out T
	err := m.InTx(ctx, queueID, func(tx Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}

type found[T any] struct {
	value T
	ok    bool
}

func (m *MemoryStore) Insert(ctx context.Context, queueID string, position float64, ref ItemRef) (Item, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (Item, error) { return tx.Insert(ctx, queueID, position, ref) })
}

func (m *MemoryStore) DeleteAt(ctx context.Context, queueID string, position float64) error {
	return m.InTx(ctx, queueID, func(tx Tx) error { return tx.DeleteAt(ctx, queueID, position) })
}

func (m *MemoryStore) FirstPosition(ctx context.Context, queueID string) (float64, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (float64, error) { return tx.FirstPosition(ctx, queueID) })
}

func (m *MemoryStore) LastPosition(ctx context.Context, queueID string) (float64, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (float64, error) { return tx.LastPosition(ctx, queueID) })
}

func (m *MemoryStore) NextPositionAfter(ctx context.Context, queueID string, position float64) (float64, bool, error) {
	res, err := memCall(ctx, m, queueID, func(tx Tx) (found[float64], error) {
		pos, ok, err := tx.NextPositionAfter(ctx, queueID, position)
		return found[float64]{pos, ok}, err
	})
	return res.value, res.ok, err
}

func (m *MemoryStore) PositionBefore(ctx context.Context, queueID string, position float64, skip int) (float64, bool, error) {
	res, err := memCall(ctx, m, queueID, func(tx Tx) (found[float64], error) {
		pos, ok, err := tx.PositionBefore(ctx, queueID, position, skip)
		return found[float64]{pos, ok}, err
	})
	return res.value, res.ok, err
}

func (m *MemoryStore) TopN(ctx context.Context, queueID string, n int) ([]Item, error) {
	return memCall(ctx, m, queueID, func(tx Tx) ([]Item, error) { return tx.TopN(ctx, queueID, n) })
}

func (m *MemoryStore) Get(ctx context.Context, queueID string, position float64) (Item, bool, error) {
	res, err := memCall(ctx, m, queueID, func(tx Tx) (found[Item], error) {
		item, ok, err := tx.Get(ctx, queueID, position)
		return found[Item]{item, ok}, err
	})
	return res.value, res.ok, err
}

func (m *MemoryStore) Count(ctx context.Context, queueID string) (int, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (int, error) { return tx.Count(ctx, queueID) })
}

func (m *MemoryStore) UpdatePosition(ctx context.Context, queueID string, oldPosition, newPosition float64) error {
	return m.InTx(ctx, queueID, func(tx Tx) error { return tx.UpdatePosition(ctx, queueID, oldPosition, newPosition) })
}

func (m *MemoryStore) Renumber(ctx context.Context, queueID string) error {
	return m.InTx(ctx, queueID, func(tx Tx) error { return tx.Renumber(ctx, queueID) })
}

func (m *MemoryStore) Clear(ctx context.Context, queueID string) (int, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (int, error) { return tx.Clear(ctx, queueID) })
}

func (m *MemoryStore) SetPlaying(ctx context.Context, queueID string, ref ItemRef) (Playing, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (Playing, error) { return tx.SetPlaying(ctx, queueID, ref) })
}

func (m *MemoryStore) ClearPlaying(ctx context.Context, queueID string) (bool, error) {
	return memCall(ctx, m, queueID, func(tx Tx) (bool, error) { return tx.ClearPlaying(ctx, queueID) })
}

func (m *MemoryStore) Playing(ctx context.Context, queueID string) (Playing, bool, error) {
	res, err := memCall(ctx, m, queueID, func(tx Tx) (found[Playing], error) {
		p, ok, err := tx.Playing(ctx, queueID)
		return found[Playing]{p, ok}, err
	})
	return res.value, res.ok, err
}

// Queues lists every queue that holds at least one item.
func (m *MemoryStore) Queues(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Summary, 0, len(m.queues))
	for id, items := range m.queues {
		if len(items) > 0 {
			out = append(out, Summary{QueueID: id, Items: len(items)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueueID < out[j].QueueID })
	return out, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// memTx reads through to the committed state until a queue is first written,
// then works on a private copy of that queue's slice.
type memTx struct {
	store   *MemoryStore
	nextID  int64
	queues  map[string][]Item
	playing map[string]*Playing // nil value marks a cleared pointer
}

func (t *memTx) items(queueID string) []Item {
	if items, ok := t.queues[queueID]; ok {
		return items
	}
	return t.store.queues[queueID]
}

func (t *memTx) writable(queueID string) []Item {
	if items, ok := t.queues[queueID]; ok {
		return items
	}
	base := t.store.queues[queueID]
	items := make([]Item, len(base))
	copy(items, base)
	t.queues[queueID] = items
	return items
}

func (t *memTx) commit() {
	t.store.nextID = t.nextID
	for id, items := range t.queues {
		if len(items) == 0 {
			delete(t.store.queues, id)
			continue
		}
		t.store.queues[id] = items
	}
	for id, p := range t.playing {
		if p == nil {
			delete(t.store.playing, id)
			continue
		}
		t.store.playing[id] = *p
	}
}

// search returns the index of the first item with Position >= position.
func search(items []Item, position float64) int {
	return sort.Search(len(items), func(i int) bool { return items[i].Position >= position })
}

func (t *memTx) Insert(ctx context.Context, queueID string, position float64, ref ItemRef) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	if math.IsNaN(position) {
		return Item{}, validationError("insert", queueID, "position is not a number")
	}
	items := t.writable(queueID)
	idx := search(items, position)
	if idx < len(items) && items[idx].Position == position {
		return Item{}, conflictAt("insert", queueID, position, nil)
	}
	t.nextID++
	item := Item{ID: t.nextID, QueueID: queueID, Position: position, Ref: ref, CreatedAt: t.store.now()}
	items = append(items, Item{})
	copy(items[idx+1:], items[idx:])
	items[idx] = item
	t.queues[queueID] = items
	return item, nil
}

func (t *memTx) DeleteAt(ctx context.Context, queueID string, position float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	items := t.items(queueID)
	idx := search(items, position)
	if idx >= len(items) || items[idx].Position != position {
		return notFoundAt("delete", queueID, position)
	}
	items = t.writable(queueID)
	t.queues[queueID] = append(items[:idx], items[idx+1:]...)
	return nil
}

func (t *memTx) FirstPosition(ctx context.Context, queueID string) (float64, error) {
	items := t.items(queueID)
	if len(items) == 0 {
		return EmptyFirstPosition, ctx.Err()
	}
	return items[0].Position, ctx.Err()
}

func (t *memTx) LastPosition(ctx context.Context, queueID string) (float64, error) {
	items := t.items(queueID)
	if len(items) == 0 {
		return EmptyLastPosition, ctx.Err()
	}
	return items[len(items)-1].Position, ctx.Err()
}

func (t *memTx) NextPositionAfter(ctx context.Context, queueID string, position float64) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	items := t.items(queueID)
	idx := sort.Search(len(items), func(i int) bool { return items[i].Position > position })
	if idx >= len(items) {
		return 0, false, nil
	}
	return items[idx].Position, true, nil
}

func (t *memTx) PositionBefore(ctx context.Context, queueID string, position float64, skip int) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if skip < 0 {
		skip = 0
	}
	items := t.items(queueID)
	idx := search(items, position) - 1 - skip
	if idx < 0 {
		return 0, false, nil
	}
	return items[idx].Position, true, nil
}

func (t *memTx) TopN(ctx context.Context, queueID string, n int) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := t.items(queueID)
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (t *memTx) Get(ctx context.Context, queueID string, position float64) (Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, false, err
	}
	items := t.items(queueID)
	idx := search(items, position)
	if idx >= len(items) || items[idx].Position != position {
		return Item{}, false, nil
	}
	return items[idx], true, nil
}

func (t *memTx) Count(ctx context.Context, queueID string) (int, error) {
	return len(t.items(queueID)), ctx.Err()
}

func (t *memTx) UpdatePosition(ctx context.Context, queueID string, oldPosition, newPosition float64) error {
	item, ok, err := t.Get(ctx, queueID, oldPosition)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundAt("update_position", queueID, oldPosition)
	}
	if oldPosition == newPosition {
		return nil
	}
	if _, taken, _ := t.Get(ctx, queueID, newPosition); taken {
		return conflictAt("update_position", queueID, newPosition, nil)
	}
	if err := t.DeleteAt(ctx, queueID, oldPosition); err != nil {
		return err
	}
	items := t.writable(queueID)
	item.Position = newPosition
	idx := search(items, newPosition)
	items = append(items, Item{})
	copy(items[idx+1:], items[idx:])
	items[idx] = item
	t.queues[queueID] = items
	return nil
}

func (t *memTx) Renumber(ctx context.Context, queueID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	items := t.writable(queueID)
	for i := range items {
		items[i].Position = float64(i + 1)
	}
	return nil
}

func (t *memTx) Clear(ctx context.Context, queueID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := len(t.items(queueID))
	t.queues[queueID] = nil
	return n, nil
}

func (t *memTx) SetPlaying(ctx context.Context, queueID string, ref ItemRef) (Playing, error) {
	if err := ctx.Err(); err != nil {
		return Playing{}, err
	}
	p := Playing{QueueID: queueID, Ref: ref, StartedAt: t.store.now()}
	t.playing[queueID] = &p
	return p, nil
}

func (t *memTx) ClearPlaying(ctx context.Context, queueID string) (bool, error) {
	_, had, err := t.Playing(ctx, queueID)
	if err != nil {
		return false, err
	}
	t.playing[queueID] = nil
	return had, nil
}

func (t *memTx) Playing(ctx context.Context, queueID string) (Playing, bool, error) {
	if err := ctx.Err(); err != nil {
		return Playing{}, false, err
	}
	if p, ok := t.playing[queueID]; ok {
		if p == nil {
			return Playing{}, false, nil
		}
		return *p, true, nil
	}
	p, ok := t.store.playing[queueID]
	return p, ok, nil
}
