package queue

import (
	"context"
	"math"

	"karaoke/internal/logging"
)

// MoveUp swaps the item at position with its predecessor.
func (e *Engine) MoveUp(ctx context.Context, queueID string, position float64) (Item, error) {
	return e.Move(ctx, queueID, MoveUp, position, 0)
}

// MoveDown swaps the item at position with its successor.
func (e *Engine) MoveDown(ctx context.Context, queueID string, position float64) (Item, error) {
	return e.Move(ctx, queueID, MoveDown, position, 0)
}

// MoveToFront makes the item at position the next to play.
func (e *Engine) MoveToFront(ctx context.Context, queueID string, position float64) (Item, error) {
	return e.Move(ctx, queueID, MoveAtFront, position, 0)
}

// MoveToEnd makes the item at position the last to play.
func (e *Engine) MoveToEnd(ctx context.Context, queueID string, position float64) (Item, error) {
	return e.Move(ctx, queueID, MoveAtEnd, position, 0)
}

// MoveAfter places the item at position directly behind after.
func (e *Engine) MoveAfter(ctx context.Context, queueID string, position, after float64) (Item, error) {
	return e.Move(ctx, queueID, MoveAfterItem, position, after)
}

// MoveTo relocates the item at position onto an explicit free position.
func (e *Engine) MoveTo(ctx context.Context, queueID string, position, target float64) (Item, error) {
	return e.Move(ctx, queueID, MoveTo, position, target)
}

// Move relocates the item at position. arg is the reference position for
// MoveAfterItem and the destination for MoveTo. The returned item carries the
// final position; a move that would not change the order leaves the item in
// place and emits no notification.
func (e *Engine) Move(ctx context.Context, queueID string, method MoveMethod, position, arg float64) (Item, error) {
	op := "move_" + string(method)
	ctx, queueID, err := e.begin(ctx, op, queueID)
	if err != nil {
		return Item{}, err
	}
	if err := checkPosition(op, queueID, "position", position); err != nil {
		return Item{}, err
	}
	switch method {
	case MoveUp, MoveDown, MoveAtFront, MoveAtEnd:
	case MoveAfterItem:
		if err := checkPosition(op, queueID, "afterPosition", arg); err != nil {
			return Item{}, err
		}
	case MoveTo:
		if err := checkDestination(op, queueID, "newPosition", arg); err != nil {
			return Item{}, err
		}
	default:
		return Item{}, validationError(op, queueID, "unknown move method "+string(method))
	}

	var (
		moved   Item
		changed bool
	)
	err = e.store.InTx(ctx, queueID, func(tx Tx) error {
		item, ok, err := tx.Get(ctx, queueID, position)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundAt(op, queueID, position)
		}
		m := &mover{tx: tx, queueID: queueID, alloc: e.allocator(tx, queueID)}
		var dest float64
		dest, changed, err = m.destination(ctx, method, position, arg)
		if err != nil {
			return err
		}
		moved = item
		if !changed {
			// A renumber during allocation may still have shifted the item.
			moved.Position = m.current(position)
			return nil
		}
		from := m.current(position)
		if err := tx.UpdatePosition(ctx, queueID, from, dest); err != nil {
			return err
		}
		moved.Position = dest
		return nil
	})
	if err != nil {
		return Item{}, wrap(op, queueID, err)
	}
	if changed {
		e.log(ctx).Info("moved item",
			logging.String("method", string(method)),
			logging.Float64("from", position),
			logging.Float64("to", moved.Position),
		)
		e.queueChanged(ctx, queueID)
	}
	return moved, nil
}

// mover computes destinations for one Move call and follows the target
// through a possible renumber.
type mover struct {
	tx      Tx
	queueID string
	alloc   *allocator
	target  *float64
}

func (m *mover) current(original float64) float64 {
	if m.target != nil {
		return *m.target
	}
	return original
}

func (m *mover) destination(ctx context.Context, method MoveMethod, target, arg float64) (float64, bool, error) {
	m.target = &target
	switch method {
	case MoveAtFront:
		return m.toFront(ctx, target)
	case MoveAtEnd:
		return m.toEnd(ctx, target)
	case MoveUp:
		before, ok, err := m.tx.PositionBefore(ctx, m.queueID, target, 1)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return m.toFront(ctx, target)
		}
		return m.after(ctx, target, before)
	case MoveDown:
		next, ok, err := m.tx.NextPositionAfter(ctx, m.queueID, target)
		if err != nil || !ok {
			return 0, false, err
		}
		return m.after(ctx, target, next)
	case MoveAfterItem:
		return m.after(ctx, target, arg)
	case MoveTo:
		if arg == target {
			return 0, false, nil
		}
		return arg, true, nil
	}
	return 0, false, nil
}

func (m *mover) toFront(ctx context.Context, target float64) (float64, bool, error) {
	first, err := m.tx.FirstPosition(ctx, m.queueID)
	if err != nil {
		return 0, false, err
	}
	if first == target {
		return 0, false, nil
	}
	pos, err := m.alloc.past(ctx, first, -1, math.Floor, m.target)
	return pos, err == nil, err
}

func (m *mover) toEnd(ctx context.Context, target float64) (float64, bool, error) {
	last, err := m.tx.LastPosition(ctx, m.queueID)
	if err != nil {
		return 0, false, err
	}
	if last == target {
		return 0, false, nil
	}
	pos, err := m.alloc.past(ctx, last, 1, math.Ceil, m.target)
	return pos, err == nil, err
}

func (m *mover) after(ctx context.Context, target, after float64) (float64, bool, error) {
	if after == target {
		return 0, false, nil
	}
	next, ok, err := m.tx.NextPositionAfter(ctx, m.queueID, after)
	if err != nil {
		return 0, false, err
	}
	if ok && next == target {
		return 0, false, nil
	}
	if !ok {
		pos, err := m.alloc.past(ctx, after, 1, math.Ceil, m.target)
		return pos, err == nil, err
	}
	pos, err := m.alloc.between(ctx, after, next, m.target)
	if err != nil {
		return 0, false, err
	}
	return pos, true, nil
}
