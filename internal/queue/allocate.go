package queue

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// DefaultRenumberGap is the smallest neighbour gap the engine splits before
// renumbering the queue.
const DefaultRenumberGap = 1e-9

// midpoint halves (lo, hi) and reports whether the result is usable: strictly
// between both ends and not closer together than minGap.
func midpoint(lo, hi, minGap float64) (float64, bool) {
	if !(hi > lo) || hi-lo < minGap {
		return 0, false
	}
	mid := lo + (hi-lo)/2
	if !(lo < mid && mid < hi) || math.IsInf(mid, 0) {
		return 0, false
	}
	return mid, true
}

// allocator hands out positions for one transaction. It renumbers at most
// once; after that every neighbour gap is at least 1.
type allocator struct {
	tx         Tx
	queueID    string
	minGap     float64
	renumbered bool
}

// between returns a free position strictly between lo and hi, where hi is
// the next occupied position after lo. When the queue gets renumbered, lo, hi
// and every tracked position are remapped onto the new 1..N scale.
func (a *allocator) between(ctx context.Context, lo, hi float64, track ...*float64) (float64, error) {
	if mid, ok := midpoint(lo, hi, a.minGap); ok {
		return mid, nil
	}
	if a.renumbered {
		return 0, fmt.Errorf("no free position between %v and %v", lo, hi)
	}
	remap, err := a.renumber(ctx, track)
	if err != nil {
		return 0, err
	}
	return a.between(ctx, remap(lo), remap(hi))
}

// past returns the position one step beyond edge: above it for dir > 0,
// below it for dir < 0. round, when set, snaps the result to a whole number
// in the step direction. Far from zero a float64 step can collapse onto edge
// itself; the queue is then renumbered and the step retried from the
// remapped edge.
func (a *allocator) past(ctx context.Context, edge, dir float64, round func(float64) float64, track ...*float64) (float64, error) {
	if p, ok := step(edge, dir, round); ok {
		return p, nil
	}
	if a.renumbered {
		return 0, fmt.Errorf("no free position past %v", edge)
	}
	remap, err := a.renumber(ctx, track)
	if err != nil {
		return 0, err
	}
	return a.past(ctx, remap(edge), dir, round)
}

func step(edge, dir float64, round func(float64) float64) (float64, bool) {
	p := edge + dir
	if round != nil {
		p = round(p)
	}
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return 0, false
	}
	if dir > 0 {
		return p, p > edge
	}
	return p, p < edge
}

// renumber rewrites the queue to 1..N and returns the mapping from old to new
// positions. Tracked positions are remapped in place.
func (a *allocator) renumber(ctx context.Context, track []*float64) (func(float64) float64, error) {
	items, err := a.tx.TopN(ctx, a.queueID, 0)
	if err != nil {
		return nil, err
	}
	positions := make([]float64, len(items))
	for i, item := range items {
		positions[i] = item.Position
	}
	// After renumbering the item at index i sits on i+1, so any position p maps
	// to the number of items at or below it.
	remap := func(p float64) float64 {
		return float64(sort.Search(len(positions), func(i int) bool { return positions[i] > p }))
	}
	if err := a.tx.Renumber(ctx, a.queueID); err != nil {
		return nil, err
	}
	a.renumbered = true
	for _, p := range track {
		*p = remap(*p)
	}
	return remap, nil
}

// minGap reports the smallest distance between adjacent positions, or +Inf
// for queues with fewer than two items.
func minGap(items []Item) float64 {
	gap := math.Inf(1)
	for i := 1; i < len(items); i++ {
		if d := items[i].Position - items[i-1].Position; d < gap {
			gap = d
		}
	}
	return gap
}
