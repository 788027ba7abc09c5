package notifications

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultSubscriberBuffer is the per-subscriber backlog before events drop.
const DefaultSubscriberBuffer = 16

// Hub broadcasts events to in-process subscribers of one queue. Slow
// subscribers lose events rather than stall the publisher.
type Hub struct {
	mu      sync.RWMutex
	buffer  int
	subs    map[string]map[*Subscription]struct{}
	dropped atomic.Int64
}

// Subscription receives the events of one queue until closed.
type Subscription struct {
	hub     *Hub
	queueID string
	events  chan Event
	once    sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{buffer: buffer, subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers interest in queueID.
func (h *Hub) Subscribe(queueID string) *Subscription {
	sub := &Subscription{hub: h, queueID: queueID, events: make(chan Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[queueID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[queueID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Events is closed once the subscription is closed.
func (s *Subscription) Events() <-chan Event { return s.events }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[s.queueID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.queueID)
			}
		}
		close(s.events)
	})
}

// Subscribers counts open subscriptions across all queues.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.subs {
		total += len(set)
	}
	return total
}

// Dropped counts events discarded because a subscriber was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (h *Hub) Name() string { return "hub" }

// Publish never blocks and never fails.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.QueueID] {
		select {
		case sub.events <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Close ends every subscription.
func (h *Hub) Close() error {
	h.mu.RLock()
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()
	for _, sub := range all {
		sub.Close()
	}
	return nil
}
