package feed

import (
	"sync"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

// DefaultBuffer is how many outcomes a slow subscriber may lag behind
const DefaultBuffer = 8

// Hub fans finished outcomes out to live subscribers. A subscriber whose
// buffer is full misses outcomes instead of blocking the cycle.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan *types.Outcome
	next   int
	buffer int
}

var _ interfaces.OutcomeSink = (*Hub)(nil)

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[int]chan *types.Outcome), buffer: buffer}
}

// Subscribe returns a channel of outcomes and a cancel func that closes it.
func (h *Hub) Subscribe() (<-chan *types.Outcome, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan *types.Outcome, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) RecordOutcome(o *types.Outcome) error {
	if o == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- o:
		default:
		}
	}
	return nil
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
