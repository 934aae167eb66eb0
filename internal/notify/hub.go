// Package notify fans values out to subscribers in publish order.
//
// Publish never blocks: each subscriber has a bounded buffer and, when it is
// full, the oldest pending value is dropped so the latest state always
// arrives.
package notify

import "sync"

// DefaultBuffer is the per-subscriber buffer used when NewHub gets n < 1.
const DefaultBuffer = 16

type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	buffer int
	closed bool
}

func NewHub[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{}), buffer: buffer}
}

// Subscription receives published values on C until it is cancelled or the
// hub is closed, after which C is closed.
type Subscription[T any] struct {
	hub  *Hub[T]
	ch   chan T
	once sync.Once
}

// C returns the receive channel.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel detaches the subscription and closes its channel.
func (s *Subscription[T]) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.remove(s)
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub[T]) Subscribe() *Subscription[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscription[T]{hub: h, ch: make(chan T, h.buffer)}
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish delivers v to every subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for s := range h.subs {
		for {
			select {
			case s.ch <- v:
			default:
				// full: drop the oldest and try again
				select {
				case <-s.ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscription. Later publishes are ignored.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		h.remove(s)
	}
}

// remove must be called with h.mu held.
func (h *Hub[T]) remove(s *Subscription[T]) {
	delete(h.subs, s)
	s.once.Do(func() { close(s.ch) })
}
