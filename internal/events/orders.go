package events

import (
	"sync"

	"github.com/vadiminshakov/twap/internal/domain"
)

// OrderBroadcaster fans out order lifecycle events to all subscribers via buffered channels.
type OrderBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan domain.OrderEvent]struct{}
	buffer int
}

// NewOrderBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewOrderBroadcaster(buffer int) *OrderBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &OrderBroadcaster{
		subs:   make(map[chan domain.OrderEvent]struct{}),
		buffer: buffer,
	}
}

// Publish sends the event to all subscribers, dropping if a reader is slow.
func (b *OrderBroadcaster) Publish(e domain.OrderEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives events until Unsubscribe is called.
func (b *OrderBroadcaster) Subscribe() chan domain.OrderEvent {
	ch := make(chan domain.OrderEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *OrderBroadcaster) Unsubscribe(ch chan domain.OrderEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
