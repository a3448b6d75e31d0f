// Package events implements reveal notification sinks.
package events

import (
	"context"
	"sync"

	com_events "github.com/mr-shifu/pedersen-commit/pkg/common/events"
)

const defaultBufferSize = 128

// Subscriber receives the events published on a Bus.
type Subscriber <-chan com_events.RevealEvent

// Bus fans events out to subscribers over buffered channels. A subscriber
// that falls behind loses events rather than stalling the publisher.
type Bus struct {
	lock sync.RWMutex
	size int
	subs []chan com_events.RevealEvent
}

var _ com_events.Sink = (*Bus)(nil)

// NewBus creates a Bus whose subscriber channels hold size events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Bus{size: size}
}

// Subscribe registers a new subscriber.
func (b *Bus) Subscribe() Subscriber {
	b.lock.Lock()
	defer b.lock.Unlock()

	ch := make(chan com_events.RevealEvent, b.size)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers ev to every subscriber with room for it.
func (b *Bus) Publish(_ context.Context, ev com_events.RevealEvent) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default: // drop on backpressure
		}
	}
}

// Close closes all subscriber channels. Publishing after Close is a no-op.
func (b *Bus) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
