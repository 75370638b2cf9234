package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEventBuffer is the per-subscriber buffer used when none is configured.
const DefaultEventBuffer = 100

type subscription struct {
	pattern string
	ch      chan Event
}

// Broker fans events out to subscribers whose pattern matches the event ID.
// Publishing never blocks: a subscriber with a full buffer misses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[int]*subscription
	next    int
	buffer  int
	dropped int
	logger  *slog.Logger
}

// NewBroker creates a broker. A non-positive buffer means DefaultEventBuffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Broker{
		subs:   make(map[int]*subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe returns a channel receiving events whose ID matches pattern.
// An empty pattern matches everything. The channel closes when ctx is done.
func (b *Broker) Subscribe(ctx context.Context, pattern string) (<-chan Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	sub := &subscription{pattern: pattern, ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch, nil
}

// Publish delivers e to every matching subscriber.
func (b *Broker) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if ok, _ := doublestar.Match(sub.pattern, e.ID); !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.dropped++
			if b.logger != nil {
				b.logger.Warn("event dropped, subscriber buffer full", "event", e.String(), "pattern", sub.pattern)
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because of full buffers.
func (b *Broker) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}
