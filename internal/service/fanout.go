package service

import (
	"sync"

	"github.com/google/uuid"

	"thermohub/internal/models"
)

// defaultFanoutBuffer holds a few seconds of traffic at the expected event
// rates (sensor every 5s, status every 60s) with ample headroom for bursts.
const defaultFanoutBuffer = 32

// Subscriber is one live viewer's handle. Events arrive on C in the order
// published; C is closed by Unsubscribe.
type Subscriber struct {
	ID string
	C  chan models.DomainEvent
}

// LiveFanout broadcasts domain events to any number of live subscribers.
//
// Publish never blocks: each subscriber has a bounded buffer, and when a
// subscriber's buffer is full the oldest buffered event is dropped to make
// room (last-value-wins; dashboard state is idempotent on the latest value).
// A stalled subscriber therefore never delays the publisher or its peers.
type LiveFanout struct {
	mu     sync.Mutex
	buffer int
	subs   map[string]*Subscriber
}

func NewLiveFanout(buffer int) *LiveFanout {
	if buffer <= 0 {
		buffer = defaultFanoutBuffer
	}
	return &LiveFanout{
		buffer: buffer,
		subs:   make(map[string]*Subscriber),
	}
}

// Subscribe registers a new live viewer. No replay: events published before
// this call are never delivered to the new subscriber.
func (f *LiveFanout) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID: uuid.NewString(),
		C:  make(chan models.DomainEvent, f.buffer),
	}

	f.mu.Lock()
	f.subs[sub.ID] = sub
	f.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// concurrently with Publish and idempotent for unknown ids.
func (f *LiveFanout) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return
	}
	delete(f.subs, id)
	// Sends happen under the same mutex, so closing here cannot race a send.
	close(sub.C)
}

// Publish delivers the event to every current subscriber, FIFO per
// subscriber, dropping that subscriber's oldest buffered event on overflow.
func (f *LiveFanout) Publish(ev models.DomainEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		select {
		case sub.C <- ev:
			continue
		default:
		}

		// Buffer full: evict the oldest event, then try once more. The
		// consumer may have drained concurrently, so both selects stay
		// non-blocking.
		select {
		case <-sub.C:
		default:
		}
		select {
		case sub.C <- ev:
		default:
		}
	}
}

// Count returns the number of connected subscribers.
func (f *LiveFanout) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
