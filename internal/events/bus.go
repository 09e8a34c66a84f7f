package events

import (
	"fmt"
	"sync"
	"time"

	"leakctl/pkg/logging"
)

// Subscription represents a registered listener on a Bus. The bus holds a
// strong reference to the handler (and everything it closes over) until the
// subscription is removed.
type Subscription struct {
	ID      string
	Filter  EventFilter
	Handler EventHandler

	mu     sync.RWMutex
	closed bool
}

// IsClosed returns whether the subscription is closed
func (s *Subscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.Handler = nil
	s.Filter = nil
	s.mu.Unlock()
}

// BusMetrics tracks bus activity.
type BusMetrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	EventsPublished     int64
	EventsDelivered     int64
	LastEventTime       time.Time
	EventsByType        map[EventType]int64
}

// Bus provides synchronous publish/subscribe. Handlers run on the publisher's
// goroutine in subscription order.
type Bus struct {
	mu            sync.RWMutex
	subscriptions []*Subscription
	metrics       BusMetrics
	subIDCounter  int64
	closed        bool
}

// Default is the process-wide bus that components subscribe to.
var Default = NewBus()

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		metrics: BusMetrics{EventsByType: make(map[EventType]int64)},
	}
}

// Subscribe registers handler for events matching filter. A nil filter
// matches everything.
func (b *Bus) Subscribe(filter EventFilter, handler EventHandler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || handler == nil {
		return nil
	}

	b.subIDCounter++
	sub := &Subscription{
		ID:      fmt.Sprintf("sub-%d", b.subIDCounter),
		Filter:  filter,
		Handler: handler,
	}
	b.subscriptions = append(b.subscriptions, sub)
	b.metrics.TotalSubscriptions++
	b.metrics.ActiveSubscriptions++
	return sub
}

// Unsubscribe removes a subscription and drops the bus's reference to its
// handler. Unsubscribing twice is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscriptions {
		if s == sub {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			b.metrics.ActiveSubscriptions--
			sub.close()
			return
		}
	}
}

// Publish delivers event to every matching subscriber. A panicking handler is
// logged and does not stop delivery to the others.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, len(b.subscriptions))
	copy(subs, b.subscriptions)
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		sub.mu.RLock()
		closed, filter, handler := sub.closed, sub.Filter, sub.Handler
		sub.mu.RUnlock()

		if closed || handler == nil {
			continue
		}
		if filter != nil && !filter(event) {
			continue
		}
		deliver(sub.ID, handler, event)
		delivered++
	}

	b.mu.Lock()
	b.metrics.EventsPublished++
	b.metrics.EventsDelivered += int64(delivered)
	b.metrics.EventsByType[event.Type]++
	b.metrics.LastEventTime = event.Timestamp
	b.mu.Unlock()
}

func deliver(id string, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("Events", "handler %s panicked on %s: %v", id, event.Type, r)
		}
	}()
	handler(event)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// Metrics returns a copy of the bus metrics.
func (b *Bus) Metrics() BusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m := b.metrics
	m.EventsByType = make(map[EventType]int64, len(b.metrics.EventsByType))
	for k, v := range b.metrics.EventsByType {
		m.EventsByType[k] = v
	}
	return m
}

// Reset drops every subscription without closing the bus. Tests use it to
// release listeners a leaking fixture left behind.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscriptions {
		sub.close()
	}
	b.subscriptions = nil
	b.metrics.ActiveSubscriptions = 0
}

// Close closes the bus and all subscriptions
func (b *Bus) Close() {
	b.Reset()
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
