// Package realtime fans committed write events out to per-owner
// subscribers. Delivery is best effort: a subscriber that falls behind
// is dropped rather than blocking writers.
package realtime

import (
	"sync"

	"github.com/lexora/lexora/internal/store"
)

const subscriberBuffer = 16

// Subscription is one open change feed.
type Subscription struct {
	// C delivers events for the subscribed owner and collection.
	C <-chan store.Event

	hub  *Hub
	ch   chan store.Event
	once sync.Once
}

// Close detaches the subscription from the hub. Callers must close every
// subscription they open or its slot leaks until the hub drops it.
// Close is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

type subKey struct {
	owner      string
	collection string
}

// Hub routes store events to subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[subKey]map[*Subscription]struct{}
}

var _ store.Publisher = (*Hub)(nil)

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[subKey]map[*Subscription]struct{}{}}
}

// Subscribe opens a change feed for one owner and collection. An empty
// collection subscribes to every collection the owner writes.
func (h *Hub) Subscribe(owner, collection string) *Subscription {
	sub := &Subscription{hub: h, ch: make(chan store.Event, subscriberBuffer)}
	sub.C = sub.ch

	key := subKey{owner: owner, collection: collection}
	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = map[*Subscription]struct{}{}
	}
	h.subs[key][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	for key, set := range h.subs {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, key)
			}
		}
	}
	h.mu.Unlock()
	close(sub.ch)
}

// Publish delivers the event to matching subscribers. Full subscriber
// buffers drop the event for that subscriber only.
func (h *Hub) Publish(ev store.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, key := range []subKey{
		{owner: ev.Owner, collection: ev.Collection},
		{owner: ev.Owner, collection: ""},
	} {
		for sub := range h.subs[key] {
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}
