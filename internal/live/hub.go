package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one scan pushed to dashboard subscribers, joined with the product
// so the client can render it without a lookup.
type Event struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	ScannedAt time.Time `json:"scanned_at"`
}

// subscriberBuffer bounds how far a slow websocket client may fall behind
// before it is dropped.
const subscriberBuffer = 16

// Hub fans scan events out to live-dashboard subscribers, keyed by store so
// a subscriber only ever sees its own store's scans (the handler resolves
// the effective store id before subscribing).
//
// Delivery is best-effort by design: the feed is a convenience view over the
// scan ledger, which remains the source of truth. Publish never blocks the
// public scan path — a subscriber whose buffer is full is closed and dropped.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[*Subscription]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription is one dashboard client's feed. The channel is closed when
// the hub drops the client, so receivers can range over it.
type Subscription struct {
	storeID uuid.UUID
	ch      chan Event
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (h *Hub) Subscribe(storeID uuid.UUID) *Subscription {
	sub := &Subscription{
		storeID: storeID,
		ch:      make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[storeID] == nil {
		h.subs[storeID] = make(map[*Subscription]struct{})
	}
	h.subs[storeID][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches a client and closes its channel. Safe to call after
// the hub already dropped the client.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// remove must be called with h.mu held.
func (h *Hub) remove(sub *Subscription) {
	set, ok := h.subs[sub.storeID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.storeID)
	}
	close(sub.ch)
}

// Publish delivers an event to every subscriber of the store. Non-blocking:
// a full buffer drops that subscriber rather than stalling the scan handler.
func (h *Hub) Publish(storeID uuid.UUID, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[storeID] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping slow live-feed subscriber",
				zap.String("store_id", storeID.String()))
			h.remove(sub)
		}
	}
}
