// Package broadcast fans item events out to connected clients. Delivery is
// best effort: there is no persistence, no replay, and a client whose buffer
// is full misses the event.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erazemk/lostfound/internal/model"
)

// Event types.
const (
	EventItemCreated = "itemCreated"
	EventItemClaimed = "itemClaimed"
)

// DefaultBuffer is the number of undelivered events held per subscriber.
const DefaultBuffer = 16

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lostfound_live_clients",
		Help: "Number of clients subscribed to live item updates.",
	})
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_live_events_published_total",
		Help: "Item events published to live subscribers.",
	}, []string{"event"})
	deliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_live_deliveries_dropped_total",
		Help: "Event deliveries dropped because a subscriber was not keeping up.",
	})
)

// Event is the message sent to clients.
type Event struct {
	Type string     `json:"event"`
	Item model.Item `json:"item"`
}

// Hub is the registry of live subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With("component", "broadcast"),
	}
}

// Subscription receives encoded events until it is closed.
type Subscription struct {
	hub  *Hub
	send chan []byte
	once sync.Once
}

// Subscribe registers a new subscriber with the given buffer size.
// Subscribing to a closed hub returns an already closed subscription.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{hub: h, send: make(chan []byte, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.send) })
		return s
	}
	h.subs[s] = struct{}{}
	connectedClients.Inc()
	return s
}

// Messages returns the channel of encoded events. It is closed when the
// subscription ends.
func (s *Subscription) Messages() <-chan []byte {
	return s.send
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		delete(s.hub.subs, s)
		close(s.send)
		connectedClients.Dec()
	})
}

// Publish delivers ev to every current subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode event", "event", ev.Type, "error", err)
		return
	}
	eventsPublished.WithLabelValues(ev.Type).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.send <- msg:
		default:
			deliveriesDropped.Inc()
			h.logger.Debug("subscriber buffer full, event dropped", "event", ev.Type, "item_id", ev.Item.ID)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		s.closeLocked()
	}
}
