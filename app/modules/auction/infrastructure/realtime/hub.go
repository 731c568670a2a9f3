// Package realtime fans round events out to websocket subscribers.
//
// Events are advisory: delivery is at-most-once and a subscriber that cannot
// keep up is dropped. Clients rebuild state by re-fetching the round.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/metrics"
)

const defaultBuffer = 64

// Subscription receives the encoded events of one round. C is closed when the
// subscription ends, either by Close or because the subscriber fell behind.
type Subscription struct {
	RoundID string
	C       <-chan []byte

	ch     chan []byte
	hub    *Hub
	once   sync.Once
	closed chan struct{}
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Dropped is closed when the hub removed the subscription.
func (s *Subscription) Dropped() <-chan struct{} {
	return s.closed
}

// Hub holds the per-round subscriber sets of this process.
type Hub struct {
	mu      sync.RWMutex
	rounds  map[string]map[*Subscription]struct{}
	buffer  int
	logger  *slog.Logger
	metrics metrics.AuctionMetrics
}

// NewHub creates a Hub with the given per-subscriber buffer.
func NewHub(buffer int, logger *slog.Logger, m metrics.AuctionMetrics) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Hub{
		rounds:  make(map[string]map[*Subscription]struct{}),
		buffer:  buffer,
		logger:  logger,
		metrics: m,
	}
}

// Subscribe registers a subscriber on roundID.
func (h *Hub) Subscribe(roundID string) *Subscription {
	ch := make(chan []byte, h.buffer)
	sub := &Subscription{
		RoundID: roundID,
		C:       ch,
		ch:      ch,
		hub:     h,
		closed:  make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.rounds[roundID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.rounds[roundID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Subscribers returns the number of subscribers on roundID.
func (h *Hub) Subscribers(roundID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rounds[roundID])
}

// Deliver sends an event to the local subscribers of its round.
func (h *Hub) Deliver(ctx context.Context, ev auctiondomain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode round event",
			attr.String("round_id", ev.RoundID),
			attr.Error(err),
		)
		return
	}
	h.DeliverRaw(ctx, ev.RoundID, data)
}

// DeliverRaw sends an already encoded event. Subscribers with a full buffer
// are dropped rather than blocking the sender.
func (h *Hub) DeliverRaw(ctx context.Context, roundID string, data []byte) {
	var slow []*Subscription

	h.mu.RLock()
	for sub := range h.rounds[roundID] {
		select {
		case sub.ch <- data:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.remove(sub)
		h.metrics.RecordRealtimeDropped(ctx)
		h.logger.WarnContext(ctx, "Dropped slow realtime subscriber", attr.String("round_id", roundID))
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0)
	for _, set := range h.rounds {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.remove(sub)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.rounds[sub.RoundID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.rounds, sub.RoundID)
		}
	}
	h.mu.Unlock()

	sub.once.Do(func() {
		close(sub.closed)
		close(sub.ch)
	})
}
