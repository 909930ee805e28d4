// Package feed owns the live-update surface: a subscriber hub, the
// rolling price history, the service facade, and the scheduler that
// drives refresh cycles.
package feed

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/metrics"
)

// Hub fans quote and prediction updates out to subscribers. Callbacks
// run synchronously on the broadcasting goroutine; subscribers that
// need to block should hand off to their own goroutine.
type Hub struct {
	mu        sync.RWMutex
	quoteSubs map[uuid.UUID]func([]core.QuoteSnapshot)
	predSubs  map[uuid.UUID]func([]core.PredictionResult)

	metrics *metrics.Registry
	logger  *zap.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger.
func WithHubLogger(l *zap.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithHubMetrics sets the metrics registry.
func WithHubMetrics(m *metrics.Registry) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		quoteSubs: make(map[uuid.UUID]func([]core.QuoteSnapshot)),
		predSubs:  make(map[uuid.UUID]func([]core.PredictionResult)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SubscribeQuotes registers a callback for quote broadcasts and
// returns its unsubscribe func. Unsubscribing is idempotent.
func (h *Hub) SubscribeQuotes(fn func([]core.QuoteSnapshot)) func() {
	id := uuid.New()

	h.mu.Lock()
	h.quoteSubs[id] = fn
	h.mu.Unlock()
	h.gauge()

	return func() {
		h.mu.Lock()
		delete(h.quoteSubs, id)
		h.mu.Unlock()
		h.gauge()
	}
}

// SubscribePredictions registers a callback for prediction broadcasts
// and returns its unsubscribe func. Unsubscribing is idempotent.
func (h *Hub) SubscribePredictions(fn func([]core.PredictionResult)) func() {
	id := uuid.New()

	h.mu.Lock()
	h.predSubs[id] = fn
	h.mu.Unlock()
	h.gauge()

	return func() {
		h.mu.Lock()
		delete(h.predSubs, id)
		h.mu.Unlock()
		h.gauge()
	}
}

// BroadcastQuotes delivers the current quote set to every subscriber.
func (h *Hub) BroadcastQuotes(quotes []core.QuoteSnapshot) {
	h.mu.RLock()
	subs := make([]func([]core.QuoteSnapshot), 0, len(h.quoteSubs))
	for _, fn := range h.quoteSubs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(quotes)
	}
	if h.metrics != nil {
		h.metrics.RecordBroadcast("quotes")
	}
}

// BroadcastPredictions delivers the current prediction set to every
// subscriber.
func (h *Hub) BroadcastPredictions(predictions []core.PredictionResult) {
	h.mu.RLock()
	subs := make([]func([]core.PredictionResult), 0, len(h.predSubs))
	for _, fn := range h.predSubs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(predictions)
	}
	if h.metrics != nil {
		h.metrics.RecordBroadcast("predictions")
	}
}

// QuoteSubscribers returns the current quote subscriber count.
func (h *Hub) QuoteSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.quoteSubs)
}

// PredictionSubscribers returns the current prediction subscriber
// count.
func (h *Hub) PredictionSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.predSubs)
}

func (h *Hub) gauge() {
	if h.metrics == nil {
		return
	}
	h.metrics.SetSubscribers("quotes", h.QuoteSubscribers())
	h.metrics.SetSubscribers("predictions", h.PredictionSubscribers())
}
