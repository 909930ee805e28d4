package feed

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/cache"
	"github.com/marketpulse/pulse/internal/cascade"
	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/forecast"
	"github.com/marketpulse/pulse/internal/indicator"
	"github.com/marketpulse/pulse/internal/market"
	"github.com/marketpulse/pulse/internal/registry"
)

// Cache keys for the assembled views. Individual symbols are cached
// under their own symbol string.
const (
	allQuotesKey = "all"
	overviewKey  = "overview"
)

// driftVolatility bounds the idle price walk applied between real
// refreshes: ±0.05% per tick.
const driftVolatility = 0.001

// Service is the read surface over the cascade, cache, indicator and
// forecast layers. All reads are cache-first with single-flight
// resolution.
type Service struct {
	registry   *registry.Registry
	cascade    *cascade.Cascade
	cache      *cache.Cache
	indicators *indicator.Engine
	forecasts  *forecast.Engine
	market     *market.Service
	hub        *Hub
	history    *History
	logger     *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithServiceRand sets the random source used for history seeding and
// idle drift.
func WithServiceRand(rng *rand.Rand) ServiceOption {
	return func(s *Service) { s.rng = rng }
}

// NewService wires the facade over its layers.
func NewService(
	reg *registry.Registry,
	casc *cascade.Cascade,
	c *cache.Cache,
	indicators *indicator.Engine,
	forecasts *forecast.Engine,
	mkt *market.Service,
	hub *Hub,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		registry:   reg,
		cascade:    casc,
		cache:      c,
		indicators: indicators,
		forecasts:  forecasts,
		market:     mkt,
		hub:        hub,
		history:    NewHistory(DefaultHistoryPoints),
		logger:     zap.NewNop(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllInstrumentData returns a quote for every registered
// instrument, sorted by market cap descending. Concurrent callers
// within the quote TTL share one resolution.
func (s *Service) GetAllInstrumentData(ctx context.Context) []core.QuoteSnapshot {
	v, err := s.cache.Do(allQuotesKey, cache.ClassQuote, func() (any, error) {
		resolved := s.cascade.ResolveAll(ctx)

		quotes := make([]core.QuoteSnapshot, 0, len(resolved))
		for _, q := range resolved {
			if q == nil {
				continue
			}
			s.history.Record(q.Symbol, q.CurrentPrice)
			s.cache.Put(q.Symbol, q, cache.ClassQuote)
			quotes = append(quotes, *q)
		}
		sort.SliceStable(quotes, func(i, j int) bool {
			return quotes[i].MarketCap > quotes[j].MarketCap
		})
		return quotes, nil
	})
	if err != nil {
		return nil
	}
	return v.([]core.QuoteSnapshot)
}

// GetQuote returns the current quote for one symbol, or
// core.ErrSymbolNotFound for symbols outside the registry.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*core.QuoteSnapshot, error) {
	if _, err := s.registry.Lookup(symbol); err != nil {
		return nil, err
	}

	v, err := s.cache.Do(symbol, cache.ClassQuote, func() (any, error) {
		q := s.cascade.Resolve(ctx, symbol)
		s.history.Record(q.Symbol, q.CurrentPrice)
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.QuoteSnapshot), nil
}

// GetPrediction returns the multi-horizon prediction for a symbol, or
// nil for symbols outside the registry.
func (s *Service) GetPrediction(ctx context.Context, symbol string) *core.PredictionResult {
	inst, err := s.registry.Lookup(symbol)
	if err != nil {
		return nil
	}

	v, err := s.cache.Do(symbol, cache.ClassPrediction, func() (any, error) {
		return s.computePrediction(ctx, inst)
	})
	if err != nil {
		s.logger.Warn("prediction failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	return v.(*core.PredictionResult)
}

// GetMarketSnapshot returns the cached market overview, refreshing it
// at most once per market TTL.
func (s *Service) GetMarketSnapshot(ctx context.Context) *core.MarketOverview {
	v, err := s.cache.Do(overviewKey, cache.ClassMarket, func() (any, error) {
		return s.market.Overview(ctx), nil
	})
	if err != nil {
		return nil
	}
	return v.(*core.MarketOverview)
}

// SubscribeQuotes registers for quote broadcasts.
func (s *Service) SubscribeQuotes(fn func([]core.QuoteSnapshot)) func() {
	return s.hub.SubscribeQuotes(fn)
}

// SubscribePredictions registers for prediction broadcasts.
func (s *Service) SubscribePredictions(fn func([]core.PredictionResult)) func() {
	return s.hub.SubscribePredictions(fn)
}

func (s *Service) computePrediction(ctx context.Context, inst core.Instrument) (*core.PredictionResult, error) {
	q, err := s.GetQuote(ctx, inst.Symbol)
	if err != nil {
		return nil, err
	}

	if s.history.Len(inst.Symbol) < 2 {
		s.mu.Lock()
		s.history.Seed(inst, s.rng)
		s.mu.Unlock()
	}
	window := s.history.Window(inst.Symbol)

	ind := s.indicators.Compute(window, q.CurrentPrice)
	return s.forecasts.Predict(q, ind, window), nil
}

// refreshQuotes resolves a batch of symbols into the cache and
// broadcasts the full cached set.
func (s *Service) refreshQuotes(ctx context.Context, symbols []string) {
	for _, symbol := range symbols {
		q := s.cascade.Resolve(ctx, symbol)
		if q == nil {
			continue
		}
		s.history.Record(q.Symbol, q.CurrentPrice)
		s.cache.Put(q.Symbol, q, cache.ClassQuote)
	}
	s.broadcastQuotes()
}

// refreshPredictions recomputes predictions for a batch of symbols
// and broadcasts the full cached set.
func (s *Service) refreshPredictions(ctx context.Context, symbols []string) {
	for _, symbol := range symbols {
		inst, err := s.registry.Lookup(symbol)
		if err != nil {
			continue
		}
		p, err := s.computePrediction(ctx, inst)
		if err != nil {
			s.logger.Warn("prediction refresh failed",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		s.cache.Put(symbol, p, cache.ClassPrediction)
	}
	s.broadcastPredictions()
}

// driftQuotes applies a bounded random walk to every cached quote so
// prices stay alive between real refreshes, then broadcasts. Snapshots
// are replaced, never mutated in place.
func (s *Service) driftQuotes() {
	for _, v := range s.cache.Values(cache.ClassQuote) {
		q, ok := v.(*core.QuoteSnapshot)
		if !ok {
			continue
		}

		s.mu.Lock()
		u := s.rng.Float64()
		s.mu.Unlock()

		drifted := *q
		delta := (u - 0.5) * driftVolatility * q.CurrentPrice
		drifted.CurrentPrice += delta
		drifted.Change += delta
		if prev := drifted.CurrentPrice - drifted.Change; prev != 0 {
			drifted.ChangePercent = drifted.Change / prev * 100
		}
		drifted.Trend = core.TrendOf(drifted.Change)
		drifted.UpdatedAt = time.Now()

		s.cache.Put(drifted.Symbol, &drifted, cache.ClassQuote)
	}
	s.broadcastQuotes()
}

func (s *Service) broadcastQuotes() {
	quotes := make([]core.QuoteSnapshot, 0)
	for _, v := range s.cache.Values(cache.ClassQuote) {
		if q, ok := v.(*core.QuoteSnapshot); ok {
			quotes = append(quotes, *q)
		}
	}
	if len(quotes) == 0 {
		return
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].MarketCap > quotes[j].MarketCap
	})
	s.hub.BroadcastQuotes(quotes)
}

func (s *Service) broadcastPredictions() {
	predictions := make([]core.PredictionResult, 0)
	for _, v := range s.cache.Values(cache.ClassPrediction) {
		if p, ok := v.(*core.PredictionResult); ok {
			predictions = append(predictions, *p)
		}
	}
	if len(predictions) == 0 {
		return
	}
	s.hub.BroadcastPredictions(predictions)
}
