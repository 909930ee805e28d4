// Package cascade resolves quotes by walking an ordered list of
// providers and falling back to a synthetic quote derived from the
// instrument baseline when every live source fails. Resolution never
// returns an error to callers; a symbol always has a quote.
package cascade

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
	"github.com/marketpulse/pulse/internal/metrics"
	"github.com/marketpulse/pulse/internal/registry"
)

// SyntheticSource marks quotes produced by the fallback generator.
const SyntheticSource = "synthetic"

// Cascade walks fetchers in priority order.
type Cascade struct {
	fetchers []fetcher.Fetcher
	registry *registry.Registry
	metrics  *metrics.Registry
	logger   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cascade) { c.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Cascade) { c.metrics = m }
}

// WithRand sets the random source used by the synthetic generator.
// Tests inject a seeded source for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(c *Cascade) { c.rng = rng }
}

// New creates a cascade over the given fetchers, tried in slice order.
func New(reg *registry.Registry, fetchers []fetcher.Fetcher, opts ...Option) *Cascade {
	c := &Cascade{
		fetchers: fetchers,
		registry: reg,
		logger:   zap.NewNop(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns a quote for the symbol, or nil when the symbol is
// not in the registry. Live sources are tried in order; exhaustion
// produces a synthetic quote, so a registered symbol never resolves
// to nil.
func (c *Cascade) Resolve(ctx context.Context, symbol string) *core.QuoteSnapshot {
	inst, err := c.registry.Lookup(symbol)
	if err != nil {
		c.logger.Debug("unknown symbol", zap.String("symbol", symbol))
		return nil
	}

	for _, f := range c.fetchers {
		q, err := f.FetchQuote(ctx, inst)
		if err != nil {
			if c.metrics != nil {
				c.metrics.RecordFetch(f.Name(), "error")
			}
			c.logger.Debug("source failed",
				zap.String("symbol", symbol),
				zap.String("source", f.Name()),
				zap.Error(err))
			continue
		}
		if c.metrics != nil {
			c.metrics.RecordFetch(f.Name(), "ok")
		}
		return q
	}

	if c.metrics != nil {
		c.metrics.RecordSyntheticFallback()
	}
	c.logger.Debug("all sources exhausted, synthesizing",
		zap.String("symbol", symbol))
	return c.Synthesize(inst)
}

// ResolveAll resolves every registered instrument concurrently and
// returns the quotes in registry order. Every slot is filled; a failed
// instrument still gets its synthetic quote.
func (c *Cascade) ResolveAll(ctx context.Context) []*core.QuoteSnapshot {
	instruments := c.registry.All()
	quotes := make([]*core.QuoteSnapshot, len(instruments))

	var wg sync.WaitGroup
	for i, inst := range instruments {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quotes[i] = c.Resolve(ctx, symbol)
		}(i, inst.Symbol)
	}
	wg.Wait()

	return quotes
}

// Synthesize builds a plausible quote around the instrument baseline:
// price = base ± U·volatility·base, with the remaining fields derived
// from the same walk.
func (c *Cascade) Synthesize(inst core.Instrument) *core.QuoteSnapshot {
	c.mu.Lock()
	u1, u2, u3 := c.rng.Float64(), c.rng.Float64(), c.rng.Float64()
	u4, u5, u6 := c.rng.Float64(), c.rng.Float64(), c.rng.Float64()
	u7, u8 := c.rng.Float64(), c.rng.Float64()
	c.mu.Unlock()

	base := inst.BasePrice
	change := round2((u1 - 0.5) * 2 * inst.Volatility * base)
	price := base + change
	changePct := change / base * 100

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		CurrentPrice:  round2(price),
		Change:        change,
		ChangePercent: round2(changePct),
		DayHigh:       round2(base * (1 + u2*0.03)),
		DayLow:        round2(base * (1 - u3*0.03)),
		Volume:        int64(float64(inst.BaseVolume) * (0.5 + u4)),
		MarketCap:     inst.MarketCap,
		PE:            round2(15 + u5*20),
		PB:            round2(1 + u6*3),
		EPS:           round2(base / 12),
		BookValue:     round2(base / 2.5),
		DividendYield: round2(u7 * 3),
		FaceValue:     10,
		WeekHigh52:    round2(base * (1.2 + u8*0.3)),
		WeekLow52:     round2(base * (0.7 + u8*0.2)),
		Sector:        inst.Sector,
		Exchange:      "NSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(change),
		Source:        SyntheticSource,
		UpdatedAt:     time.Now(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
