package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/metrics"
)

// Default cadences and batch sizes for the refresh cycles.
const (
	DefaultQuoteInterval      = 3 * time.Second
	DefaultPredictionInterval = 9 * time.Second
	DefaultDriftInterval      = 5 * time.Second
	DefaultQuoteBatch         = 5
	DefaultPredictionBatch    = 3
)

// Scheduler drives the three refresh cycles: live quote batches,
// prediction batches, and the idle drift tick. Batches rotate through
// the registry so every symbol is eventually refreshed.
type Scheduler struct {
	service *Service
	logger  *zap.Logger
	metrics *metrics.Registry

	quoteInterval      time.Duration
	predictionInterval time.Duration
	driftInterval      time.Duration
	quoteBatch         int
	predictionBatch    int

	symbols  []string
	quoteIdx int
	predIdx  int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithSchedulerMetrics sets the metrics registry.
func WithSchedulerMetrics(m *metrics.Registry) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithIntervals overrides the three cycle cadences.
func WithIntervals(quote, prediction, drift time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.quoteInterval = quote
		s.predictionInterval = prediction
		s.driftInterval = drift
	}
}

// WithBatchSizes overrides the per-cycle batch sizes.
func WithBatchSizes(quote, prediction int) SchedulerOption {
	return func(s *Scheduler) {
		s.quoteBatch = quote
		s.predictionBatch = prediction
	}
}

// NewScheduler creates a scheduler over a service.
func NewScheduler(service *Service, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		service:            service,
		logger:             zap.NewNop(),
		quoteInterval:      DefaultQuoteInterval,
		predictionInterval: DefaultPredictionInterval,
		driftInterval:      DefaultDriftInterval,
		quoteBatch:         DefaultQuoteBatch,
		predictionBatch:    DefaultPredictionBatch,
		symbols:            service.registry.Symbols(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the three cycles. A second Start without a Stop is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(3)
	go s.loop(ctx, s.quoteInterval, s.quoteCycle)
	go s.loop(ctx, s.predictionInterval, s.predictionCycle)
	go s.loop(ctx, s.driftInterval, func(context.Context) { s.service.driftQuotes() })

	s.logger.Info("scheduler started",
		zap.Duration("quote_interval", s.quoteInterval),
		zap.Duration("prediction_interval", s.predictionInterval),
		zap.Duration("drift_interval", s.driftInterval))
}

// Stop cancels the cycles and waits for them to drain. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

func (s *Scheduler) quoteCycle(ctx context.Context) {
	start := time.Now()
	s.service.refreshQuotes(ctx, s.nextQuoteBatch())
	if s.metrics != nil {
		s.metrics.RecordRefreshCycle("quote", time.Since(start).Seconds())
	}
}

func (s *Scheduler) predictionCycle(ctx context.Context) {
	start := time.Now()
	s.service.refreshPredictions(ctx, s.nextPredictionBatch())
	if s.metrics != nil {
		s.metrics.RecordRefreshCycle("prediction", time.Since(start).Seconds())
	}
}

func (s *Scheduler) nextQuoteBatch() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, next := rotate(s.symbols, s.quoteIdx, s.quoteBatch)
	s.quoteIdx = next
	return batch
}

func (s *Scheduler) nextPredictionBatch() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, next := rotate(s.symbols, s.predIdx, s.predictionBatch)
	s.predIdx = next
	return batch
}

// rotate returns n symbols starting at idx, wrapping around, plus the
// next start index.
func rotate(symbols []string, idx, n int) ([]string, int) {
	if len(symbols) == 0 {
		return nil, 0
	}
	if n > len(symbols) {
		n = len(symbols)
	}
	batch := make([]string, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, symbols[(idx+i)%len(symbols)])
	}
	return batch, (idx + n) % len(symbols)
}
