package feed

import (
	"math/rand"
	"sync"

	"github.com/marketpulse/pulse/internal/core"
)

// DefaultHistoryPoints bounds the rolling window per symbol.
const DefaultHistoryPoints = 100

// History keeps a bounded rolling price window per symbol, oldest
// first, for indicator and trend computation.
type History struct {
	mu    sync.Mutex
	max   int
	bySym map[string][]float64
}

// NewHistory creates a history with the given window size per symbol.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryPoints
	}
	return &History{
		max:   max,
		bySym: make(map[string][]float64),
	}
}

// Record appends an observed price, evicting the oldest point once
// the window is full.
func (h *History) Record(symbol string, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.bySym[symbol], price)
	if len(window) > h.max {
		window = window[len(window)-h.max:]
	}
	h.bySym[symbol] = window
}

// Window returns a copy of the symbol's price window.
func (h *History) Window(symbol string) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := h.bySym[symbol]
	out := make([]float64, len(window))
	copy(out, window)
	return out
}

// Len returns the number of recorded points for a symbol.
func (h *History) Len(symbol string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.bySym[symbol])
}

// Seed fills a symbol that has fewer than two observed points with a
// bounded walk around the instrument baseline, so indicators always
// have a full window to work with.
func (h *History) Seed(inst core.Instrument, rng *rand.Rand) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.bySym[inst.Symbol]) >= 2 {
		return
	}
	window := make([]float64, h.max)
	for i := range window {
		window[i] = inst.BasePrice + (rng.Float64()-0.5)*inst.Volatility*inst.BasePrice
	}
	h.bySym[inst.Symbol] = window
}
