// Package forecast turns a quote, its indicator set, and a price
// history into a multi-horizon prediction. Two strategies produce the
// raw horizon prices; the engine layers signals, risk, levels, scores
// and a recommendation on top.
package forecast

import (
	"github.com/marketpulse/pulse/internal/core"
)

// Strategy produces raw per-horizon forecasts.
type Strategy interface {
	Name() string
	Forecast(q *core.QuoteSnapshot, ind core.IndicatorSet, history []float64) map[core.Horizon]core.HorizonForecast
}
