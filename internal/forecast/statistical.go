package forecast

import (
	"github.com/marketpulse/pulse/internal/core"
)

// Per-horizon scaling of trend strength times volatility. Near
// horizons move a fraction of the daily walk, far horizons a multiple.
var statisticalMultipliers = map[core.Horizon]float64{
	core.Horizon5Min:  0.1,
	core.Horizon15Min: 0.3,
	core.Horizon1Hour: 0.8,
	core.Horizon1Day:  2,
	core.Horizon1Week: 5,
}

// Fixed confidences, decaying with horizon distance.
var statisticalConfidences = map[core.Horizon]float64{
	core.Horizon5Min:  85,
	core.Horizon15Min: 80,
	core.Horizon1Hour: 75,
	core.Horizon1Day:  70,
	core.Horizon1Week: 60,
}

// Statistical extrapolates trailing trend strength scaled by
// volatility. It needs no model artifact and is the fallback strategy.
type Statistical struct{}

func (Statistical) Name() string { return "statistical" }

func (Statistical) Forecast(q *core.QuoteSnapshot, ind core.IndicatorSet, history []float64) map[core.Horizon]core.HorizonForecast {
	short := trendStrength(tail(history, 10))
	medium := trendStrength(tail(history, 30))
	long := trendStrength(tail(history, 60))

	vol := ind.Volatility
	if vol == 0 {
		vol = 0.02
	}

	trends := map[core.Horizon]float64{
		core.Horizon5Min:  short,
		core.Horizon15Min: short,
		core.Horizon1Hour: medium,
		core.Horizon1Day:  long,
		core.Horizon1Week: long,
	}

	forecasts := make(map[core.Horizon]core.HorizonForecast, len(trends))
	for _, h := range core.Horizons() {
		forecasts[h] = core.HorizonForecast{
			Price:      q.CurrentPrice * (1 + trends[h]*vol*statisticalMultipliers[h]),
			Confidence: statisticalConfidences[h],
		}
	}
	return forecasts
}

// trendStrength is the relative change across a window, oldest to
// newest.
func trendStrength(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prices[0]) / prices[0]
}

func tail(prices []float64, n int) []float64 {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}
