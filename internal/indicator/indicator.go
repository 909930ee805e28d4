// Package indicator computes technical indicators over an ordered
// (oldest to newest) close-price window. All functions are pure and
// return a neutral default when the window is shorter than the period.
package indicator

import (
	"math"

	"github.com/marketpulse/pulse/internal/core"
)

// Standard periods used by the engine.
const (
	RSIPeriod        = 14
	BollingerPeriod  = 20
	BollingerK       = 2.0
	StochasticPeriod = 14
	WilliamsPeriod   = 14
	MomentumPeriod   = 10
	ROCPeriod        = 12
)

// RSI calculates the relative strength index over the oldest period
// steps of the window. Returns 50 when there is insufficient data or
// no movement at all.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// SMA is the mean of the trailing period closes, or of the whole
// window when it is shorter than the period.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period > len(prices) {
		period = len(prices)
	}

	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA seeds at the first value and smooths across the entire supplied
// window with multiplier 2/(period+1), not just the trailing period
// values. Windows shorter than the period return the last close.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*multiplier + ema*(1-multiplier)
	}
	return ema
}

// MACD is EMA(12) minus EMA(26).
func MACD(prices []float64) float64 {
	return EMA(prices, 12) - EMA(prices, 26)
}

// Bollinger returns the period SMA with bands at k standard deviations
// of the trailing period closes.
func Bollinger(prices []float64, period int, k float64) core.Bands {
	middle := SMA(prices, period)
	band := k * stdev(tail(prices, period))
	return core.Bands{
		Upper:  middle + band,
		Middle: middle,
		Lower:  middle - band,
	}
}

// StochasticK is the %K oscillator over the trailing period. A flat
// range returns the neutral 50.
func StochasticK(prices []float64, period int) float64 {
	window := tail(prices, period)
	if len(window) == 0 {
		return 50
	}

	low, high := window[0], window[0]
	for _, p := range window {
		low = math.Min(low, p)
		high = math.Max(high, p)
	}
	if high == low {
		return 50
	}

	current := prices[len(prices)-1]
	return (current - low) / (high - low) * 100
}

// WilliamsR is the Williams %R oscillator over the trailing period,
// in [-100, 0]. A flat range returns the neutral -50.
func WilliamsR(prices []float64, period int) float64 {
	window := tail(prices, period)
	if len(window) == 0 {
		return -50
	}

	low, high := window[0], window[0]
	for _, p := range window {
		low = math.Min(low, p)
		high = math.Max(high, p)
	}
	if high == low {
		return -50
	}

	current := prices[len(prices)-1]
	return (high - current) / (high - low) * -100
}

// Momentum is the absolute close change over the period.
func Momentum(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 0
	}
	return prices[len(prices)-1] - prices[len(prices)-1-period]
}

// ROC is the percentage close change over the period.
func ROC(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 0
	}
	current := prices[len(prices)-1]
	previous := prices[len(prices)-1-period]
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Volatility is the standard deviation of simple period-over-period
// returns across the window.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return stdev(returns)
}

// Engine composes the pure indicator functions with an extra-indicator
// strategy into a full IndicatorSet.
type Engine struct {
	extras ExtraIndicators
}

// NewEngine creates an indicator engine. A nil strategy falls back to
// seeded placeholder extras.
func NewEngine(extras ExtraIndicators) *Engine {
	if extras == nil {
		extras = NewPlaceholderExtras(0)
	}
	return &Engine{extras: extras}
}

// Compute derives the full indicator set from a close-price window.
// The current price is used when the window is empty.
func (e *Engine) Compute(prices []float64, current float64) core.IndicatorSet {
	if len(prices) == 0 {
		prices = []float64{current}
	}

	volatility := Volatility(prices)
	k := StochasticK(prices, StochasticPeriod)

	set := core.IndicatorSet{
		RSI:        RSI(prices, RSIPeriod),
		MACD:       MACD(prices),
		SMA20:      SMA(prices, 20),
		SMA50:      SMA(prices, 50),
		EMA12:      EMA(prices, 12),
		EMA26:      EMA(prices, 26),
		Bollinger:  Bollinger(prices, BollingerPeriod, BollingerK),
		Stochastic: core.Stochastic{K: k, D: k}, // %D kept equal to %K, matching the source system
		WilliamsR:  WilliamsR(prices, WilliamsPeriod),
		Momentum:   Momentum(prices, MomentumPeriod),
		ROC:        ROC(prices, ROCPeriod),
		Volatility: volatility,
	}

	extras := e.extras.Compute(ExtraInput{
		Prices:     prices,
		Price:      current,
		Volatility: volatility,
	})
	set.ADX = extras.ADX
	set.CCI = extras.CCI
	set.ATR = extras.ATR
	set.Beta = extras.Beta

	return set
}

func tail(prices []float64, n int) []float64 {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}

func stdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
