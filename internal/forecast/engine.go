package forecast

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/metrics"
)

// Engine wraps a strategy with the shared post-processing: trading
// signal, risk level, price levels, scores and the final
// recommendation.
type Engine struct {
	strategy Strategy
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine around a strategy.
func New(strategy Strategy, opts ...Option) *Engine {
	e := &Engine{
		strategy: strategy,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the active strategy name.
func (e *Engine) Strategy() string { return e.strategy.Name() }

// Predict builds the full prediction for a quote. Returns nil only
// when the quote is nil.
func (e *Engine) Predict(q *core.QuoteSnapshot, ind core.IndicatorSet, history []float64) *core.PredictionResult {
	if q == nil {
		return nil
	}

	forecasts := e.strategy.Forecast(q, ind, history)
	prices := horizonPrices(forecasts)
	expected := expectedChange(prices, q.CurrentPrice)

	technical := technicalScore(q, ind)
	fundamental := fundamentalScore(q)
	sentiment := sentimentScore(q, ind)
	overall := technical*0.4 + fundamental*0.4 + sentiment*0.2

	result := &core.PredictionResult{
		Symbol:           q.Symbol,
		CurrentPrice:     q.CurrentPrice,
		Forecasts:        forecasts,
		Signal:           tradingSignal(expected, ind.RSI),
		Risk:             riskLevel(ind.Volatility, prices),
		TargetPrice:      maxPrice(prices),
		StopLoss:         q.CurrentPrice * 0.95,
		SupportLevels:    levels(q.CurrentPrice, 0.98, 0.95, 0.92),
		ResistanceLevels: levels(q.CurrentPrice, 1.02, 1.05, 1.08),
		Analysis:         analysisText(q, ind, expected*100),
		TechnicalScore:   technical,
		FundamentalScore: fundamental,
		SentimentScore:   sentiment,
		OverallScore:     overall,
		Recommendation:   recommendation(overall, expected*100),
		Strategy:         e.strategy.Name(),
		GeneratedAt:      time.Now(),
	}

	if e.metrics != nil {
		e.metrics.RecordPrediction(e.strategy.Name())
	}
	e.logger.Debug("prediction generated",
		zap.String("symbol", q.Symbol),
		zap.String("strategy", e.strategy.Name()),
		zap.String("recommendation", string(result.Recommendation)))
	return result
}

func horizonPrices(forecasts map[core.Horizon]core.HorizonForecast) []float64 {
	prices := make([]float64, 0, len(forecasts))
	for _, h := range core.Horizons() {
		if f, ok := forecasts[h]; ok {
			prices = append(prices, f.Price)
		}
	}
	return prices
}

// expectedChange is the mean predicted move as a fraction of the
// current price.
func expectedChange(prices []float64, current float64) float64 {
	if len(prices) == 0 || current == 0 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	return (avg - current) / current
}

// tradingSignal derives buy/sell/hold from the expected move gated by
// the RSI regime: no buys into overbought, no sells into oversold.
func tradingSignal(expected, rsi float64) core.TradeSignal {
	buy := expected > 0.02 && rsi < 70
	sell := expected < -0.02 && rsi > 30

	var strength core.SignalStrength
	switch {
	case math.Abs(expected) > 0.05:
		strength = core.StrengthStrong
	case math.Abs(expected) > 0.02:
		strength = core.StrengthModerate
	default:
		strength = core.StrengthWeak
	}

	return core.TradeSignal{
		Buy:      buy,
		Sell:     sell,
		Hold:     !buy && !sell,
		Strength: strength,
	}
}

// riskLevel buckets on realized volatility and the dispersion of the
// horizon prices (coefficient of variation).
func riskLevel(volatility float64, prices []float64) core.RiskLevel {
	if volatility == 0 {
		volatility = 0.02
	}
	dispersion := coefficientOfVariation(prices)

	switch {
	case volatility > 0.08 || dispersion > 0.1:
		return core.RiskExtreme
	case volatility > 0.05 || dispersion > 0.05:
		return core.RiskHigh
	case volatility > 0.03 || dispersion > 0.03:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	if m == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return variance / (m * m)
}

func maxPrice(prices []float64) float64 {
	var best float64
	for _, p := range prices {
		if p > best {
			best = p
		}
	}
	return best
}

func levels(price float64, factors ...float64) []float64 {
	out := make([]float64, len(factors))
	for i, f := range factors {
		out[i] = math.Round(price*f*100) / 100
	}
	return out
}

// recommendation partitions (overall score, expected change %) into
// five tiers, evaluated top-down so every pair maps to exactly one.
func recommendation(score, changePct float64) core.Recommendation {
	switch {
	case score > 80 && changePct > 3:
		return core.StrongBuy
	case score > 60 && changePct > 1:
		return core.Buy
	case score > 40 && changePct > -1:
		return core.Hold
	case score > 20 && changePct > -3:
		return core.Sell
	default:
		return core.StrongSell
	}
}

func technicalScore(q *core.QuoteSnapshot, ind core.IndicatorSet) float64 {
	var score float64

	if ind.RSI > 30 && ind.RSI < 70 {
		score += 20
	} else if ind.RSI > 20 && ind.RSI < 80 {
		score += 10
	}
	if ind.MACD > 0 {
		score += 15
	}
	if q.CurrentPrice > ind.SMA20 {
		score += 15
	}
	if q.CurrentPrice > ind.SMA50 {
		score += 10
	}
	if q.CurrentPrice > ind.Bollinger.Lower && q.CurrentPrice < ind.Bollinger.Upper {
		score += 10
	}
	if ind.ADX > 25 {
		score += 10
	}
	if ind.Stochastic.K > 20 && ind.Stochastic.K < 80 {
		score += 10
	}
	if q.Volume > 1000000 {
		score += 10
	}

	return math.Min(100, score)
}

func fundamentalScore(q *core.QuoteSnapshot) float64 {
	var score float64

	if q.PE > 0 && q.PE < 20 {
		score += 25
	} else if q.PE > 0 && q.PE < 30 {
		score += 15
	}
	if q.PB > 0 && q.PB < 2 {
		score += 20
	} else if q.PB > 0 && q.PB < 3 {
		score += 10
	}
	if q.EPS > 0 {
		score += 15
	}
	if q.DividendYield > 2 {
		score += 15
	}
	// Larger banks are generally more stable.
	if q.MarketCap > 1000000 {
		score += 15
	} else if q.MarketCap > 500000 {
		score += 10
	}
	if q.BookValue > 0 && q.CurrentPrice < q.BookValue*1.5 {
		score += 10
	}

	return math.Min(100, score)
}

func sentimentScore(q *core.QuoteSnapshot, ind core.IndicatorSet) float64 {
	score := 50.0

	switch {
	case q.ChangePercent > 2:
		score += 20
	case q.ChangePercent > 0:
		score += 10
	case q.ChangePercent < -2:
		score -= 20
	case q.ChangePercent < 0:
		score -= 10
	}

	if q.Volume > 5000000 {
		score += 15
	} else if q.Volume > 2000000 {
		score += 10
	}

	if ind.Volatility > 0.05 {
		score -= 10
	}
	if q.Sector == "Private Bank" {
		score += 5
	}

	return math.Max(0, math.Min(100, score))
}

func analysisText(q *core.QuoteSnapshot, ind core.IndicatorSet, changePct float64) string {
	bias := "neutral"
	if ind.RSI > 70 {
		bias = "overbought"
	} else if ind.RSI < 30 {
		bias = "oversold"
	}

	direction := "sideways"
	if changePct > 1 {
		direction = "bullish"
	} else if changePct < -1 {
		direction = "bearish"
	}

	volLevel := "low"
	if ind.Volatility > 0.05 {
		volLevel = "high"
	} else if ind.Volatility > 0.03 {
		volLevel = "moderate"
	}

	momentum := "negative"
	if ind.MACD > 0 {
		momentum = "positive"
	}
	smaSide, smaTrend := "below", "bearish"
	if q.CurrentPrice > ind.SMA20 {
		smaSide, smaTrend = "above", "bullish"
	}

	return fmt.Sprintf("Analysis indicates %s momentum for %s with %.2f%% expected movement. "+
		"Technical indicators show %s conditions with %s volatility. "+
		"RSI at %.1f suggests %s territory. "+
		"MACD signal at %.2f indicates %s momentum. "+
		"Current price is %s 20-day SMA, suggesting %s short-term trend.",
		direction, q.Name, changePct,
		bias, volLevel,
		ind.RSI, bias,
		ind.MACD, momentum,
		smaSide, smaTrend)
}
