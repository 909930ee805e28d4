package core

import "time"

// Trend classifies the direction of a price move.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// TrendOf buckets an absolute price change into a trend.
func TrendOf(change float64) Trend {
	switch {
	case change > 0:
		return TrendBullish
	case change < 0:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// SessionState represents the state of the trading session.
type SessionState string

const (
	SessionPreOpen   SessionState = "pre-open"
	SessionOpen      SessionState = "open"
	SessionPostClose SessionState = "post-close"
	SessionClosed    SessionState = "closed"
)

// RiskLevel buckets prediction risk.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// Recommendation is the final rating tier of a prediction.
type Recommendation string

const (
	StrongBuy  Recommendation = "strong_buy"
	Buy        Recommendation = "buy"
	Hold       Recommendation = "hold"
	Sell       Recommendation = "sell"
	StrongSell Recommendation = "strong_sell"
)

// SignalStrength grades a trading signal by expected move magnitude.
type SignalStrength string

const (
	StrengthWeak     SignalStrength = "weak"
	StrengthModerate SignalStrength = "moderate"
	StrengthStrong   SignalStrength = "strong"
)

// Instrument is the static metadata for a tradable symbol. Baseline
// price and volatility seed the synthetic fallback when every live
// source is down.
type Instrument struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	ISIN       string  `json:"isin"`
	Sector     string  `json:"sector"`
	BasePrice  float64 `json:"basePrice"`
	Volatility float64 `json:"volatility"`
	BaseVolume int64   `json:"baseVolume"`
	MarketCap  int64   `json:"marketCap"`
}

// QuoteSnapshot is one resolved quote for a symbol. Instances are
// replaced wholesale on refresh, never mutated in place by readers.
type QuoteSnapshot struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"currentPrice"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	DayHigh       float64   `json:"dayHigh"`
	DayLow        float64   `json:"dayLow"`
	Volume        int64     `json:"volume"`
	MarketCap     int64     `json:"marketCap"`
	PE            float64   `json:"pe"`
	PB            float64   `json:"pb"`
	EPS           float64   `json:"eps"`
	BookValue     float64   `json:"bookValue"`
	DividendYield float64   `json:"dividendYield"`
	FaceValue     float64   `json:"faceValue"`
	WeekHigh52    float64   `json:"weekHigh52"`
	WeekLow52     float64   `json:"weekLow52"`
	Sector        string    `json:"sector"`
	Exchange      string    `json:"exchange"`
	ISIN          string    `json:"isin"`
	Trend         Trend     `json:"trend"`
	Source        string    `json:"source"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsValid checks the fields every source must deliver before a
// snapshot is accepted into the cache.
func (q *QuoteSnapshot) IsValid() bool {
	return q != nil && q.Symbol != "" && q.Name != "" && q.CurrentPrice > 0
}

// Bands holds Bollinger band values. Upper >= Middle >= Lower.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Stochastic holds the stochastic oscillator pair.
type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// IndicatorSet is the technical indicator snapshot derived from a
// price window.
type IndicatorSet struct {
	RSI        float64    `json:"rsi"`
	MACD       float64    `json:"macd"`
	SMA20      float64    `json:"sma20"`
	SMA50      float64    `json:"sma50"`
	EMA12      float64    `json:"ema12"`
	EMA26      float64    `json:"ema26"`
	Bollinger  Bands      `json:"bollinger"`
	Stochastic Stochastic `json:"stochastic"`
	ADX        float64    `json:"adx"`
	WilliamsR  float64    `json:"williamsR"`
	Momentum   float64    `json:"momentum"`
	ROC        float64    `json:"roc"`
	CCI        float64    `json:"cci"`
	ATR        float64    `json:"atr"`
	Volatility float64    `json:"volatility"`
	Beta       float64    `json:"beta"`
}

// Horizon names a forecast time offset.
type Horizon string

const (
	Horizon5Min  Horizon = "5m"
	Horizon15Min Horizon = "15m"
	Horizon1Hour Horizon = "1h"
	Horizon1Day  Horizon = "1d"
	Horizon1Week Horizon = "1w"
)

// Horizons returns all forecast horizons ordered nearest first.
func Horizons() []Horizon {
	return []Horizon{Horizon5Min, Horizon15Min, Horizon1Hour, Horizon1Day, Horizon1Week}
}

// HorizonForecast is one predicted price with its confidence in [0,100].
type HorizonForecast struct {
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
}

// TradeSignal is the buy/sell/hold decision derived from a forecast.
// Exactly one of Buy, Sell, Hold is set.
type TradeSignal struct {
	Buy      bool           `json:"buy"`
	Sell     bool           `json:"sell"`
	Hold     bool           `json:"hold"`
	Strength SignalStrength `json:"strength"`
}

// PredictionResult is the full multi-horizon forecast for a symbol.
type PredictionResult struct {
	Symbol           string                      `json:"symbol"`
	CurrentPrice     float64                     `json:"currentPrice"`
	Forecasts        map[Horizon]HorizonForecast `json:"forecasts"`
	Signal           TradeSignal                 `json:"signal"`
	Risk             RiskLevel                   `json:"riskLevel"`
	TargetPrice      float64                     `json:"targetPrice"`
	StopLoss         float64                     `json:"stopLoss"`
	SupportLevels    []float64                   `json:"supportLevels"`
	ResistanceLevels []float64                   `json:"resistanceLevels"`
	Analysis         string                      `json:"analysis"`
	TechnicalScore   float64                     `json:"technicalScore"`
	FundamentalScore float64                     `json:"fundamentalScore"`
	SentimentScore   float64                     `json:"sentimentScore"`
	OverallScore     float64                     `json:"overallScore"`
	Recommendation   Recommendation              `json:"recommendation"`
	Strategy         string                      `json:"strategy"`
	GeneratedAt      time.Time                   `json:"generatedAt"`
}

// ExpectedChangePercent returns the mean predicted move across
// horizons relative to the current price, as a percentage.
func (p *PredictionResult) ExpectedChangePercent() float64 {
	if len(p.Forecasts) == 0 || p.CurrentPrice == 0 {
		return 0
	}
	var sum float64
	for _, f := range p.Forecasts {
		sum += f.Price
	}
	avg := sum / float64(len(p.Forecasts))
	return (avg - p.CurrentPrice) / p.CurrentPrice * 100
}

// IndexQuote is the current level of a tracked market index.
type IndexQuote struct {
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// MarketSentiment aggregates market-wide mood.
type MarketSentiment struct {
	Overall Trend   `json:"overall"`
	Score   float64 `json:"score"`
}

// MarketOverview is the snapshot of tracked indices plus session and
// sentiment state.
type MarketOverview struct {
	NiftyBank       IndexQuote      `json:"niftyBank"`
	Sensex          IndexQuote      `json:"sensex"`
	Nifty50         IndexQuote      `json:"nifty50"`
	Status          SessionState    `json:"marketStatus"`
	Session         string          `json:"tradingSession"`
	VolatilityIndex float64         `json:"volatilityIndex"`
	Sentiment       MarketSentiment `json:"marketSentiment"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
