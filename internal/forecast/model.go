package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/marketpulse/pulse/internal/core"
)

// FeatureCount is the length of the input vector the model weights
// must match.
const FeatureCount = 15

// Confidence floors per horizon; the move magnitude adds on top.
var modelBaseConfidences = map[core.Horizon]float64{
	core.Horizon5Min:  70,
	core.Horizon15Min: 65,
	core.Horizon1Hour: 60,
	core.Horizon1Day:  55,
	core.Horizon1Week: 50,
}

// horizonWeights is one linear regression head: percentage delta =
// dot(weights, features) + bias.
type horizonWeights struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

type modelArtifact struct {
	Version  int                             `json:"version"`
	Features int                             `json:"features"`
	Horizons map[core.Horizon]horizonWeights `json:"horizons"`
}

// Model is a per-horizon linear regression over a fixed feature
// vector, loaded from a JSON weight artifact.
type Model struct {
	artifact modelArtifact
}

// LoadModel reads and validates a weight artifact. A missing or
// malformed file yields core.ErrModelUnavailable so callers can fall
// back to the statistical strategy.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrModelUnavailable, err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, core.WrapError(core.ErrModelUnavailable, err)
	}
	if artifact.Features != FeatureCount {
		return nil, core.WrapError(core.ErrModelUnavailable,
			fmt.Errorf("artifact has %d features, want %d", artifact.Features, FeatureCount))
	}
	for _, h := range core.Horizons() {
		hw, ok := artifact.Horizons[h]
		if !ok {
			return nil, core.WrapError(core.ErrModelUnavailable,
				fmt.Errorf("artifact missing horizon %s", h))
		}
		if len(hw.Weights) != FeatureCount {
			return nil, core.WrapError(core.ErrModelUnavailable,
				fmt.Errorf("horizon %s has %d weights, want %d", h, len(hw.Weights), FeatureCount))
		}
	}

	return &Model{artifact: artifact}, nil
}

func (m *Model) Name() string { return "model" }

func (m *Model) Forecast(q *core.QuoteSnapshot, ind core.IndicatorSet, history []float64) map[core.Horizon]core.HorizonForecast {
	features := Features(q, ind)

	forecasts := make(map[core.Horizon]core.HorizonForecast, len(m.artifact.Horizons))
	for _, h := range core.Horizons() {
		hw := m.artifact.Horizons[h]
		delta := hw.Bias
		for i, w := range hw.Weights {
			delta += w * features[i]
		}

		confidence := modelBaseConfidences[h] + 5*math.Abs(delta)
		if confidence > 95 {
			confidence = 95
		}

		forecasts[h] = core.HorizonForecast{
			Price:      q.CurrentPrice * (1 + delta/100),
			Confidence: confidence,
		}
	}
	return forecasts
}

// Features builds the model input vector. Order is part of the
// artifact contract and must not change.
func Features(q *core.QuoteSnapshot, ind core.IndicatorSet) [FeatureCount]float64 {
	return [FeatureCount]float64{
		q.CurrentPrice,
		q.ChangePercent,
		float64(q.Volume) / 1e6,
		ind.RSI,
		ind.MACD,
		ind.SMA20,
		ind.SMA50,
		ind.Volatility,
		ind.Beta,
		q.PE,
		q.PB,
		ind.Stochastic.K,
		ind.ADX,
		ind.Momentum,
		ind.ROC,
	}
}
