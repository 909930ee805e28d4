package forecast

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/marketpulse/pulse/internal/core"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// zeroArtifact has all-zero weights and a per-horizon bias, so the
// predicted percentage delta equals the bias exactly.
func zeroArtifact(t *testing.T, biases map[core.Horizon]float64) string {
	t.Helper()
	artifact := modelArtifact{
		Version:  1,
		Features: FeatureCount,
		Horizons: make(map[core.Horizon]horizonWeights),
	}
	for _, h := range core.Horizons() {
		artifact.Horizons[h] = horizonWeights{
			Weights: make([]float64, FeatureCount),
			Bias:    biases[h],
		}
	}
	raw, err := json.Marshal(artifact)
	if err != nil {
		t.Fatal(err)
	}
	return writeArtifact(t, string(raw))
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, core.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestLoadModel_BadShape(t *testing.T) {
	cases := map[string]string{
		"garbage":        `not json`,
		"wrong features": `{"version":1,"features":3,"horizons":{}}`,
		"missing horizon": `{"version":1,"features":15,"horizons":{
			"5m":{"weights":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"bias":0}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadModel(writeArtifact(t, body))
			if !errors.Is(err, core.ErrModelUnavailable) {
				t.Errorf("err = %v, want ErrModelUnavailable", err)
			}
		})
	}
}

func TestModel_BiasOnlyForecast(t *testing.T) {
	path := zeroArtifact(t, map[core.Horizon]float64{
		core.Horizon5Min: 2, core.Horizon1Hour: -1.5,
	})
	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	q := &core.QuoteSnapshot{Symbol: "TESTBANK", CurrentPrice: 200}
	forecasts := m.Forecast(q, core.IndicatorSet{}, nil)

	if got := forecasts[core.Horizon5Min].Price; math.Abs(got-204) > 1e-9 {
		t.Errorf("5m price = %f, want 204", got)
	}
	if got := forecasts[core.Horizon1Hour].Price; math.Abs(got-197) > 1e-9 {
		t.Errorf("1h price = %f, want 197", got)
	}
	if got := forecasts[core.Horizon1Day].Price; got != 200 {
		t.Errorf("1d price = %f, want unchanged", got)
	}
}

func TestModel_ConfidenceGrowsWithMoveAndCaps(t *testing.T) {
	path := zeroArtifact(t, map[core.Horizon]float64{
		core.Horizon5Min: 2, core.Horizon1Week: 10,
	})
	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	q := &core.QuoteSnapshot{Symbol: "TESTBANK", CurrentPrice: 200}
	forecasts := m.Forecast(q, core.IndicatorSet{}, nil)

	// 70 base + 5·|2| = 80.
	if got := forecasts[core.Horizon5Min].Confidence; got != 80 {
		t.Errorf("5m confidence = %f, want 80", got)
	}
	// 65 base + 0.
	if got := forecasts[core.Horizon15Min].Confidence; got != 65 {
		t.Errorf("15m confidence = %f, want 65", got)
	}
	// 50 base + 5·|10| = 100 capped at 95.
	if got := forecasts[core.Horizon1Week].Confidence; got != 95 {
		t.Errorf("1w confidence = %f, want capped 95", got)
	}
}

func TestFeatures_OrderAndNormalization(t *testing.T) {
	q := &core.QuoteSnapshot{
		CurrentPrice:  1650,
		ChangePercent: 0.8,
		Volume:        8000000,
		PE:            18.5,
		PB:            2.8,
	}
	ind := core.IndicatorSet{
		RSI:        55,
		MACD:       1.2,
		SMA20:      1640,
		SMA50:      1600,
		Volatility: 0.02,
		Beta:       1.1,
		Stochastic: core.Stochastic{K: 62},
		ADX:        30,
		Momentum:   12,
		ROC:        1.5,
	}

	f := Features(q, ind)
	if f[0] != 1650 || f[1] != 0.8 {
		t.Errorf("price/change features = %f / %f", f[0], f[1])
	}
	if f[2] != 8 {
		t.Errorf("volume feature = %f, want millions", f[2])
	}
	if f[3] != 55 || f[11] != 62 || f[14] != 1.5 {
		t.Errorf("indicator features misplaced: %v", f)
	}
}
