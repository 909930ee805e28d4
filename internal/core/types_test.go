package core

import (
	"testing"
	"time"
)

func TestTrendOf(t *testing.T) {
	tests := []struct {
		change float64
		want   Trend
	}{
		{1.5, TrendBullish},
		{-0.01, TrendBearish},
		{0, TrendNeutral},
	}

	for _, tt := range tests {
		if got := TrendOf(tt.change); got != tt.want {
			t.Errorf("TrendOf(%f) = %s, want %s", tt.change, got, tt.want)
		}
	}
}

func TestQuoteSnapshot_IsValid(t *testing.T) {
	valid := &QuoteSnapshot{Symbol: "HDFCBANK", Name: "HDFC Bank Limited", CurrentPrice: 1650}
	if !valid.IsValid() {
		t.Error("expected valid snapshot")
	}

	tests := []*QuoteSnapshot{
		nil,
		{Name: "HDFC Bank Limited", CurrentPrice: 1650},
		{Symbol: "HDFCBANK", CurrentPrice: 1650},
		{Symbol: "HDFCBANK", Name: "HDFC Bank Limited", CurrentPrice: 0},
		{Symbol: "HDFCBANK", Name: "HDFC Bank Limited", CurrentPrice: -10},
	}
	for i, q := range tests {
		if q.IsValid() {
			t.Errorf("case %d: expected invalid snapshot", i)
		}
	}
}

func TestHorizons_Order(t *testing.T) {
	hs := Horizons()
	want := []Horizon{Horizon5Min, Horizon15Min, Horizon1Hour, Horizon1Day, Horizon1Week}

	if len(hs) != len(want) {
		t.Fatalf("expected %d horizons, got %d", len(want), len(hs))
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("horizons[%d] = %s, want %s", i, hs[i], want[i])
		}
	}
}

func TestPredictionResult_ExpectedChangePercent(t *testing.T) {
	p := &PredictionResult{
		CurrentPrice: 100,
		Forecasts: map[Horizon]HorizonForecast{
			Horizon5Min: {Price: 102},
			Horizon1Day: {Price: 106},
		},
		GeneratedAt: time.Now(),
	}

	// Mean forecast 104 -> +4%
	got := p.ExpectedChangePercent()
	if got < 3.999 || got > 4.001 {
		t.Errorf("expected change ~4%%, got %f", got)
	}

	empty := &PredictionResult{CurrentPrice: 100}
	if empty.ExpectedChangePercent() != 0 {
		t.Error("no forecasts should yield zero expected change")
	}
}
