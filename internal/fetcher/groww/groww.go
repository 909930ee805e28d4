// Package groww fetches quotes from the Groww live-price endpoint,
// the last live source in the cascade.
package groww

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

const defaultBaseURL = "https://groww.in/v1/api"

// Groww implements the Groww live-data fetcher.
type Groww struct {
	client  *http.Client
	baseURL string
}

// New creates a new Groww fetcher.
func New() *Groww {
	return &Groww{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
	}
}

func (g *Groww) Name() string { return "groww" }

func (g *Groww) FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	url := fmt.Sprintf("%s/stocks_data/v1/accord_points/exchange/NSE/segment/CASH/latest_prices_ohlc/%s",
		g.baseURL, inst.Symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetcher.Fail(g.Name(), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fetcher.Fail(g.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.Failf(g.Name(), "unexpected status: %d", resp.StatusCode)
	}

	var payload liveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetcher.Failf(g.Name(), "decoding response: %w", err)
	}

	q := g.transform(payload, inst)
	if err := fetcher.Validate(g.Name(), q); err != nil {
		return nil, err
	}
	return q, nil
}

func (g *Groww) transform(payload liveResponse, inst core.Instrument) *core.QuoteSnapshot {
	price := payload.LTP
	change := payload.DayChange
	changePct := payload.DayChangePerc
	if change == 0 && payload.Close > 0 {
		change = price - payload.Close
		changePct = change / payload.Close * 100
	}

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       payload.High,
		DayLow:        payload.Low,
		Volume:        payload.Volume,
		MarketCap:     inst.MarketCap,
		WeekHigh52:    payload.YearHigh,
		WeekLow52:     payload.YearLow,
		FaceValue:     10,
		Sector:        inst.Sector,
		Exchange:      "NSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(change),
		Source:        g.Name(),
		UpdatedAt:     time.Now(),
	}
}

// Groww live-price response types
type liveResponse struct {
	LTP           float64 `json:"ltp"`
	Close         float64 `json:"close"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	DayChange     float64 `json:"dayChange"`
	DayChangePerc float64 `json:"dayChangePerc"`
	YearHigh      float64 `json:"yearHighPrice"`
	YearLow       float64 `json:"yearLowPrice"`
}
