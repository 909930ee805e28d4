// Package yahoo fetches quotes from the Yahoo Finance v8 chart
// endpoint using the `.NS` suffix for NSE listings.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo implements the Yahoo Finance chart fetcher.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo fetcher.
func New() *Yahoo {
	return &Yahoo{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// FetchQuote fetches the chart meta block for {symbol}.NS and maps it
// onto a snapshot. Valuation fields Yahoo does not carry fall back to
// the registry instrument.
func (y *Yahoo) FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s.NS", y.baseURL, inst.Symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetcher.Fail(y.Name(), err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fetcher.Fail(y.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.Failf(y.Name(), "unexpected status: %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetcher.Failf(y.Name(), "decoding response: %w", err)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fetcher.Failf(y.Name(), "empty chart result for %s", inst.Symbol)
	}

	q := y.transform(payload.Chart.Result[0].Meta, inst)
	if err := fetcher.Validate(y.Name(), q); err != nil {
		return nil, err
	}
	return q, nil
}

func (y *Yahoo) transform(meta chartMeta, inst core.Instrument) *core.QuoteSnapshot {
	price := meta.RegularMarketPrice
	prev := meta.PreviousClose
	change := price - prev
	var changePct float64
	if prev != 0 {
		changePct = change / prev * 100
	}

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		MarketCap:     inst.MarketCap,
		WeekHigh52:    meta.FiftyTwoWeekHigh,
		WeekLow52:     meta.FiftyTwoWeekLow,
		FaceValue:     10,
		Sector:        inst.Sector,
		Exchange:      "NSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(change),
		Source:        y.Name(),
		UpdatedAt:     time.Now(),
	}
}

// Yahoo chart API response types
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

type chartMeta struct {
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
}
