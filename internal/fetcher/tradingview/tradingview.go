// Package tradingview fetches quotes from the TradingView india scan
// endpoint. Unlike the other providers this is a POST carrying a
// column list; values come back as a positional array.
package tradingview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

const defaultBaseURL = "https://scanner.tradingview.com"

// columns requested from the scanner, in positional order. The
// transform below indexes into the response row by this order.
var columns = []string{
	"close",
	"change",
	"change_abs",
	"high",
	"low",
	"volume",
	"market_cap_basic",
	"price_earnings_ttm",
	"price_book_fq",
	"earnings_per_share_basic_ttm",
}

// TradingView implements the scanner-based quote fetcher.
type TradingView struct {
	client  *http.Client
	baseURL string
}

// New creates a new TradingView fetcher.
func New() *TradingView {
	return &TradingView{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
	}
}

func (t *TradingView) Name() string { return "tradingview" }

func (t *TradingView) FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	body, err := json.Marshal(scanRequest{
		Symbols: scanSymbols{Tickers: []string{"NSE:" + inst.Symbol}},
		Columns: columns,
	})
	if err != nil {
		return nil, fetcher.Fail(t.Name(), err)
	}

	url := t.baseURL + "/india/scan"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fetcher.Fail(t.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fetcher.Fail(t.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.Failf(t.Name(), "unexpected status: %d", resp.StatusCode)
	}

	var payload scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetcher.Failf(t.Name(), "decoding response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fetcher.Failf(t.Name(), "no scan rows for %s", inst.Symbol)
	}

	q, err := t.transform(payload.Data[0].Values, inst)
	if err != nil {
		return nil, err
	}
	if err := fetcher.Validate(t.Name(), q); err != nil {
		return nil, err
	}
	return q, nil
}

func (t *TradingView) transform(row []float64, inst core.Instrument) (*core.QuoteSnapshot, error) {
	if len(row) < len(columns) {
		return nil, fetcher.Failf(t.Name(), "scan row has %d values, want %d", len(row), len(columns))
	}

	price := row[0]
	changePct := row[1]
	change := row[2]
	mcap := inst.MarketCap
	if row[6] > 0 {
		mcap = int64(row[6])
	}

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       row[3],
		DayLow:        row[4],
		Volume:        int64(row[5]),
		MarketCap:     mcap,
		PE:            row[7],
		PB:            row[8],
		EPS:           row[9],
		FaceValue:     10,
		Sector:        inst.Sector,
		Exchange:      "NSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(change),
		Source:        t.Name(),
		UpdatedAt:     time.Now(),
	}, nil
}

// TradingView scan request/response types
type scanRequest struct {
	Symbols scanSymbols `json:"symbols"`
	Columns []string    `json:"columns"`
}

type scanSymbols struct {
	Tickers []string `json:"tickers"`
}

type scanResponse struct {
	Data []scanRow `json:"data"`
}

type scanRow struct {
	Ticker string    `json:"s"`
	Values []float64 `json:"d"`
}
