// Package nse fetches quotes from the NSE official quote-equity
// endpoint. The API expects browser-like headers and rate-limits
// aggressively, so this adapter is first in the cascade but fails
// often outside market hours.
package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

const defaultBaseURL = "https://www.nseindia.com/api"

// NSE implements the NSE India quote fetcher.
type NSE struct {
	client  *http.Client
	baseURL string
}

// New creates a new NSE fetcher.
func New() *NSE {
	return &NSE{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
	}
}

func (n *NSE) Name() string { return "nse" }

// FetchQuote fetches the live equity quote for an NSE symbol.
func (n *NSE) FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	url := fmt.Sprintf("%s/quote-equity?symbol=%s", n.baseURL, inst.Symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetcher.Fail(n.Name(), err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://www.nseindia.com/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fetcher.Fail(n.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.Failf(n.Name(), "unexpected status: %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetcher.Failf(n.Name(), "decoding response: %w", err)
	}

	q := n.transform(payload, inst)
	if err := fetcher.Validate(n.Name(), q); err != nil {
		return nil, err
	}
	return q, nil
}

func (n *NSE) transform(payload quoteResponse, inst core.Instrument) *core.QuoteSnapshot {
	name := payload.SecurityInfo.CompanyName
	if name == "" {
		name = inst.Name
	}
	mcap := payload.MarketCap
	if mcap == 0 {
		mcap = inst.MarketCap
	}
	faceValue := payload.SecurityInfo.FaceValue
	if faceValue == 0 {
		faceValue = 10
	}

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          name,
		CurrentPrice:  payload.PriceInfo.LastPrice,
		Change:        payload.PriceInfo.Change,
		ChangePercent: payload.PriceInfo.PChange,
		DayHigh:       payload.PriceInfo.IntraDayHighLow.Max,
		DayLow:        payload.PriceInfo.IntraDayHighLow.Min,
		Volume:        payload.MarketDeptOrderBook.TotalTradedVolume,
		MarketCap:     mcap,
		PE:            payload.PE,
		PB:            payload.PB,
		EPS:           payload.EPS,
		BookValue:     payload.BookValue,
		DividendYield: payload.DividendYield,
		FaceValue:     faceValue,
		WeekHigh52:    payload.PriceInfo.WeekHighLow.Max,
		WeekLow52:     payload.PriceInfo.WeekHighLow.Min,
		Sector:        inst.Sector,
		Exchange:      "NSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(payload.PriceInfo.Change),
		Source:        n.Name(),
		UpdatedAt:     time.Now(),
	}
}

// NSE API response types
type quoteResponse struct {
	Symbol              string       `json:"symbol"`
	PriceInfo           priceInfo    `json:"priceInfo"`
	SecurityInfo        securityInfo `json:"securityInfo"`
	MarketDeptOrderBook orderBook    `json:"marketDeptOrderBook"`
	MarketCap           int64        `json:"marketCap"`
	PE                  float64      `json:"pe"`
	PB                  float64      `json:"pb"`
	EPS                 float64      `json:"eps"`
	BookValue           float64      `json:"bookValue"`
	DividendYield       float64      `json:"dividendYield"`
}

type priceInfo struct {
	LastPrice       float64  `json:"lastPrice"`
	Change          float64  `json:"change"`
	PChange         float64  `json:"pChange"`
	IntraDayHighLow minMax   `json:"intraDayHighLow"`
	WeekHighLow     minMax   `json:"weekHighLow"`
}

type minMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type securityInfo struct {
	CompanyName string  `json:"companyName"`
	FaceValue   float64 `json:"faceValue"`
}

type orderBook struct {
	TotalTradedVolume int64 `json:"totalTradedVolume"`
}
