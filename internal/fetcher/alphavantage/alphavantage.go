// Package alphavantage fetches quotes from the Alpha Vantage
// GLOBAL_QUOTE endpoint using the `.BSE` suffix. Every numeric field
// arrives as a string and the change-percent carries a trailing `%`.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

const defaultBaseURL = "https://www.alphavantage.co"

// AlphaVantage implements the Alpha Vantage global-quote fetcher.
type AlphaVantage struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new Alpha Vantage fetcher. An empty key still works
// against the demo tier but is rate-limited to near uselessness.
func New(apiKey string) *AlphaVantage {
	if apiKey == "" {
		apiKey = "demo"
	}
	return &AlphaVantage{
		client:  fetcher.NewClient(),
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s.BSE&apikey=%s",
		a.baseURL, inst.Symbol, a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetcher.Fail(a.Name(), err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fetcher.Fail(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.Failf(a.Name(), "unexpected status: %d", resp.StatusCode)
	}

	var payload globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetcher.Failf(a.Name(), "decoding response: %w", err)
	}
	if payload.GlobalQuote.Price == "" {
		return nil, fetcher.Failf(a.Name(), "empty global quote for %s", inst.Symbol)
	}

	q, err := a.transform(payload.GlobalQuote, inst)
	if err != nil {
		return nil, err
	}
	if err := fetcher.Validate(a.Name(), q); err != nil {
		return nil, err
	}
	return q, nil
}

func (a *AlphaVantage) transform(gq globalQuote, inst core.Instrument) (*core.QuoteSnapshot, error) {
	price, err := parseFloat(gq.Price)
	if err != nil {
		return nil, fetcher.Failf(a.Name(), "parsing price %q: %w", gq.Price, err)
	}
	change, _ := parseFloat(gq.Change)
	changePct, _ := parseFloat(strings.TrimSuffix(gq.ChangePercent, "%"))
	high, _ := parseFloat(gq.High)
	low, _ := parseFloat(gq.Low)
	volume, _ := strconv.ParseInt(strings.TrimSpace(gq.Volume), 10, 64)

	return &core.QuoteSnapshot{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       high,
		DayLow:        low,
		Volume:        volume,
		MarketCap:     inst.MarketCap,
		FaceValue:     10,
		Sector:        inst.Sector,
		Exchange:      "BSE",
		ISIN:          inst.ISIN,
		Trend:         core.TrendOf(change),
		Source:        a.Name(),
		UpdatedAt:     time.Now(),
	}, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Alpha Vantage GLOBAL_QUOTE response types
type globalQuoteResponse struct {
	GlobalQuote globalQuote `json:"Global Quote"`
}

type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}
