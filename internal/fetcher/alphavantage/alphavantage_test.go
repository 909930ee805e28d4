package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
)

var _ fetcher.Fetcher = (*AlphaVantage)(nil)

var iciciBank = core.Instrument{
	Symbol:    "ICICIBANK",
	Name:      "ICICI Bank Limited",
	Sector:    "Private Bank",
	MarketCap: 8500000,
}

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("symbol"); got != "ICICIBANK.BSE" {
			t.Errorf("symbol = %q, want BSE suffix", got)
		}
		if got := query.Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q", got)
		}
		w.Write([]byte(`{"Global Quote": {
			"01. symbol": "ICICIBANK.BSE",
			"03. high": "1160.0000",
			"04. low": "1130.5000",
			"05. price": "1148.2500",
			"06. volume": "4567890",
			"08. previous close": "1155.0000",
			"09. change": "-6.7500",
			"10. change percent": "-0.5844%"
		}}`))
	}))
	defer srv.Close()

	a := New("test-key")
	a.baseURL = srv.URL

	q, err := a.FetchQuote(context.Background(), iciciBank)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if q.CurrentPrice != 1148.25 {
		t.Errorf("price = %f", q.CurrentPrice)
	}
	if q.Change != -6.75 {
		t.Errorf("change = %f", q.Change)
	}
	if q.ChangePercent != -0.5844 {
		t.Errorf("change%% = %f, percent suffix not stripped?", q.ChangePercent)
	}
	if q.Volume != 4567890 {
		t.Errorf("volume = %d", q.Volume)
	}
	if q.Trend != core.TrendBearish {
		t.Errorf("trend = %s", q.Trend)
	}
	if q.Exchange != "BSE" || q.Source != "alphavantage" {
		t.Errorf("exchange = %s, source = %s", q.Exchange, q.Source)
	}
}

func TestFetchQuote_EmptyQuote(t *testing.T) {
	// Alpha Vantage reports rate limiting as a 200 with an empty quote.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer srv.Close()

	a := New("test-key")
	a.baseURL = srv.URL

	if _, err := a.FetchQuote(context.Background(), iciciBank); err == nil {
		t.Fatal("empty quote must fail")
	}
}

func TestTransform_UnparseablePrice(t *testing.T) {
	a := New("test-key")
	if _, err := a.transform(globalQuote{Price: "not-a-number"}, iciciBank); err == nil {
		t.Fatal("garbage price must fail")
	}
}

func TestNew_EmptyKeyDefaultsToDemo(t *testing.T) {
	if a := New(""); a.apiKey != "demo" {
		t.Errorf("apiKey = %q", a.apiKey)
	}
}
