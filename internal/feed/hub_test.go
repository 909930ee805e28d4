package feed

import (
	"testing"

	"github.com/marketpulse/pulse/internal/core"
)

func TestHub_QuoteFanout(t *testing.T) {
	h := NewHub()

	var got [][]core.QuoteSnapshot
	unsub := h.SubscribeQuotes(func(quotes []core.QuoteSnapshot) {
		got = append(got, quotes)
	})
	defer unsub()

	h.BroadcastQuotes([]core.QuoteSnapshot{{Symbol: "TESTBANK"}})
	h.BroadcastQuotes([]core.QuoteSnapshot{{Symbol: "TESTBANK"}, {Symbol: "OTHERBANK"}})

	if len(got) != 2 {
		t.Fatalf("received %d broadcasts, want 2", len(got))
	}
	if len(got[1]) != 2 {
		t.Errorf("second broadcast carried %d quotes, want 2", len(got[1]))
	}
}

func TestHub_UnsubscribeIdempotent(t *testing.T) {
	h := NewHub()

	calls := 0
	unsub := h.SubscribeQuotes(func([]core.QuoteSnapshot) { calls++ })
	other := h.SubscribeQuotes(func([]core.QuoteSnapshot) {})
	defer other()

	if h.QuoteSubscribers() != 2 {
		t.Fatalf("subscribers = %d", h.QuoteSubscribers())
	}

	unsub()
	unsub()
	unsub()

	if h.QuoteSubscribers() != 1 {
		t.Errorf("repeat unsubscribe changed count: %d", h.QuoteSubscribers())
	}

	h.BroadcastQuotes([]core.QuoteSnapshot{{Symbol: "TESTBANK"}})
	if calls != 0 {
		t.Error("unsubscribed callback still invoked")
	}
}

func TestHub_PredictionChannelIndependent(t *testing.T) {
	h := NewHub()

	quoteCalls, predCalls := 0, 0
	defer h.SubscribeQuotes(func([]core.QuoteSnapshot) { quoteCalls++ })()
	defer h.SubscribePredictions(func([]core.PredictionResult) { predCalls++ })()

	h.BroadcastPredictions([]core.PredictionResult{{Symbol: "TESTBANK"}})

	if quoteCalls != 0 || predCalls != 1 {
		t.Errorf("calls = %d quotes / %d predictions", quoteCalls, predCalls)
	}
}

func TestHistory_RollingWindow(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Record("TESTBANK", float64(i)*100)
	}

	window := h.Window("TESTBANK")
	if len(window) != 3 {
		t.Fatalf("window length = %d, want 3", len(window))
	}
	if window[0] != 300 || window[2] != 500 {
		t.Errorf("window = %v, oldest entries not evicted", window)
	}

	// Window must be a copy.
	window[0] = -1
	if h.Window("TESTBANK")[0] != 300 {
		t.Error("Window leaked internal state")
	}
}

func TestHistory_SeedBounds(t *testing.T) {
	h := NewHistory(50)
	inst := core.Instrument{Symbol: "TESTBANK", BasePrice: 500, Volatility: 0.03}
	h.Seed(inst, testRand(9))

	window := h.Window("TESTBANK")
	if len(window) != 50 {
		t.Fatalf("seeded window length = %d", len(window))
	}
	lo, hi := 500*(1-0.03), 500*(1+0.03)
	for _, p := range window {
		if p < lo || p > hi {
			t.Fatalf("seeded price %f outside baseline walk", p)
		}
	}

	// Seed must not clobber observed history.
	h.Record("OTHERBANK", 100)
	h.Record("OTHERBANK", 101)
	h.Seed(core.Instrument{Symbol: "OTHERBANK", BasePrice: 999, Volatility: 0.5}, testRand(9))
	if got := h.Window("OTHERBANK"); len(got) != 2 || got[0] != 100 {
		t.Errorf("seed overwrote real history: %v", got)
	}
}
