package cascade

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/fetcher"
	"github.com/marketpulse/pulse/internal/registry"
)

type fakeFetcher struct {
	name  string
	quote *core.QuoteSnapshot
	err   error
	calls int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) FetchQuote(_ context.Context, inst core.Instrument) (*core.QuoteSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = inst.Symbol
	q.Source = f.name
	return &q, nil
}

func goodQuote(price float64) *core.QuoteSnapshot {
	return &core.QuoteSnapshot{Name: "Test Bank", CurrentPrice: price}
}

var fixture = []core.Instrument{
	{Symbol: "TESTBANK", Name: "Test Bank", BasePrice: 500, Volatility: 0.03, BaseVolume: 5000000, MarketCap: 1000000},
	{Symbol: "OTHERBANK", Name: "Other Bank", BasePrice: 100, Volatility: 0.05, BaseVolume: 1000000, MarketCap: 500000},
}

func TestResolve_FirstSourceWins(t *testing.T) {
	first := &fakeFetcher{name: "first", quote: goodQuote(510)}
	second := &fakeFetcher{name: "second", quote: goodQuote(999)}
	c := New(registry.NewWith(fixture), []fetcher.Fetcher{first, second})

	q := c.Resolve(context.Background(), "TESTBANK")
	if q == nil {
		t.Fatal("nil quote for registered symbol")
	}
	if q.Source != "first" || q.CurrentPrice != 510 {
		t.Errorf("quote came from %s at %f", q.Source, q.CurrentPrice)
	}
	if second.calls != 0 {
		t.Error("second source should not be consulted when the first succeeds")
	}
}

func TestResolve_FallsThroughFailures(t *testing.T) {
	failed := errors.New("boom")
	first := &fakeFetcher{name: "first", err: failed}
	second := &fakeFetcher{name: "second", err: failed}
	third := &fakeFetcher{name: "third", quote: goodQuote(505)}
	c := New(registry.NewWith(fixture), []fetcher.Fetcher{first, second, third})

	q := c.Resolve(context.Background(), "TESTBANK")
	if q.Source != "third" {
		t.Errorf("source = %s, want third", q.Source)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Error("earlier sources should each be tried once")
	}
}

func TestResolve_SyntheticOnExhaustion(t *testing.T) {
	down := &fakeFetcher{name: "down", err: errors.New("unreachable")}
	c := New(registry.NewWith(fixture), []fetcher.Fetcher{down},
		WithRand(rand.New(rand.NewSource(1))))

	q := c.Resolve(context.Background(), "TESTBANK")
	if q == nil {
		t.Fatal("exhaustion must still yield a quote")
	}
	if q.Source != SyntheticSource {
		t.Errorf("source = %s, want synthetic", q.Source)
	}

	// Price stays within baseline ± volatility·baseline.
	lo, hi := 500*(1-0.03), 500*(1+0.03)
	if q.CurrentPrice < lo || q.CurrentPrice > hi {
		t.Errorf("synthetic price %f outside [%f, %f]", q.CurrentPrice, lo, hi)
	}
	if !q.IsValid() {
		t.Errorf("synthetic quote must pass validation: %+v", q)
	}
	if q.MarketCap != 1000000 {
		t.Errorf("market cap = %d, want registry value", q.MarketCap)
	}
}

func TestResolve_SyntheticDeterministicWithSeed(t *testing.T) {
	down := &fakeFetcher{name: "down", err: errors.New("unreachable")}

	a := New(registry.NewWith(fixture), []fetcher.Fetcher{down},
		WithRand(rand.New(rand.NewSource(7)))).Resolve(context.Background(), "TESTBANK")
	b := New(registry.NewWith(fixture), []fetcher.Fetcher{down},
		WithRand(rand.New(rand.NewSource(7)))).Resolve(context.Background(), "TESTBANK")

	if a.CurrentPrice != b.CurrentPrice || a.Change != b.Change {
		t.Errorf("same seed should give identical quotes: %f vs %f", a.CurrentPrice, b.CurrentPrice)
	}
}

func TestResolve_UnknownSymbol(t *testing.T) {
	c := New(registry.NewWith(fixture), nil)
	if q := c.Resolve(context.Background(), "NOSUCH"); q != nil {
		t.Errorf("unknown symbol should resolve to nil, got %+v", q)
	}
}

func TestResolveAll(t *testing.T) {
	src := &fakeFetcher{name: "live", quote: goodQuote(250)}
	c := New(registry.NewWith(fixture), []fetcher.Fetcher{src})

	quotes := c.ResolveAll(context.Background())
	if len(quotes) != len(fixture) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(fixture))
	}
	for i, q := range quotes {
		if q == nil {
			t.Fatalf("slot %d is nil", i)
		}
		if q.Symbol != fixture[i].Symbol {
			t.Errorf("slot %d = %s, want registry order", i, q.Symbol)
		}
	}
}

func TestResolveAll_MixedOutcomes(t *testing.T) {
	// Source fails for everything; all slots settle synthetically.
	down := &fakeFetcher{name: "down", err: errors.New("unreachable")}
	c := New(registry.NewWith(fixture), []fetcher.Fetcher{down},
		WithRand(rand.New(rand.NewSource(3))))

	for i, q := range c.ResolveAll(context.Background()) {
		if q == nil || q.Source != SyntheticSource {
			t.Errorf("slot %d should settle synthetically, got %+v", i, q)
		}
	}
}

func TestSynthesize_TrendMatchesChange(t *testing.T) {
	c := New(registry.NewWith(fixture), nil, WithRand(rand.New(rand.NewSource(11))))
	inst := fixture[0]

	for i := 0; i < 50; i++ {
		q := c.Synthesize(inst)
		if want := core.TrendOf(q.Change); q.Trend != want {
			t.Fatalf("trend %s does not match change %f", q.Trend, q.Change)
		}
		if q.DayHigh < inst.BasePrice || q.DayLow > inst.BasePrice {
			t.Fatalf("day range [%f, %f] excludes baseline", q.DayLow, q.DayHigh)
		}
	}
}
