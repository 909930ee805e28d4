package registry

import (
	"errors"
	"testing"

	"github.com/marketpulse/pulse/internal/core"
)

func TestRegistry_Lookup(t *testing.T) {
	r := New()

	inst, err := r.Lookup("HDFCBANK")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if inst.Name != "HDFC Bank Limited" {
		t.Errorf("unexpected name: %s", inst.Name)
	}
	if inst.BasePrice != 1650 {
		t.Errorf("unexpected base price: %f", inst.BasePrice)
	}
	if inst.Volatility != 0.02 {
		t.Errorf("unexpected volatility: %f", inst.Volatility)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := New()

	_, err := r.Lookup("RELIANCE")
	if !errors.Is(err, core.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestRegistry_AllPreservesOrder(t *testing.T) {
	r := New()

	all := r.All()
	if len(all) != 20 {
		t.Fatalf("expected 20 instruments, got %d", len(all))
	}
	if all[0].Symbol != "HDFCBANK" {
		t.Errorf("expected HDFCBANK first, got %s", all[0].Symbol)
	}
	if all[len(all)-1].Symbol != "CENTRALBK" {
		t.Errorf("expected CENTRALBK last, got %s", all[len(all)-1].Symbol)
	}
}

func TestRegistry_Symbols(t *testing.T) {
	r := NewWith([]core.Instrument{
		{Symbol: "AAA", BasePrice: 10},
		{Symbol: "BBB", BasePrice: 20},
	})

	syms := r.Symbols()
	if len(syms) != 2 || syms[0] != "AAA" || syms[1] != "BBB" {
		t.Errorf("unexpected symbols: %v", syms)
	}
	if r.Len() != 2 {
		t.Errorf("unexpected length: %d", r.Len())
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r := New()

	all := r.All()
	all[0].Symbol = "MUTATED"

	again, _ := r.Lookup("HDFCBANK")
	if again.Symbol != "HDFCBANK" {
		t.Error("mutating the returned slice must not affect the registry")
	}
}
