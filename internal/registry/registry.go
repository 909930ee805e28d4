// Package registry holds the static instrument table for the tracked
// NSE banking universe. The table is immutable after construction; the
// baseline price and volatility columns seed synthetic fallback quotes.
package registry

import "github.com/marketpulse/pulse/internal/core"

// Defaults applied to instruments without a dedicated baseline row.
const (
	DefaultBasePrice  = 500.0
	DefaultVolatility = 0.03
	DefaultBaseVolume = 5000000
	DefaultMarketCap  = 1000000
)

var instruments = []core.Instrument{
	{Symbol: "HDFCBANK", Name: "HDFC Bank Limited", ISIN: "INE040A01034", Sector: "Private Bank", BasePrice: 1650, Volatility: 0.02, BaseVolume: 8000000, MarketCap: 12500000},
	{Symbol: "ICICIBANK", Name: "ICICI Bank Limited", ISIN: "INE090A01021", Sector: "Private Bank", BasePrice: 1200, Volatility: 0.025, BaseVolume: 12000000, MarketCap: 8500000},
	{Symbol: "SBIN", Name: "State Bank of India", ISIN: "INE062A01020", Sector: "Public Bank", BasePrice: 820, Volatility: 0.03, BaseVolume: 25000000, MarketCap: 7300000},
	{Symbol: "AXISBANK", Name: "Axis Bank Limited", ISIN: "INE238A01034", Sector: "Private Bank", BasePrice: 1100, Volatility: 0.035, BaseVolume: 15000000, MarketCap: 3400000},
	{Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank Limited", ISIN: "INE237A01028", Sector: "Private Bank", BasePrice: 1800, Volatility: 0.025, BaseVolume: 6000000, MarketCap: 3600000},
	{Symbol: "BANKBARODA", Name: "Bank of Baroda", ISIN: "INE028A01039", Sector: "Public Bank", BasePrice: 250, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 850000},
	{Symbol: "IDFCFIRSTB", Name: "IDFC First Bank Limited", ISIN: "INE092T01019", Sector: "Private Bank", BasePrice: 90, Volatility: 0.07, BaseVolume: DefaultBaseVolume, MarketCap: 650000},
	{Symbol: "PNB", Name: "Punjab National Bank", ISIN: "INE476A01014", Sector: "Public Bank", BasePrice: 120, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 720000},
	{Symbol: "FEDERALBNK", Name: "Federal Bank Limited", ISIN: "INE171A01029", Sector: "Private Bank", BasePrice: 180, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 380000},
	{Symbol: "INDUSINDBK", Name: "IndusInd Bank Limited", ISIN: "INE095A01012", Sector: "Private Bank", BasePrice: 1400, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 1200000},
	{Symbol: "YESBANK", Name: "Yes Bank Limited", ISIN: "INE528G01035", Sector: "Private Bank", BasePrice: 25, Volatility: 0.08, BaseVolume: DefaultBaseVolume, MarketCap: 85000},
	{Symbol: "RBLBANK", Name: "RBL Bank Limited", ISIN: "INE976G01028", Sector: "Private Bank", BasePrice: 280, Volatility: 0.06, BaseVolume: DefaultBaseVolume, MarketCap: 180000},
	{Symbol: "BANDHANBNK", Name: "Bandhan Bank Limited", ISIN: "INE545U01014", Sector: "Private Bank", BasePrice: 220, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 420000},
	{Symbol: "AUBANK", Name: "AU Small Finance Bank Limited", ISIN: "INE949L01017", Sector: "Small Finance Bank", BasePrice: 650, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 450000},
	{Symbol: "CANBK", Name: "Canara Bank", ISIN: "INE476A01022", Sector: "Public Bank", BasePrice: 450, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 680000},
	{Symbol: "UNIONBANK", Name: "Union Bank of India", ISIN: "INE692A01016", Sector: "Public Bank", BasePrice: 120, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 420000},
	{Symbol: "INDIANB", Name: "Indian Bank", ISIN: "INE562A01011", Sector: "Public Bank", BasePrice: 380, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 380000},
	{Symbol: "MAHABANK", Name: "Bank of Maharashtra", ISIN: "INE457A01014", Sector: "Public Bank", BasePrice: 45, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 120000},
	{Symbol: "IOB", Name: "Indian Overseas Bank", ISIN: "INE565A01014", Sector: "Public Bank", BasePrice: 35, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 95000},
	{Symbol: "CENTRALBK", Name: "Central Bank of India", ISIN: "INE483A01010", Sector: "Public Bank", BasePrice: 28, Volatility: DefaultVolatility, BaseVolume: DefaultBaseVolume, MarketCap: 85000},
}

// Registry is a read-only lookup over the instrument table.
type Registry struct {
	ordered []core.Instrument
	bySym   map[string]core.Instrument
}

// New creates a registry over the built-in banking universe.
func New() *Registry {
	return NewWith(instruments)
}

// NewWith creates a registry over a caller-supplied table. Useful for
// fixtures in tests.
func NewWith(table []core.Instrument) *Registry {
	r := &Registry{
		ordered: make([]core.Instrument, len(table)),
		bySym:   make(map[string]core.Instrument, len(table)),
	}
	copy(r.ordered, table)
	for _, inst := range r.ordered {
		r.bySym[inst.Symbol] = inst
	}
	return r
}

// Lookup returns the instrument for a symbol.
func (r *Registry) Lookup(symbol string) (core.Instrument, error) {
	inst, ok := r.bySym[symbol]
	if !ok {
		return core.Instrument{}, core.ErrSymbolNotFound
	}
	return inst, nil
}

// All returns every instrument in declaration order.
func (r *Registry) All() []core.Instrument {
	result := make([]core.Instrument, len(r.ordered))
	copy(result, r.ordered)
	return result
}

// Symbols returns all symbols in declaration order.
func (r *Registry) Symbols() []string {
	result := make([]string, len(r.ordered))
	for i, inst := range r.ordered {
		result[i] = inst.Symbol
	}
	return result
}

// Len returns the number of tracked instruments.
func (r *Registry) Len() int {
	return len(r.ordered)
}
