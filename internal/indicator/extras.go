package indicator

import (
	"math"
	"math/rand"
	"sync"
)

// ExtraInput carries the data available to an extra-indicator strategy.
type ExtraInput struct {
	Prices     []float64
	Index      []float64 // index close series for beta regression, may be nil
	Price      float64
	Volatility float64
}

// Extras holds the indicators whose formulas differ between the
// placeholder and standard strategies.
type Extras struct {
	ADX  float64
	CCI  float64
	ATR  float64
	Beta float64
}

// ExtraIndicators computes ADX, CCI, ATR and Beta. The source system
// shipped bounded random placeholders for these; both that behavior and
// textbook formulas are available as strategies.
type ExtraIndicators interface {
	Name() string
	Compute(in ExtraInput) Extras
}

// PlaceholderExtras reproduces the source system's bounded random
// values: ADX in [25,75), CCI in [-200,200), ATR = volatility * price,
// Beta in [0.8,1.6).
type PlaceholderExtras struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholderExtras creates the placeholder strategy with a seeded
// random source so tests can assert determinism.
func NewPlaceholderExtras(seed int64) *PlaceholderExtras {
	return &PlaceholderExtras{rng: rand.New(rand.NewSource(seed))}
}

func (p *PlaceholderExtras) Name() string { return "placeholder" }

func (p *PlaceholderExtras) Compute(in ExtraInput) Extras {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Extras{
		ADX:  25 + p.rng.Float64()*50,
		CCI:  (p.rng.Float64() - 0.5) * 400,
		ATR:  in.Volatility * in.Price,
		Beta: 0.8 + p.rng.Float64()*0.8,
	}
}

// StandardExtras computes the textbook formulas from the close series:
// close-delta true ranges for ATR, typical-price deviation for CCI,
// directional movement for ADX, and a returns regression against the
// index series for Beta (1.0 when no index is supplied).
type StandardExtras struct{}

func (StandardExtras) Name() string { return "standard" }

func (StandardExtras) Compute(in ExtraInput) Extras {
	return Extras{
		ADX:  standardADX(in.Prices, 14),
		CCI:  standardCCI(in.Prices, 20),
		ATR:  standardATR(in.Prices, 14),
		Beta: standardBeta(in.Prices, in.Index),
	}
}

func standardATR(prices []float64, period int) float64 {
	if len(prices) < 2 {
		return 0
	}

	window := tail(prices, period+1)
	var sum float64
	for i := 1; i < len(window); i++ {
		sum += math.Abs(window[i] - window[i-1])
	}
	return sum / float64(len(window)-1)
}

func standardCCI(prices []float64, period int) float64 {
	window := tail(prices, period)
	if len(window) < 2 {
		return 0
	}

	sma := SMA(window, len(window))
	var meanDev float64
	for _, p := range window {
		meanDev += math.Abs(p - sma)
	}
	meanDev /= float64(len(window))
	if meanDev == 0 {
		return 0
	}

	current := window[len(window)-1]
	return (current - sma) / (0.015 * meanDev)
}

func standardADX(prices []float64, period int) float64 {
	window := tail(prices, period+1)
	if len(window) < 2 {
		return 0
	}

	var plusDM, minusDM float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			plusDM += delta
		} else {
			minusDM -= delta
		}
	}
	total := plusDM + minusDM
	if total == 0 {
		return 0
	}
	return math.Abs(plusDM-minusDM) / total * 100
}

func standardBeta(prices, index []float64) float64 {
	if len(prices) < 3 || len(index) < 3 {
		return 1
	}

	n := len(prices)
	if len(index) < n {
		n = len(index)
	}
	assetReturns := simpleReturns(prices[len(prices)-n:])
	indexReturns := simpleReturns(index[len(index)-n:])

	varIdx := variance(indexReturns)
	if varIdx == 0 {
		return 1
	}
	return covariance(assetReturns, indexReturns) / varIdx
}

func simpleReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

func covariance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	ma, mb := mean(a[:n]), mean(b[:n])
	var sum float64
	for i := 0; i < n; i++ {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n)
}
