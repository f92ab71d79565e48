package risk

import "github.com/shopspring/decimal"

// LotStep is the smallest tradable lot increment.
const LotStep = 0.01

type SizeInputs struct {
	Equity  float64
	RiskPct float64 // 0.005
	Entry   float64
	Stop    float64
}

type Sizing struct {
	LotSize      float64
	StopDistance float64
	RiskAmount   float64
}

// Size returns the lot size that loses RiskPct of equity at the stop, using
// the same price-distance model as PlannedRisk. Lots are rounded down to
// LotStep. With no stop distance the lot size is 0.
func Size(in SizeInputs) Sizing {
	dist := decimal.NewFromFloat(in.Entry).Sub(decimal.NewFromFloat(in.Stop)).Abs()
	riskAmt := decimal.NewFromFloat(in.Equity).Mul(decimal.NewFromFloat(in.RiskPct))

	s := Sizing{
		StopDistance: dist.InexactFloat64(),
		RiskAmount:   riskAmt.InexactFloat64(),
	}
	if dist.IsZero() || !riskAmt.IsPositive() {
		return s
	}
	s.LotSize = riskAmt.DivRound(dist, 8).Truncate(2).InexactFloat64()
	return s
}
