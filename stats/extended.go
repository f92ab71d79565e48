package stats

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/tradejournal/journal"
)

// Extended carries the risk figures shown under the headline summary. All
// are computed over closed trades.
type Extended struct {
	GrossProfit    float64 `json:"grossProfit"`
	GrossLoss      float64 `json:"grossLoss"`
	ProfitFactor   float64 `json:"profitFactor"`
	Expectancy     float64 `json:"expectancy"`
	PnLStdDev      float64 `json:"pnlStdDev"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	BestTrade      float64 `json:"bestTrade"`
	WorstTrade     float64 `json:"worstTrade"`
}

// ExtendedMetrics computes profit factor, expectancy, dispersion and
// drawdown. ProfitFactor is 0 when nothing was lost.
func ExtendedMetrics(trades []journal.Trade, initialBalance float64) Extended {
	closed := Closed(trades)
	var e Extended
	if len(closed) == 0 {
		return e
	}

	gross, loss := decimal.Zero, decimal.Zero
	pnls := make([]float64, len(closed))
	e.BestTrade, e.WorstTrade = closed[0].PnL, closed[0].PnL
	for i, t := range closed {
		pnls[i] = t.PnL
		d := decimal.NewFromFloat(t.PnL)
		if d.IsPositive() {
			gross = gross.Add(d)
		} else {
			loss = loss.Add(d)
		}
		e.BestTrade = max(e.BestTrade, t.PnL)
		e.WorstTrade = min(e.WorstTrade, t.PnL)
	}

	e.GrossProfit = gross.InexactFloat64()
	e.GrossLoss = loss.Abs().InexactFloat64()
	if !loss.IsZero() {
		e.ProfitFactor = gross.DivRound(loss.Abs(), 8).InexactFloat64()
	}

	e.Expectancy = stat.Mean(pnls, nil)
	if len(pnls) > 1 {
		e.PnLStdDev = stat.StdDev(pnls, nil)
	}

	e.MaxDrawdown, e.MaxDrawdownPct = drawdown(EquityCurve(closed, initialBalance))
	return e
}

// drawdown is the largest peak-to-trough fall of the curve, absolute and as a
// percentage of the peak. The percentage stays 0 while the peak is not
// positive.
func drawdown(curve []Point) (float64, float64) {
	if len(curve) == 0 {
		return 0, 0
	}
	peak := curve[0].Balance
	var dd, pct float64
	for _, p := range curve {
		if p.Balance > peak {
			peak = p.Balance
		}
		fall := peak - p.Balance
		if fall > dd {
			dd = fall
		}
		if peak > 0 {
			if fp := fall / peak * 100; fp > pct {
				pct = fp
			}
		}
	}
	return dd, pct
}
