// Package stats derives performance figures from journal trades. Nothing here
// performs I/O or modifies its input.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// InitialLabel is the date of the first equity curve point.
const InitialLabel = "Initial"

// Summary is the headline block of a portfolio.
type Summary struct {
	WinRate     float64 `json:"winRate"`
	NetPnL      float64 `json:"netPnl"`
	AvgRR       float64 `json:"avgRr"`
	Equity      float64 `json:"equity"`
	TradeCount  int     `json:"tradeCount"`
	ClosedCount int     `json:"closedCount"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	BreakEven   int     `json:"breakEven"`
}

// Point is one step of the equity curve.
type Point struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// Closed returns the trades that count toward performance, in input order.
func Closed(trades []journal.Trade) []journal.Trade {
	out := make([]journal.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Closed() {
			out = append(out, t)
		}
	}
	return out
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// Summarize computes win rate, net P&L, average RR and equity over the closed
// trades. With no closed trades every rate is 0 and equity is initialBalance.
func Summarize(trades []journal.Trade, initialBalance float64) Summary {
	s := Summary{TradeCount: len(trades)}

	pnl := decimal.Zero
	rr := decimal.Zero
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		s.ClosedCount++
		switch t.Result {
		case journal.ResultWin:
			s.Wins++
		case journal.ResultLoss:
			s.Losses++
		case journal.ResultBreakEven:
			s.BreakEven++
		}
		pnl = pnl.Add(decimal.NewFromFloat(t.PnL))
		rr = rr.Add(decimal.NewFromFloat(t.RR))
	}

	s.WinRate = ratio(s.Wins, s.ClosedCount)
	s.NetPnL = pnl.InexactFloat64()
	s.Equity = decimal.NewFromFloat(initialBalance).Add(pnl).InexactFloat64()
	if s.ClosedCount > 0 {
		s.AvgRR = rr.Div(decimal.NewFromInt(int64(s.ClosedCount))).InexactFloat64()
	}
	return s
}

// EquityCurve replays every trade, pending ones included, in ascending date
// order. Trades sharing a date keep their input order. The first point is
// the initial balance.
func EquityCurve(trades []journal.Trade, initialBalance float64) []Point {
	sorted := make([]journal.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	curve := make([]Point, 0, len(sorted)+1)
	curve = append(curve, Point{Date: InitialLabel, Balance: initialBalance})

	bal := decimal.NewFromFloat(initialBalance)
	for _, t := range sorted {
		bal = bal.Add(decimal.NewFromFloat(t.PnL))
		curve = append(curve, Point{Date: t.Date, Balance: bal.InexactFloat64()})
	}
	return curve
}
