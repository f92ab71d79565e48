package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

// weekStart is the Monday on or before d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Snapshot is the account state t was taken into: equity from the closed
// trades dated before it, and the other trades of its day and Monday-first
// week up to its date. t itself never counts.
func Snapshot(initialBalance float64, trades []journal.Trade, t journal.Trade) risk.Snapshot {
	equity := decimal.NewFromFloat(initialBalance)
	day, week := decimal.Zero, decimal.Zero
	var dayTrades int

	from := t.Date
	if d, err := time.Parse(journal.DateLayout, t.Date); err == nil {
		from = weekStart(d).Format(journal.DateLayout)
	}

	for _, o := range trades {
		if o.ID == t.ID {
			continue
		}
		if o.Date == t.Date {
			dayTrades++
		}
		if !o.Closed() {
			continue
		}
		pnl := decimal.NewFromFloat(o.PnL)
		if o.Date < t.Date {
			equity = equity.Add(pnl)
		}
		if o.Date == t.Date {
			day = day.Add(pnl)
		}
		if o.Date >= from && o.Date <= t.Date {
			week = week.Add(pnl)
		}
	}

	return risk.Snapshot{
		Equity:       equity.InexactFloat64(),
		DayRealized:  day.InexactFloat64(),
		WeekRealized: week.InexactFloat64(),
		DayTrades:    dayTrades,
	}
}

// Review checks t against the trader's rules.
func Review(p risk.Policy, portfolio journal.Portfolio, trades []journal.Trade, t journal.Trade) risk.Decision {
	return risk.Evaluate(p, risk.Intent{
		LotSize:    t.LotSize,
		Entry:      t.Entry,
		Stop:       t.StopLoss,
		TakeProfit: t.TakeProfit,
	}, Snapshot(portfolio.InitialBalance, trades, t))
}
