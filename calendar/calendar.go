// Package calendar lays a month of trades out as a Sunday-first grid of
// daily and weekly P&L.
package calendar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// DateKey formats a calendar day the way Trade.Date stores it.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// Day is one calendar day. PnL is nil when nothing was traded; a traded day
// that netted out has a PnL of 0. The zero Day is a blank grid cell.
type Day struct {
	Day    int      `json:"day"`
	Date   string   `json:"date,omitempty"`
	PnL    *float64 `json:"pnl"`
	Trades int      `json:"trades"`
}

// Blank reports whether the cell is padding outside the month.
func (d Day) Blank() bool { return d.Day == 0 }

// Week is one row of the grid.
type Week struct {
	Cells  [7]Day  `json:"cells"`
	PnL    float64 `json:"pnl"`
	Active bool    `json:"active"`
}

// WeekSummary is shown beside an active week.
type WeekSummary struct {
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
	Days   int     `json:"days"`
}

// Summary returns nil when no day of the week was traded.
func (w Week) Summary() *WeekSummary {
	if !w.Active {
		return nil
	}
	s := &WeekSummary{PnL: w.PnL}
	for _, c := range w.Cells {
		if c.PnL != nil {
			s.Trades += c.Trades
			s.Days++
		}
	}
	return s
}

// Grid is a month of days, plus the same days arranged in weeks.
type Grid struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Leading int        `json:"leading"`
	Days    []Day      `json:"days"`
	Weeks   []Week     `json:"weeks"`
}

// Total is the month's P&L.
func (g Grid) Total() float64 {
	sum := decimal.Zero
	for _, d := range g.Days {
		if d.PnL != nil {
			sum = sum.Add(decimal.NewFromFloat(*d.PnL))
		}
	}
	return sum.InexactFloat64()
}

type daily struct {
	pnl    decimal.Decimal
	trades int
}

// Month builds the grid for year/month. Every trade on a day counts toward
// its P&L, whatever its result. Trades outside the month are ignored. An
// out-of-range month is normalised the way time.Date does (month 13 is
// January of the next year).
func Month(year int, month time.Month, trades []journal.Trade) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = first.Year(), first.Month()
	n := first.AddDate(0, 1, -1).Day()

	byDate := make(map[string]*daily)
	for _, t := range trades {
		d, ok := byDate[t.Date]
		if !ok {
			d = &daily{pnl: decimal.Zero}
			byDate[t.Date] = d
		}
		d.pnl = d.pnl.Add(decimal.NewFromFloat(t.PnL))
		d.trades++
	}

	g := Grid{
		Year:    year,
		Month:   month,
		Leading: int(first.Weekday()),
		Days:    make([]Day, n),
	}
	for i := range g.Days {
		key := DateKey(year, month, i+1)
		day := Day{Day: i + 1, Date: key}
		if d, ok := byDate[key]; ok {
			v := d.pnl.InexactFloat64()
			day.PnL = &v
			day.Trades = d.trades
		}
		g.Days[i] = day
	}

	cells := g.Leading + n
	rows := (cells + 6) / 7
	g.Weeks = make([]Week, rows)
	for i, day := range g.Days {
		pos := g.Leading + i
		w := &g.Weeks[pos/7]
		w.Cells[pos%7] = day
		if day.PnL != nil {
			w.Active = true
			w.PnL = decimal.NewFromFloat(w.PnL).Add(decimal.NewFromFloat(*day.PnL)).InexactFloat64()
		}
	}
	return g
}

// Step moves delta months from year/month. It has no bounds.
func Step(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
