package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// UnknownKey labels trades whose grouping field is empty or unusable.
const UnknownKey = "Unknown"

// Group aggregates the closed trades sharing one key.
type Group struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Wins  int     `json:"wins"`
	PnL   float64 `json:"pnl"`
}

// WinRate is the percentage of the group's trades that were wins.
func (g Group) WinRate() float64 { return ratio(g.Wins, g.Count) }

// KeyFunc extracts the grouping key of a trade.
type KeyFunc func(journal.Trade) string

// ByStrategy keys a trade by its entry type.
func ByStrategy(t journal.Trade) string { return t.EntryType }

// BySession keys a trade by its market session.
func BySession(t journal.Trade) string { return string(t.Session) }

// BySymbol keys a trade by its instrument.
func BySymbol(t journal.Trade) string { return t.Symbol }

type accum struct {
	key   string
	count int
	wins  int
	pnl   decimal.Decimal
}

// collect buckets closed trades by key, returning the buckets in the order
// their keys were first seen.
func collect(trades []journal.Trade, key KeyFunc) []Group {
	index := map[string]int{}
	var acc []*accum

	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		k := key(t)
		if k == "" {
			k = UnknownKey
		}
		i, ok := index[k]
		if !ok {
			i = len(acc)
			index[k] = i
			acc = append(acc, &accum{key: k, pnl: decimal.Zero})
		}
		a := acc[i]
		a.count++
		if t.Result == journal.ResultWin {
			a.wins++
		}
		a.pnl = a.pnl.Add(decimal.NewFromFloat(t.PnL))
	}

	out := make([]Group, len(acc))
	for i, a := range acc {
		out[i] = Group{Key: a.key, Count: a.count, Wins: a.wins, PnL: a.pnl.InexactFloat64()}
	}
	return out
}

// GroupBy buckets the closed trades by key and orders the groups by P&L,
// highest first. Equal P&L keeps first-seen order.
func GroupBy(trades []journal.Trade, key KeyFunc) []Group {
	groups := collect(trades, key)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].PnL > groups[j].PnL })
	return groups
}

var weekOrder = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
	UnknownKey,
}

// Weekday names the day of week of a trade's calendar date. The date is
// parsed as a plain day, so no time zone can shift it. Dates that do not
// parse yield UnknownKey.
func Weekday(t journal.Trade) string {
	d, err := time.Parse(journal.DateLayout, t.Date)
	if err != nil {
		return UnknownKey
	}
	return d.Weekday().String()
}

// GroupByWeekday groups closed trades by day of week, Monday through Sunday.
// Undated trades come last under UnknownKey. Days without trades are omitted.
func GroupByWeekday(trades []journal.Trade) []Group {
	groups := collect(trades, Weekday)
	rank := make(map[string]int, len(weekOrder))
	for i, d := range weekOrder {
		rank[d] = i
	}
	sort.SliceStable(groups, func(i, j int) bool { return rank[groups[i].Key] < rank[groups[j].Key] })
	return groups
}

// Breakdowns are the four standard cuts of a portfolio.
type Breakdowns struct {
	Strategy []Group `json:"strategy"`
	Session  []Group `json:"session"`
	Symbol   []Group `json:"symbol"`
	Weekday  []Group `json:"weekday"`
}

// Breakdown groups closed trades by strategy, session, symbol and weekday.
func Breakdown(trades []journal.Trade) Breakdowns {
	return Breakdowns{
		Strategy: GroupBy(trades, ByStrategy),
		Session:  GroupBy(trades, BySession),
		Symbol:   GroupBy(trades, BySymbol),
		Weekday:  GroupByWeekday(trades),
	}
}

// Top returns at most the first n groups.
func Top(groups []Group, n int) []Group {
	if n < 0 {
		n = 0
	}
	if len(groups) <= n {
		return groups
	}
	return groups[:n]
}
