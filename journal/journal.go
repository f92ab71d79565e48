// Package journal holds the trade and portfolio records, the keyed blob
// stores they persist to, and the text exports of a journal.
package journal

import (
	"context"
	"errors"
	"strings"

	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/risk"
)

// ErrNotFound is returned when a record or blob key does not exist.
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned by writes when the stored collection does not
// decode. The stored value is left untouched.
var ErrCorrupt = errors.New("stored data is corrupt")

// ErrReparent is returned when a save would move a trade to another
// portfolio.
var ErrReparent = errors.New("trade cannot change portfolio")

// DateLayout is the canonical form of Trade.Date.
const DateLayout = "2006-01-02"

// Trade is one journal entry. Date is a calendar day with no time
// component; it is the sort and grouping key.
type Trade struct {
	ID         string  `json:"id"`
	AccountID  string  `json:"accountId"`
	Date       string  `json:"date"`
	Symbol     string  `json:"symbol"`
	TimeFrame  string  `json:"timeFrame"`
	Session    Session `json:"session"`
	EntryType  string  `json:"entryType"`
	Side       Side    `json:"side"`
	LotSize    float64 `json:"lotSize"`
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	Result     Result  `json:"result"`
	PnL        float64 `json:"pnl"`
	RR         float64 `json:"rr"`
	Notes      string  `json:"notes"`
	EntryImage string  `json:"entryImage,omitempty"`
	ExitImage  string  `json:"exitImage,omitempty"`
}

// Closed reports whether the trade counts toward performance figures.
func (t Trade) Closed() bool { return t.Result.Closed() }

// Portfolio is a trading account. Trades reference it by ID.
type Portfolio struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Currency       string  `json:"currency"`
	InitialBalance float64 `json:"initialBalance"`
}

// DefaultPortfolio is materialised the first time accounts are read.
func DefaultPortfolio() Portfolio {
	return Portfolio{ID: "default", Name: "Main Portfolio", Currency: "USD", InitialBalance: 10000}
}

// Suggested values offered by the trade form. They are not enforced.
var (
	TimeFrames = []string{"1m", "3m", "5m", "15m", "30m", "1h", "4h", "D", "W"}
	EntryTypes = []string{
		"Breakout", "Retest", "Trend Following", "Reversal", "Scalp", "SMC/ICT",
		"Unicorn model", "Order Block", "Fvg", "Poi", "Liquidity",
	}
)

// Repository is the persistence boundary for portfolios and trades.
type Repository interface {
	Accounts(ctx context.Context) ([]Portfolio, error)
	Account(ctx context.Context, id string) (Portfolio, error)
	SaveAccount(ctx context.Context, p Portfolio) (Portfolio, error)

	Trades(ctx context.Context, accountID string) ([]Trade, error)
	Trade(ctx context.Context, id string) (Trade, error)
	SaveTrade(ctx context.Context, t Trade) (Trade, error)
	DeleteTrade(ctx context.Context, id string) error

	Onboarded(ctx context.Context) (bool, error)
	SetOnboarded(ctx context.Context, v bool) error
}

// NormalizeTrade prepares a trade for storage: it assigns an ID, upper-cases
// the symbol, fills enum defaults and derives RR.
func NormalizeTrade(t Trade) Trade {
	if t.ID == "" {
		t.ID = id.New()
	}
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	if t.Result == "" {
		t.Result = ResultPending
	}
	if t.Side == "" {
		t.Side = SideLong
	}
	if t.Session == "" {
		t.Session = SessionLondon
	}
	t.RR = risk.RoundedRR(t.Entry, t.StopLoss, t.TakeProfit)
	return t
}

// NormalizePortfolio assigns an ID and upper-cases the currency. An empty
// currency becomes USD.
func NormalizePortfolio(p Portfolio) Portfolio {
	if p.ID == "" {
		p.ID = id.New()
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return p
}

// FilterByResult keeps trades with the given result. A nil result keeps all.
func FilterByResult(trades []Trade, r *Result) []Trade {
	if r == nil {
		return trades
	}
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.Result == *r {
			out = append(out, t)
		}
	}
	return out
}
