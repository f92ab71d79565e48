// Package report renders a portfolio's performance as an Org-mode document.
package report

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
)

// TopGroups caps each breakdown table.
const TopGroups = 5

// Report is everything the performance document shows for one portfolio.
type Report struct {
	Portfolio journal.Portfolio
	Created   time.Time

	// Start and End are the first and last trade dates, empty with no trades.
	Start string
	End   string

	Summary   stats.Summary
	Extended  stats.Extended
	Breakdown stats.Breakdowns

	Notes []string
}

// ReturnPct is net P&L as a percentage of the initial balance, or 0 for an
// unfunded portfolio.
func (r Report) ReturnPct() float64 {
	if r.Portfolio.InitialBalance == 0 {
		return 0
	}
	return r.Summary.NetPnL / r.Portfolio.InitialBalance * 100
}

// Build folds trades into a Report. The trades are not modified.
func Build(p journal.Portfolio, trades []journal.Trade, now time.Time) Report {
	r := Report{
		Portfolio: p,
		Created:   now,
		Summary:   stats.Summarize(trades, p.InitialBalance),
		Extended:  stats.ExtendedMetrics(trades, p.InitialBalance),
		Breakdown: stats.Breakdown(trades),
	}
	for _, t := range trades {
		if r.Start == "" || t.Date < r.Start {
			r.Start = t.Date
		}
		if t.Date > r.End {
			r.End = t.Date
		}
	}
	if pending := r.Summary.TradeCount - r.Summary.ClosedCount; pending > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("%d pending trade(s) excluded from performance figures", pending))
	}
	if len(r.Breakdown.Weekday) > 0 && r.Breakdown.Weekday[len(r.Breakdown.Weekday)-1].Key == stats.UnknownKey {
		r.Notes = append(r.Notes, "some trades have no readable date and are grouped under Unknown")
	}
	return r
}

var orgFuncs = template.FuncMap{
	"top": func(g []stats.Group) []stats.Group { return stats.Top(g, TopGroups) },
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

var orgTemplate = template.Must(template.New("report").Funcs(orgFuncs).Parse(OrgTemplate))

// WriteOrg renders r to w.
func WriteOrg(w io.Writer, r Report) error {
	if err := orgTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

const OrgTemplate = `* PORTFOLIO: {{.Portfolio.Name}} ({{.Portfolio.Currency}})
:PROPERTIES:
:PORTFOLIO_ID: {{.Portfolio.ID}}
:START_DATE:   {{orDash .Start}}
:END_DATE:     {{orDash .End}}
:START_BAL:    {{printf "%.2f" .Portfolio.InitialBalance}}
:EQUITY:       {{printf "%.2f" .Summary.Equity}}
:NET_PL:       {{printf "%.2f" .Summary.NetPnL}}
:RETURN_PCT:   {{printf "%.2f" .ReturnPct}}
:TRADES:       {{.Summary.TradeCount}}
:CLOSED:       {{.Summary.ClosedCount}}
:WIN_RATE:     {{printf "%.2f" .Summary.WinRate}}
:AVG_RR:       {{printf "%.2f" .Summary.AvgRR}}
:CREATED:      [{{.Created.Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{printf "%.2f" .Summary.NetPnL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Win Rate:         *{{printf "%.2f" .Summary.WinRate}}%*
- Avg R:R:          *{{printf "%.2f" .Summary.AvgRR}}*
- Profit Factor:    *{{if ne .Extended.ProfitFactor 0.0}}{{printf "%.2f" .Extended.ProfitFactor}}{{else}}-{{end}}*
- Expectancy:       *{{printf "%.2f" .Extended.Expectancy}}*
- Max Drawdown:     *{{printf "%.2f" .Extended.MaxDrawdown}} ({{printf "%.2f" .Extended.MaxDrawdownPct}}%)*

** Trade Distribution
| Outcome    | Count |
|------------+-------|
| Wins       | {{.Summary.Wins}} |
| Losses     | {{.Summary.Losses}} |
| Break Even | {{.Summary.BreakEven}} |
| Closed     | {{.Summary.ClosedCount}} |
{{define "groups"}}
| Key | Trades | Wins | Win % | P/L |
|-----+--------+------+-------+-----|
{{- range .}}
| {{.Key}} | {{.Count}} | {{.Wins}} | {{printf "%.1f" .WinRate}} | {{printf "%.2f" .PnL}} |
{{- end}}
{{end}}
** By Strategy
{{- template "groups" (top .Breakdown.Strategy)}}
** By Session
{{- template "groups" (top .Breakdown.Session)}}
** By Symbol
{{- template "groups" (top .Breakdown.Symbol)}}
** By Weekday
{{- template "groups" .Breakdown.Weekday}}
{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
