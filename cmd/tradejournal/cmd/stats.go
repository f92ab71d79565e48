package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/report"
	"github.com/rustyeddy/tradejournal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics of the active portfolio",
	Long: `Print win rate, net P&L, average R:R, equity, risk figures and the
strategy/session/symbol/weekday breakdowns. Pending trades are excluded from
every figure except the equity curve.

Examples:
  tradejournal stats
  tradejournal stats --curve
  tradejournal stats --org > report.org`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var (
	statsOrg   bool
	statsCurve bool
	statsTop   int
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsOrg, "org", false, "write an Org-mode report instead")
	statsCmd.Flags().BoolVar(&statsCurve, "curve", false, "include the equity curve")
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "rows per breakdown (weekday always shows all)")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsOrg {
		return report.WriteOrg(out, report.Build(p, trades, time.Now()))
	}

	s := stats.Summarize(trades, p.InitialBalance)
	x := stats.ExtendedMetrics(trades, p.InitialBalance)

	fmt.Fprintf(out, "Portfolio: %s (%s)\n", p.Name, p.Currency)
	fmt.Fprintf(out, "  Trades:        %d (%d closed, %d pending)\n", s.TradeCount, s.ClosedCount, s.TradeCount-s.ClosedCount)
	fmt.Fprintf(out, "  Win Rate:      %.2f%% (%dW / %dL / %dBE)\n", s.WinRate, s.Wins, s.Losses, s.BreakEven)
	fmt.Fprintf(out, "  Net P/L:       %.2f\n", s.NetPnL)
	fmt.Fprintf(out, "  Avg R:R:       %.2f\n", s.AvgRR)
	fmt.Fprintf(out, "  Equity:        %.2f\n", s.Equity)
	fmt.Fprintf(out, "  Profit Factor: %.2f\n", x.ProfitFactor)
	fmt.Fprintf(out, "  Expectancy:    %.2f\n", x.Expectancy)
	fmt.Fprintf(out, "  Max Drawdown:  %.2f (%.2f%%)\n", x.MaxDrawdown, x.MaxDrawdownPct)

	b := stats.Breakdown(trades)
	for _, sec := range []struct {
		title  string
		groups []stats.Group
	}{
		{"By Strategy", stats.Top(b.Strategy, statsTop)},
		{"By Session", stats.Top(b.Session, statsTop)},
		{"By Symbol", stats.Top(b.Symbol, statsTop)},
		{"By Weekday", b.Weekday},
	} {
		if err := writeGroups(out, sec.title, sec.groups); err != nil {
			return err
		}
	}

	if statsCurve {
		fmt.Fprintln(out, "\nEquity Curve")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, pt := range stats.EquityCurve(trades, p.InitialBalance) {
			fmt.Fprintf(w, "  %s\t%.2f\n", pt.Date, pt.Balance)
		}
		return w.Flush()
	}
	return nil
}

func writeGroups(out io.Writer, title string, groups []stats.Group) error {
	fmt.Fprintf(out, "\n%s\n", title)
	if len(groups) == 0 {
		fmt.Fprintln(out, "  (no closed trades)")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  KEY\tTRADES\tWINS\tWIN %\tP/L")
	for _, g := range groups {
		fmt.Fprintf(w, "  %s\t%d\t%d\t%.1f\t%.2f\n", g.Key, g.Count, g.Wins, g.WinRate(), g.PnL)
	}
	return w.Flush()
}
