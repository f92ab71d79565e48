package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/calendar"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the monthly P&L calendar",
	Long: `Print a Sunday-first month grid with each traded day's P&L and a weekly
total beside every week that saw a trade. Days without trades show a dot.

Examples:
  tradejournal calendar
  tradejournal calendar --year 2024 --month 2
  tradejournal calendar --offset -1   # previous month`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

var (
	calendarYear   int
	calendarMonth  int
	calendarOffset int
)

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().IntVar(&calendarYear, "year", 0, "year (default current)")
	calendarCmd.Flags().IntVar(&calendarMonth, "month", 0, "month 1-12 (default current)")
	calendarCmd.Flags().IntVar(&calendarOffset, "offset", 0, "months to step from year/month")
}

const cellWidth = 11

func runCalendar(cmd *cobra.Command, args []string) error {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if calendarYear != 0 {
		year = calendarYear
	}
	if calendarMonth != 0 {
		if calendarMonth < 1 || calendarMonth > 12 {
			return fmt.Errorf("month must be 1-12")
		}
		month = time.Month(calendarMonth)
	}
	year, month = calendar.Step(year, month, calendarOffset)

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}

	g := calendar.Month(year, month, trades)
	fmt.Fprint(cmd.OutOrStdout(), renderGrid(g, p.Currency))
	return nil
}

func renderGrid(g calendar.Grid, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d  (%s %.2f)\n", g.Month, g.Year, currency, g.Total())
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		fmt.Fprintf(&b, "%-*s", cellWidth, d)
	}
	b.WriteString("| Week\n")

	for _, w := range g.Weeks {
		for _, c := range w.Cells {
			fmt.Fprintf(&b, "%-*s", cellWidth, cellText(c))
		}
		if s := w.Summary(); s != nil {
			fmt.Fprintf(&b, "| %+.2f (%d)", s.PnL, s.Trades)
		} else {
			b.WriteString("| -")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellText(d calendar.Day) string {
	switch {
	case d.Blank():
		return ""
	case d.PnL == nil:
		return fmt.Sprintf("%2d .", d.Day)
	default:
		return fmt.Sprintf("%2d %+.0f", d.Day, *d.PnL)
	}
}
