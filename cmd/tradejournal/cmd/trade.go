package cmd

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/advisor"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/stats"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record, inspect and export trades",
	Long: `Record and query trades of the active portfolio.

Subcommands:
  add     - Record a trade (or edit one with --id)
  list    - List trades, newest first
  show    - Print one trade as an Org-mode block
  delete  - Permanently delete a trade
  export  - Write trades as CSV or Org-mode
  size    - Lot size for a planned trade at a given risk

Examples:
  tradejournal trade add --date 2024-01-15 --symbol eurusd --side Long \
      --entry 1.0950 --sl 1.0930 --tp 1.0990 --result Win --pnl 400
  tradejournal trade list --result Loss
  tradejournal trade export --format org -o journal.org
  tradejournal trade size --risk-pct 0.01 --entry 1.0950 --sl 1.0930`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeAdd,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades of the active portfolio",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Print a trade as an Org-mode block",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var tradeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV or Org-mode",
	Args:  cobra.NoArgs,
	RunE:  runTradeExport,
}

var tradeSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Lot size that risks a share of current equity",
	Args:  cobra.NoArgs,
	RunE:  runTradeSize,
}

var (
	tradeIn         journal.Trade
	tradeSide       string
	tradeSession    string
	tradeResult     string
	tradeEntryImage string
	tradeExitImage  string

	tradeListResult string
	exportFormat    string
	exportOutput    string

	sizeRiskPct float64
	sizeEntry   float64
	sizeStop    float64
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd, tradeListCmd, tradeShowCmd, tradeDeleteCmd, tradeExportCmd, tradeSizeCmd)

	f := tradeAddCmd.Flags()
	f.StringVar(&tradeIn.ID, "id", "", "existing trade id to overwrite")
	f.StringVar(&tradeIn.Date, "date", "", "trade date YYYY-MM-DD (default today)")
	f.StringVar(&tradeIn.Symbol, "symbol", "", "instrument symbol")
	f.StringVar(&tradeIn.TimeFrame, "timeframe", "15m", "chart timeframe")
	f.StringVar(&tradeSession, "session", string(journal.SessionLondon), "London, New York, London Close or Out of Session")
	f.StringVar(&tradeIn.EntryType, "entry-type", "", "strategy / entry model tag")
	f.StringVar(&tradeSide, "side", string(journal.SideLong), "Long or Short")
	f.Float64Var(&tradeIn.LotSize, "lots", 0, "lot size")
	f.Float64Var(&tradeIn.Entry, "entry", 0, "entry price")
	f.Float64Var(&tradeIn.StopLoss, "sl", 0, "stop-loss price")
	f.Float64Var(&tradeIn.TakeProfit, "tp", 0, "take-profit price")
	f.StringVar(&tradeResult, "result", string(journal.ResultPending), "Win, Loss, Break Even or Pending")
	f.Float64Var(&tradeIn.PnL, "pnl", 0, "realised profit or loss")
	f.StringVar(&tradeIn.Notes, "notes", "", "journal notes")
	f.StringVar(&tradeEntryImage, "entry-image", "", "entry screenshot file")
	f.StringVar(&tradeExitImage, "exit-image", "", "exit screenshot file")
	_ = tradeAddCmd.MarkFlagRequired("symbol")

	tradeListCmd.Flags().StringVar(&tradeListResult, "result", "", "only trades with this result")

	tradeExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or org")
	tradeExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	tradeSizeCmd.Flags().Float64Var(&sizeRiskPct, "risk-pct", 0.01, "share of equity to risk (0.01 = 1%)")
	tradeSizeCmd.Flags().Float64Var(&sizeEntry, "entry", 0, "entry price")
	tradeSizeCmd.Flags().Float64Var(&sizeStop, "sl", 0, "stop-loss price")
	_ = tradeSizeCmd.MarkFlagRequired("entry")
	_ = tradeSizeCmd.MarkFlagRequired("sl")
}

// imageDataURL reads a screenshot file into a data URL.
func imageDataURL(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "application/octet-stream"
	}
	return advisor.DataURL(mt, data), nil
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	t := tradeIn

	var err error
	if t.Side, err = journal.ParseSide(tradeSide); err != nil {
		return err
	}
	if t.Session, err = journal.ParseSession(tradeSession); err != nil {
		return err
	}
	if t.Result, err = journal.ParseResult(tradeResult); err != nil {
		return err
	}
	if t.Date == "" {
		t.Date = time.Now().Format(journal.DateLayout)
	}
	if _, err := time.Parse(journal.DateLayout, t.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	if t.EntryImage, err = imageDataURL(tradeEntryImage); err != nil {
		return fmt.Errorf("entry image: %w", err)
	}
	if t.ExitImage, err = imageDataURL(tradeExitImage); err != nil {
		return fmt.Errorf("exit image: %w", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.activePortfolio(cmd.Context())
	if err != nil {
		return err
	}
	t.AccountID = p.ID

	saved, err := a.store.SaveTrade(cmd.Context(), t)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Saved trade %s %s %s RR %.2f\n", saved.ID, saved.Date, saved.Symbol, saved.RR)

	if !a.cfg.Rules.Enabled() {
		return nil
	}
	trades, err := a.store.Trades(cmd.Context(), p.ID)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	d := stats.Review(a.cfg.Rules, p, trades, saved)
	for _, v := range d.Violations {
		fmt.Fprintf(out, "⚠ %s: %s\n", v.Code, v.Msg)
	}
	return nil
}

func runTradeSize(cmd *cobra.Command, args []string) error {
	if sizeRiskPct <= 0 || sizeRiskPct >= 1 {
		return fmt.Errorf("risk-pct must be between 0 and 1")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}
	equity := stats.Summarize(trades, p.InitialBalance).Equity

	s := risk.Size(risk.SizeInputs{Equity: equity, RiskPct: sizeRiskPct, Entry: sizeEntry, Stop: sizeStop})
	if s.LotSize == 0 {
		return fmt.Errorf("entry and stop must differ")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Equity:        %.2f %s\n", equity, p.Currency)
	fmt.Fprintf(out, "Risk:          %.2f (%.2f%%)\n", s.RiskAmount, sizeRiskPct*100)
	fmt.Fprintf(out, "Stop distance: %g\n", s.StopDistance)
	fmt.Fprintf(out, "Lot size:      %.2f\n", s.LotSize)
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	var filter *journal.Result
	if tradeListResult != "" {
		r, err := journal.ParseResult(tradeListResult)
		if err != nil {
			return err
		}
		filter = &r
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	_, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSYMBOL\tSIDE\tSESSION\tSTRATEGY\tRR\tRESULT\tPNL")
	for _, t := range journal.FilterByResult(trades, filter) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%.2f\n",
			t.ID, t.Date, t.Symbol, t.Side, t.Session, t.EntryType, t.RR, t.Result, t.PnL)
	}
	return w.Flush()
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.Trade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.store.Trade(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	if err := a.store.DeleteTrade(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %s\n", args[0])
	return nil
}

func runTradeExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "org" {
		return fmt.Errorf("unknown format %q (want csv or org)", exportFormat)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	_, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "org":
		_, err = fmt.Fprintln(w, journal.FormatTradesOrg(trades))
	default:
		err = journal.WriteTradesCSV(w, trades)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
