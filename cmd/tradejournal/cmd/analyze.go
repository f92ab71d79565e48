package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/advisor"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask the AI mentor about your trading",
	Long: `Send journal data to the configured model. Needs an API key in
advisor.api_key or the GEMINI_API_KEY environment variable.

Subcommands:
  trade     - Critique one trade, screenshots included
  patterns  - Find behavioural themes in the notes of closed trades
  search    - Market-intelligence search with cited sources

Examples:
  tradejournal analyze trade 01HQ3Z...
  tradejournal analyze patterns
  tradejournal analyze search "ECB rate decision impact on EURUSD"`,
}

var analyzeTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Critique a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeTrade,
}

var analyzePatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Find psychological patterns across the active portfolio",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzePatterns,
}

var analyzeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search market news and analysis",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyzeSearch,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeTradeCmd, analyzePatternsCmd, analyzeSearchCmd)
}

func runAnalyzeTrade(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.Trade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), a.advisor().CritiqueTrade(cmd.Context(), t))
	return nil
}

func runAnalyzePatterns(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	_, trades, err := a.activeTrades(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	themes := a.advisor().AnalyzePatterns(cmd.Context(), trades)
	if len(themes) == 0 {
		fmt.Fprintln(out, "No patterns found. Closed trades need notes to analyse.")
		return nil
	}

	for _, t := range themes {
		fmt.Fprintf(out, "* %s  (%dW/%dL, P/L %.2f)\n", t.Theme, t.WinCount, t.LossCount, t.TotalPnL)
		fmt.Fprintf(out, "  %s\n", t.Description)
		fmt.Fprintf(out, "  → %s\n\n", t.Recommendation)
	}
	if leak := advisor.MainLeak(themes); leak != nil {
		fmt.Fprintf(out, "Main leak: %s\n", leak.Theme)
	}
	return nil
}

func runAnalyzeSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.advisor().SearchMarket(cmd.Context(), strings.Join(args, " "))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Text)
	if len(res.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, s := range res.Sources {
			fmt.Fprintf(out, "  - %s <%s>\n", s.Title, s.URI)
		}
	}
	return nil
}
