package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"account"},
	Short:   "Manage portfolios",
	Long: `List, create and edit portfolios. Trades are always recorded against
the portfolio selected with --portfolio.

Examples:
  tradejournal portfolio list
  tradejournal portfolio add --name "Prop Challenge" --currency usd --balance 100000
  tradejournal portfolio edit default --balance 25000`,
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolios",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioList,
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioAdd,
}

var portfolioEditCmd = &cobra.Command{
	Use:   "edit <portfolio-id>",
	Short: "Change a portfolio's name, currency or initial balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioEdit,
}

var (
	portfolioName     string
	portfolioCurrency string
	portfolioBalance  float64
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioAddCmd)
	portfolioCmd.AddCommand(portfolioEditCmd)

	for _, c := range []*cobra.Command{portfolioAddCmd, portfolioEditCmd} {
		c.Flags().StringVar(&portfolioName, "name", "", "portfolio name")
		c.Flags().StringVar(&portfolioCurrency, "currency", "USD", "account currency code")
		c.Flags().Float64Var(&portfolioBalance, "balance", 0, "initial balance (equity curve origin)")
	}
	_ = portfolioAddCmd.MarkFlagRequired("name")
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	accs, err := a.store.Accounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list portfolios: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tINITIAL BALANCE")
	for _, p := range accs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Currency, p.InitialBalance)
	}
	return w.Flush()
}

func runPortfolioAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.SaveAccount(cmd.Context(), journal.Portfolio{
		Name:           portfolioName,
		Currency:       portfolioCurrency,
		InitialBalance: portfolioBalance,
	})
	if err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created portfolio %s (%s)\n", p.ID, p.Name)
	return nil
}

func runPortfolioEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.Account(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = portfolioName
	}
	if flags.Changed("currency") {
		p.Currency = portfolioCurrency
	}
	if flags.Changed("balance") {
		p.InitialBalance = portfolioBalance
	}

	if _, err := a.store.SaveAccount(cmd.Context(), p); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated portfolio %s\n", p.ID)
	return nil
}
