package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/advisor"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A personal trading journal with performance analytics",
	Long: `Tradejournal records trades against one or more portfolios and derives
performance figures from them.

It provides tools for:
  - Recording, editing and exporting trades (CSV, Org-mode)
  - Win rate, R:R, equity curve and strategy/session/symbol/weekday breakdowns
  - A monthly P&L calendar
  - Model-backed trade critique, behavioural pattern analysis and market search
  - A JSON HTTP API and scheduled backups to S3-compatible storage`,
	SilenceUsage: true,
}

var (
	cfgFile     string
	portfolioID string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVarP(&portfolioID, "portfolio", "p", journal.DefaultPortfolio().ID, "active portfolio id")
}

// app is what every command works with: configuration, logger and an open
// store.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *journal.Store
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	store, err := journal.Open(ctx, cfg.Store.Options(), log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) Close() error { return a.store.Close() }

// activePortfolio resolves the --portfolio flag.
func (a *app) activePortfolio(ctx context.Context) (journal.Portfolio, error) {
	p, err := a.store.Account(ctx, portfolioID)
	if err != nil {
		return journal.Portfolio{}, fmt.Errorf("portfolio: %w", err)
	}
	return p, nil
}

// activeTrades loads the active portfolio and its trades, newest first.
func (a *app) activeTrades(ctx context.Context) (journal.Portfolio, []journal.Trade, error) {
	p, err := a.activePortfolio(ctx)
	if err != nil {
		return journal.Portfolio{}, nil, err
	}
	trades, err := a.store.Trades(ctx, p.ID)
	if err != nil {
		return journal.Portfolio{}, nil, fmt.Errorf("load trades: %w", err)
	}
	return p, trades, nil
}

func (a *app) advisor() *advisor.Advisor {
	model := advisor.NewGemini(a.cfg.Advisor.APIKey, a.cfg.Advisor.Endpoint, a.log)
	return advisor.New(model, a.cfg.Advisor.Models, a.cfg.Advisor.ThinkingBudget, a.log)
}
