package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/internal/scheduler"
	"github.com/rustyeddy/tradejournal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journal HTTP API",
	Long: `Serve the JSON API for portfolios, trades, statistics, the P&L calendar
and the AI advisor. When backup.schedule is set, snapshots are uploaded on
that cron schedule while the server runs.

Example:
  tradejournal --config tradejournal.yaml serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:    port,
		Log:     a.log,
		Repo:    a.store,
		Advisor: a.advisor(),
		Rules:   a.cfg.Rules,
		DevMode: a.cfg.Server.DevMode,
	})

	var sched *scheduler.Scheduler
	if a.cfg.Backup.Enabled && a.cfg.Backup.Schedule != "" {
		svc, err := a.backupService(cmd.Context())
		if err != nil {
			return err
		}
		sched = scheduler.New(a.log)
		if err := sched.AddJob(a.cfg.Backup.Schedule, svc); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
