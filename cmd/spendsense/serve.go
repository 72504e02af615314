package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/web"
	"github.com/VictorGoic0/SpendSense-sub000/internal/worker"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the SpendSense API server.

Examples:
  spendsense serve
  spendsense serve --addr :9090
  SPENDSENSE_WORKER_ENABLED=true spendsense serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	orchestrator, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	aggregator := a.aggregator()
	personas := a.personaService()

	if a.cfg.Worker.Enabled {
		refresher := worker.NewRefresher(a.store, aggregator, personas, a.cfg.Worker.CronSpec, a.logger)
		if err := refresher.Start(); err != nil {
			return fmt.Errorf("start batch refresh: %w", err)
		}
		defer refresher.Stop()
	}

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	a.logger.Info("starting server", zap.String("addr", addr))
	server := web.NewServer(a.store, orchestrator, aggregator, personas, a.logger)
	return server.Run(addr)
}
