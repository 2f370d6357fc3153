package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ryanlattanzi/algo-trading/internal/api"
	"github.com/ryanlattanzi/algo-trading/internal/infra/store"
	backtestsvc "github.com/ryanlattanzi/algo-trading/internal/service/backtest"
)

const serviceVersion = "1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Serves health probes, Prometheus metrics, the backtest endpoint, and the per-ticker signal state endpoint.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	routerCfg := &api.Config{
		Runner:  backtestsvc.NewRunner(stores.Bars),
		States:  stores.States,
		Version: serviceVersion,
	}
	if pool := stores.DB(); pool != nil {
		routerCfg.DB = pool
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
