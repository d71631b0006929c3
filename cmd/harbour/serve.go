package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/harbour/internal/api"
)

// startupHealthTimeout bounds the backend check made before serving.
const startupHealthTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the harbour HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root.configPath)
		},
	}
}

// runServe wires the harbour, starts the API and blocks until ctx is done.
func runServe(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log.Info("starting harbour",
		"version", version,
		"commit", commit,
		"build_date", date,
		"harbour_id", cfg.Harbour.ID,
	)

	h, err := openHarbour(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer h.Close()

	healthCtx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	if err := h.healthCheck(healthCtx); err != nil {
		log.Warn("backend health check failed", "error", err)
	}
	cancel()

	deps := api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Captain:  h.captain,
		BoatName: cfg.Voyage.BoatName,
		Metrics:  h.metrics,
		Hub:      h.hub,
		Version:  version,
	}
	// Assigned only when set so the interfaces stay nil otherwise.
	if h.logbook != nil {
		deps.Logbook = h.logbook
	}
	if h.audit != nil {
		deps.Audit = h.audit
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("harbour started", "address", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}
