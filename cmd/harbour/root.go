package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/harbour/internal/infrastructure/config"
	"github.com/nerrad567/harbour/internal/infrastructure/logging"
)

// defaultConfigPath is used when neither --config nor HARBOUR_CONFIG is set.
const defaultConfigPath = "configs/harbour.yaml"

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "harbour",
		Short: "Give a rowing captain a fishing boat and send it to sea",
		Long: `harbour wires a captain who can only row to a fishing boat that can
only sail. Every row order becomes a sail, recorded in the logbook and
published to the configured telemetry backends.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate(`{{printf "harbour version %s\n" .Version}}`)
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", getConfigPath(),
		"path to the YAML configuration file (env HARBOUR_CONFIG)")

	cmd.AddCommand(
		newRowCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newTowerCmd(),
		newVersionCmd(),
	)

	return cmd
}

// getConfigPath returns HARBOUR_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("HARBOUR_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads the configuration and builds the logger from it.
// A missing file falls back to defaults.
func loadConfig(path string) (*config.Config, *logging.Logger, error) {
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	if found {
		log.Info("configuration loaded", "path", path)
	} else {
		log.Info("configuration file not found, using defaults", "path", path)
	}

	return cfg, log, nil
}
