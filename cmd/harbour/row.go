package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type rowOptions struct {
	strokes  int
	boatName string
}

func newRowCmd(root *rootOptions) *cobra.Command {
	opts := &rowOptions{}

	cmd := &cobra.Command{
		Use:   "row",
		Short: "Order the captain to row",
		Long: `Order the captain to row --strokes times. Each row is a sail of the
fishing boat. The first failure stops the voyage and is returned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("strokes") && opts.strokes < 1 {
				return errors.New("--strokes must be at least 1")
			}
			return runRow(cmd.Context(), root.configPath, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.strokes, "strokes", "n", 0, "number of row orders (default voyage.strokes)")
	cmd.Flags().StringVarP(&opts.boatName, "boat", "b", "", "name of the fishing boat (default voyage.boat_name)")

	return cmd
}

// runRow rows the configured number of strokes and prints a summary.
func runRow(ctx context.Context, configPath string, opts *rowOptions, out io.Writer) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if opts.boatName != "" {
		cfg.Voyage.BoatName = opts.boatName
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--boat: %w", err)
		}
	}

	strokes := opts.strokes
	if strokes == 0 {
		strokes = cfg.Voyage.Strokes
	}

	h, err := openHarbour(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer h.Close()

	for i := 1; i <= strokes; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("voyage interrupted after %d of %d strokes: %w", i-1, strokes, err)
		}
		if err := h.row(ctx); err != nil {
			return fmt.Errorf("stroke %d of %d: %w", i, strokes, err)
		}
	}

	fishingBoat := h.adapter.FishingBoat()
	log.Info("voyage complete",
		"boat", fishingBoat.Name(),
		"strokes", strokes,
		"sails", fishingBoat.Sails(),
	)
	fmt.Fprintf(out, "%s sailed %d times\n", fishingBoat.Name(), fishingBoat.Sails())

	return nil
}
