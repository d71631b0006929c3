package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nerrad567/harbour/internal/boat"
	"github.com/nerrad567/harbour/internal/infrastructure/mqtt"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print sail events published by any harbour",
		Long: `Subscribe to harbour/voyage/+/sail and print every sail event until
interrupted. Requires mqtt.enabled in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), root.configPath, cmd.OutOrStdout())
		},
	}
}

func runWatch(ctx context.Context, configPath string, out io.Writer) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("watch needs MQTT: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	client.SetLogger(log)

	topic := mqtt.Topics{}.AllVoyageSails()
	if err := client.Subscribe(topic, client.QoS(), sailPrinter(out)); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	log.Info("watching sail events", "topic", topic)

	<-ctx.Done()
	return nil
}

// sailPrinter decodes sail events and writes one line per event.
func sailPrinter(out io.Writer) mqtt.MessageHandler {
	var mu sync.Mutex

	return func(topic string, payload []byte) error {
		var event boat.SailEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decoding sail event on %s: %w", topic, err)
		}

		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintf(out, "%s  %-16s sail #%d  %s\n",
			event.SailedAt.Format("2006-01-02T15:04:05.000Z07:00"), event.Boat, event.Sequence, event.ID)
		return err
	}
}
