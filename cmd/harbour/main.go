// Harbour puts a captain to sea.
//
// The captain only knows how to row. The boat it is given is a fishing boat
// that only knows how to sail, wrapped in an adapter so that every row order
// becomes a sail. Sails are recorded in a SQLite logbook, published over MQTT,
// written to InfluxDB and counted in Prometheus metrics, each as enabled in
// the configuration file.
//
//	harbour row --strokes 3 --boat pequod
//	harbour serve
//	harbour watch
//	harbour tower
//	harbour version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2026-01-18"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}
