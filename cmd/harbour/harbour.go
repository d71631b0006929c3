package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/harbour/internal/api"
	"github.com/nerrad567/harbour/internal/audit"
	"github.com/nerrad567/harbour/internal/boat"
	"github.com/nerrad567/harbour/internal/infrastructure/config"
	"github.com/nerrad567/harbour/internal/infrastructure/database"
	"github.com/nerrad567/harbour/internal/infrastructure/influxdb"
	"github.com/nerrad567/harbour/internal/infrastructure/logging"
	"github.com/nerrad567/harbour/internal/infrastructure/mqtt"
	"github.com/nerrad567/harbour/internal/logbook"
	"github.com/nerrad567/harbour/internal/metrics"
	"github.com/nerrad567/harbour/internal/tower"
	"github.com/nerrad567/harbour/migrations"
)

// harbour is a captain rowing a fishing boat adapter, with every enabled
// sail recorder attached.
type harbour struct {
	cfg *config.Config
	log *logging.Logger

	captain *boat.Captain
	adapter *boat.FishingBoatAdapter

	db      *database.DB
	logbook *logbook.SQLiteRepository
	audit   *audit.SQLiteRepository
	mqtt    *mqtt.Client
	influx  *influxdb.Client
	metrics *metrics.Collector
	hub     *api.Hub

	// closers run in reverse order on Close.
	closers []func()
}

// openHarbour connects every enabled backend and builds the captain.
//
// Parameters:
//   - ctx: Bounds the database ping and InfluxDB ping
//   - cfg: Loaded configuration
//   - log: Configured logger
//
// Returns:
//   - *harbour: Ready to row; Close must be called
//   - error: If an enabled backend cannot be reached
func openHarbour(ctx context.Context, cfg *config.Config, log *logging.Logger) (*harbour, error) {
	h := &harbour{cfg: cfg, log: log}
	ready := false
	defer func() {
		if !ready {
			h.Close()
		}
	}()

	t := tower.GetInstance()
	h.metrics = metrics.NewCollector()
	h.metrics.SetTower(t.ID().String())

	h.hub = api.NewHub(cfg.API.WebSocket, log)
	h.onClose(h.hub.Close)

	recorders := boat.MultiRecorder{h.metrics, h.hub}

	if cfg.Database.Enabled {
		if err := h.openLogbook(ctx); err != nil {
			return nil, err
		}
		recorders = append(recorders, h.logbook)
	} else {
		log.Info("logbook disabled")
	}

	if err := h.connectMQTT(); err != nil {
		return nil, err
	}
	if h.mqtt != nil {
		recorders = append(recorders, &mqttSailPublisher{client: h.mqtt, qos: h.mqtt.QoS()})
	}

	if err := h.connectInfluxDB(ctx); err != nil {
		return nil, err
	}
	if h.influx != nil {
		recorders = append(recorders, influxSailWriter{client: h.influx})
	}

	h.adapter = boat.NewFishingBoatAdapter(boat.FishingBoatOptions{
		Name:     cfg.Voyage.BoatName,
		Recorder: recorders,
		Logger:   log,
	})
	h.captain = boat.NewCaptain(h.adapter)

	log.Info("captain has a rowing boat",
		"boat", h.adapter.FishingBoat().Name(),
		"recorders", len(recorders),
		"tower_id", t.ID(),
	)

	ready = true
	return h, nil
}

func (h *harbour) openLogbook(ctx context.Context) error {
	db, err := database.Open(ctx, database.Config{
		Path:        h.cfg.Database.Path,
		WALMode:     h.cfg.Database.WALMode,
		BusyTimeout: h.cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	h.db = db
	h.onClose(func() {
		h.log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			h.log.Error("error closing database", "error", closeErr)
		}
	})

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	h.logbook = logbook.NewSQLiteRepository(db.DB)
	h.audit = audit.NewSQLiteRepository(db.DB)
	h.log.Info("logbook ready", "path", db.Path())
	return nil
}

func (h *harbour) connectMQTT() error {
	client, err := mqtt.Connect(h.cfg.MQTT)
	if errors.Is(err, mqtt.ErrDisabled) {
		h.log.Info("MQTT disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}

	h.mqtt = client
	h.onClose(func() {
		h.log.Info("disconnecting from MQTT")
		if closeErr := client.Close(); closeErr != nil {
			h.log.Error("error closing MQTT", "error", closeErr)
		}
	})

	client.SetLogger(h.log)
	client.SetOnConnect(func() {
		h.log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		h.log.Warn("MQTT disconnected", "error", err)
	})

	h.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", h.cfg.MQTT.Broker.Host, h.cfg.MQTT.Broker.Port),
		"client_id", h.cfg.MQTT.Broker.ClientID,
	)
	return nil
}

func (h *harbour) connectInfluxDB(ctx context.Context) error {
	client, err := influxdb.Connect(ctx, h.cfg.InfluxDB)
	if errors.Is(err, influxdb.ErrDisabled) {
		h.log.Info("InfluxDB disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	h.influx = client
	h.onClose(func() {
		h.log.Info("closing InfluxDB connection")
		if closeErr := client.Close(); closeErr != nil {
			h.log.Error("error closing InfluxDB", "error", closeErr)
		}
	})

	client.SetOnError(func(err error) {
		h.log.Error("InfluxDB write error", "error", err)
	})

	h.log.Info("InfluxDB connected",
		"url", h.cfg.InfluxDB.URL,
		"org", h.cfg.InfluxDB.Org,
		"bucket", h.cfg.InfluxDB.Bucket,
	)
	return nil
}

func (h *harbour) onClose(fn func()) {
	h.closers = append(h.closers, fn)
}

// Close releases backends in reverse order of opening. Safe to call twice.
func (h *harbour) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}
	h.closers = nil
}

// row orders the captain to row once, counts the outcome and audits it.
func (h *harbour) row(ctx context.Context) error {
	err := h.captain.Row()
	h.metrics.ObserveRow(err)

	if h.audit != nil {
		order := &audit.Order{
			Source: audit.SourceCLI,
			Boat:   h.cfg.Voyage.BoatName,
			Result: metrics.RowResult(err),
		}
		if err != nil {
			order.Error = err.Error()
		}
		if auditErr := h.audit.Create(ctx, order); auditErr != nil {
			h.log.Warn("recording row order failed", "error", auditErr)
		}
	}

	return err
}

// healthCheck verifies every connected backend.
//
// Returns:
//   - error: First failure, or nil if all healthy
func (h *harbour) healthCheck(ctx context.Context) error {
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if h.mqtt != nil {
		if err := h.mqtt.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if h.influx != nil {
		if err := h.influx.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
