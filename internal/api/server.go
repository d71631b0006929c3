package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/harbour/internal/audit"
	"github.com/nerrad567/harbour/internal/infrastructure/config"
	"github.com/nerrad567/harbour/internal/infrastructure/logging"
	"github.com/nerrad567/harbour/internal/logbook"
	"github.com/nerrad567/harbour/internal/metrics"
	"github.com/nerrad567/harbour/internal/tower"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// Rower is what the API needs from a captain.
// *boat.Captain satisfies it.
type Rower interface {
	Row() error
	HasRowingBoat() bool
}

// Deps holds the dependencies of the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Captain Rower

	// BoatName labels audited row orders.
	BoatName string

	// Audit records every row order and backs GET /audit. Optional.
	Audit audit.Repository

	// Logbook backs GET /logbook/{boat}. Optional.
	Logbook logbook.Repository

	// Metrics backs GET /metrics and counts row orders. Optional.
	Metrics *metrics.Collector

	// Tower defaults to tower.GetInstance().
	Tower tower.IvoryTower

	// Hub serves the live sail feed at GET /ws. When nil, New creates one
	// from Config.WebSocket; it only sees sails if it is also a recorder
	// on the captain's boat.
	Hub *Hub

	Version string
}

// Server is the HTTP API server.
//
// It is created with New, started with Start and stopped with Close.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	captain  Rower
	boatName string
	audit    audit.Repository
	logbook  logbook.Repository
	metrics  *metrics.Collector
	tower    tower.IvoryTower
	hub      *Hub
	version  string

	// rowMu serialises row orders.
	rowMu sync.Mutex

	server   *http.Server
	listener net.Listener
}

// New creates an API server. It does not listen until Start is called.
//
// Returns:
//   - *Server: Configured server
//   - error: If the logger or captain is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Captain == nil {
		return nil, errors.New("captain is required")
	}

	t := deps.Tower
	if t == nil {
		t = tower.GetInstance()
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.Config.WebSocket, deps.Logger)
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		captain:  deps.Captain,
		boatName: deps.BoatName,
		audit:    deps.Audit,
		logbook:  deps.Logbook,
		metrics:  deps.Metrics,
		tower:    t,
		hub:      hub,
		version:  deps.Version,
	}, nil
}

// Start binds the listener and serves in the background.
//
// Binding happens before Start returns, so an address already in use is
// reported here rather than logged later.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close waits up to 10 seconds for in-flight requests, then stops the server
// and disconnects every WebSocket client.
//
// Returns:
//   - error: If in-flight requests did not finish in time
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)
	// Shutdown does not track hijacked connections.
	s.hub.Close()
	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}
