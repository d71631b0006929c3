// Package metrics exposes harbour counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/harbour/internal/boat"
)

const namespace = "harbour"

// Row results used as the "result" label on harbour_row_requests_total.
const (
	ResultOK      = "ok"
	ResultUnbound = "no_rowing_boat"
	ResultFailed  = "error"
)

// Collector holds the harbour metrics in its own registry.
type Collector struct {
	registry    *prometheus.Registry
	sails       *prometheus.CounterVec
	rowRequests *prometheus.CounterVec
	towerInfo   *prometheus.GaugeVec
}

var _ boat.SailRecorder = (*Collector)(nil)

// NewCollector registers the harbour metrics plus the Go runtime and
// process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sails_total",
			Help:      "Total number of sails made by fishing boats.",
		}, []string{"boat"}),
		rowRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_requests_total",
			Help:      "Total number of row orders given by the captain, by result.",
		}, []string{"result"}),
		towerInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tower_info",
			Help:      "Identity of the ivory tower instance. Always 1.",
		}, []string{"id"}),
	}

	c.registry.MustRegister(
		c.sails,
		c.rowRequests,
		c.towerInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// RecordSail implements boat.SailRecorder. It never fails.
func (c *Collector) RecordSail(event boat.SailEvent) error {
	c.sails.WithLabelValues(event.Boat).Inc()
	return nil
}

// ObserveRow counts a row order by its outcome.
func (c *Collector) ObserveRow(err error) {
	c.rowRequests.WithLabelValues(RowResult(err)).Inc()
}

// SetTower publishes the tower identity.
func (c *Collector) SetTower(id string) {
	c.towerInfo.Reset()
	c.towerInfo.WithLabelValues(id).Set(1)
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RowResult maps the error from Captain.Row to a result label.
func RowResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, boat.ErrNoRowingBoat):
		return ResultUnbound
	default:
		return ResultFailed
	}
}
