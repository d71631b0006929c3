// Package api implements harbour's HTTP control surface.
//
// Routes live under /api/v1:
//
//	GET  /health          liveness and version
//	POST /row             give the captain one row order
//	GET  /tower           identity of the ivory tower
//	GET  /logbook/{boat}  recent sails of a boat (needs a logbook)
//	GET  /audit           row orders and their outcome (needs an audit trail)
//	GET  /metrics         Prometheus exposition (needs a collector)
//
// Row orders are serialised: concurrent POST /row requests reach the captain
// one at a time, so sail sequences stay contiguous.
//
// The API has no authentication and is meant to bind to loopback.
package api
