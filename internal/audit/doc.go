// Package audit keeps a trail of row orders given to the captain.
//
// The logbook records what the boat did; the audit trail records who asked.
// Every order from the CLI or the HTTP API is stored with its outcome, so a
// failed or refused order (no rowing boat) is visible even though no sail
// happened.
package audit
