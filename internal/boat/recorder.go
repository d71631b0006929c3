package boat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SailEvent describes a single Sail() of a FishingBoat.
type SailEvent struct {
	// ID uniquely identifies this sail.
	ID uuid.UUID `json:"id"`

	// Boat is the name of the boat that sailed.
	Boat string `json:"boat"`

	// Sequence is the 1-based count of sails made by this boat.
	Sequence uint64 `json:"sequence"`

	// SailedAt is when the sail happened (UTC).
	SailedAt time.Time `json:"sailed_at"`
}

// SailRecorder receives every SailEvent a FishingBoat produces.
//
// RecordSail is called synchronously from Sail(). The error it returns is
// returned by Sail() unchanged.
type SailRecorder interface {
	RecordSail(event SailEvent) error
}

// SailRecorderFunc adapts an ordinary function to the SailRecorder interface.
type SailRecorderFunc func(event SailEvent) error

// RecordSail calls f(event).
func (f SailRecorderFunc) RecordSail(event SailEvent) error {
	return f(event)
}

// MultiRecorder fans a SailEvent out to several recorders in order.
//
// Every recorder is called even if an earlier one fails; the failures are
// combined with errors.Join. Nil entries are skipped.
type MultiRecorder []SailRecorder

// RecordSail implements SailRecorder.
func (m MultiRecorder) RecordSail(event SailEvent) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordSail(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
