package boat

import "errors"

// Domain-specific errors for boat operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoRowingBoat is returned when a captain is asked to row with no boat bound.
	ErrNoRowingBoat = errors.New("boat: captain has no rowing boat")

	// ErrNilFishingBoat is returned when a nil fishing boat is injected into an adapter.
	ErrNilFishingBoat = errors.New("boat: fishing boat cannot be nil")
)
