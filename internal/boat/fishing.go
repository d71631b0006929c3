package boat

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// defaultBoatName is used when FishingBoatOptions.Name is empty.
const defaultBoatName = "fishing-boat"

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
}

// FishingBoatOptions configures a FishingBoat.
type FishingBoatOptions struct {
	// Name identifies the boat in events and logs. Defaults to "fishing-boat".
	Name string

	// Recorder receives a SailEvent for every sail (optional).
	Recorder SailRecorder

	// Logger receives an info entry for every sail (optional).
	Logger Logger
}

// FishingBoat is a boat that can only sail.
//
// It knows nothing about rowing, captains or adapters.
type FishingBoat struct {
	name     string
	recorder SailRecorder
	logger   Logger

	sails atomic.Uint64
	now   func() time.Time
}

// NewFishingBoat creates a fishing boat from the given options.
func NewFishingBoat(opts FishingBoatOptions) *FishingBoat {
	name := opts.Name
	if name == "" {
		name = defaultBoatName
	}
	return &FishingBoat{
		name:     name,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// Sail propels the boat.
//
// The sail itself always happens: the counter is incremented and the sail is
// logged before the recorder runs. If a recorder is configured, its error is
// returned as-is.
//
// Returns:
//   - error: nil, or the error returned by the configured SailRecorder
func (b *FishingBoat) Sail() error {
	seq := b.sails.Add(1)

	if b.logger != nil {
		b.logger.Info("fishing boat is sailing", "boat", b.name, "sequence", seq)
	}

	if b.recorder == nil {
		return nil
	}

	return b.recorder.RecordSail(SailEvent{
		ID:       uuid.New(),
		Boat:     b.name,
		Sequence: seq,
		SailedAt: b.now().UTC(),
	})
}

// Name returns the boat's name.
func (b *FishingBoat) Name() string {
	return b.name
}

// Sails returns how many times the boat has sailed.
func (b *FishingBoat) Sails() uint64 {
	return b.sails.Load()
}
