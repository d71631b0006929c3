// Package boat lets a captain who can only row use a boat that can only sail.
//
// The package is a textbook object adapter:
//
//	Captain ──Row()──▶ RowingBoat (interface)
//	                        ▲
//	                        │ implements
//	               FishingBoatAdapter ──Sail()──▶ FishingBoat
//
// The Captain is written against RowingBoat and never sees a FishingBoat.
// FishingBoatAdapter owns exactly one FishingBoat and turns each Row() into
// exactly one Sail(). Nothing is buffered, batched or reordered.
//
// # Recording
//
// A FishingBoat can be given a SailRecorder. Every sail produces a SailEvent
// that is handed to the recorder, and the recorder's error is what Sail()
// returns. That error travels back through the adapter and the captain
// unchanged, so callers can match it with errors.Is.
//
// # Thread Safety
//
//   - FishingBoat.Sail is safe for concurrent use; the sail counter is atomic.
//   - Captain and FishingBoatAdapter are not. Callers sharing a Captain must
//     serialise access themselves (see internal/api for an example).
//
// # Usage
//
//	adapter := boat.NewFishingBoatAdapter(boat.FishingBoatOptions{Name: "pequod"})
//	captain := boat.NewCaptain(adapter)
//	if err := captain.Row(); err != nil {
//	    return err
//	}
package boat
