package boat

// FishingBoatAdapter lets a FishingBoat be used wherever a RowingBoat is expected.
//
// It owns exactly one FishingBoat for its whole lifetime; the binding is set
// at construction and cannot be changed.
type FishingBoatAdapter struct {
	boat *FishingBoat
}

// Compile-time check that FishingBoatAdapter satisfies RowingBoat.
var _ RowingBoat = (*FishingBoatAdapter)(nil)

// NewFishingBoatAdapter creates an adapter around a new FishingBoat built from opts.
//
// Each call builds its own boat, so two adapters never share one.
func NewFishingBoatAdapter(opts FishingBoatOptions) *FishingBoatAdapter {
	return &FishingBoatAdapter{boat: NewFishingBoat(opts)}
}

// NewFishingBoatAdapterFor creates an adapter around an existing FishingBoat.
//
// The caller keeps its reference to boat; injecting the same boat into
// several adapters shares it between them.
//
// Returns:
//   - *FishingBoatAdapter: Adapter bound to boat
//   - error: ErrNilFishingBoat if boat is nil
func NewFishingBoatAdapterFor(boat *FishingBoat) (*FishingBoatAdapter, error) {
	if boat == nil {
		return nil, ErrNilFishingBoat
	}
	return &FishingBoatAdapter{boat: boat}, nil
}

// Row implements RowingBoat by sailing the fishing boat once.
//
// A nil or zero-value adapter has no boat to sail and fails with
// ErrNoRowingBoat.
//
// Returns:
//   - error: ErrNoRowingBoat if no boat is adapted, otherwise Sail's error
func (a *FishingBoatAdapter) Row() error {
	if a == nil || a.boat == nil {
		return ErrNoRowingBoat
	}
	return a.boat.Sail()
}

// FishingBoat returns the adapted boat, or nil for a nil adapter.
func (a *FishingBoatAdapter) FishingBoat() *FishingBoat {
	if a == nil {
		return nil
	}
	return a.boat
}
