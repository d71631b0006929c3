package boat

// RowingBoat is the capability a Captain is able to operate.
//
// Row propels the boat by one stroke. Implementations report any failure of
// the underlying propulsion through the returned error.
type RowingBoat interface {
	Row() error
}
