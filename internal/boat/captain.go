package boat

// Captain rows whatever RowingBoat it has been given.
//
// Captain is not safe for concurrent use.
type Captain struct {
	boat RowingBoat
}

// NewCaptain creates a captain bound to boat. Passing nil creates an unbound
// captain; Row fails with ErrNoRowingBoat until SetRowingBoat is called.
func NewCaptain(boat RowingBoat) *Captain {
	return &Captain{boat: boat}
}

// SetRowingBoat replaces the captain's boat. Passing nil unbinds it.
func (c *Captain) SetRowingBoat(boat RowingBoat) {
	c.boat = boat
}

// HasRowingBoat reports whether the captain has a boat to row.
func (c *Captain) HasRowingBoat() bool {
	return c.boat != nil
}

// Row rows the bound boat once.
//
// Returns:
//   - error: ErrNoRowingBoat if no boat is bound, otherwise whatever the
//     boat's Row returns, unwrapped
func (c *Captain) Row() error {
	if c.boat == nil {
		return ErrNoRowingBoat
	}
	return c.boat.Row()
}
