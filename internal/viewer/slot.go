package viewer

// Slot tracks one key-toggled part: the two variant paths, the wanted
// state, and whether the bound key is currently held. The on variant shows
// while the key is down and reverts on release; transitions fire on edges,
// so holding a key never reloads.
type Slot struct {
	Key string
	Off string
	On  string

	on      bool
	held    bool
	pending bool
}

// Want returns the variant path for the slot's current state.
func (s *Slot) Want() string {
	if s.on {
		return s.On
	}
	return s.Off
}

// IsOn reports the wanted state, which may be ahead of the resident mesh
// while a swap is in flight.
func (s *Slot) IsOn() bool {
	return s.on
}

// Pending reports whether a variant load is in flight.
func (s *Slot) Pending() bool {
	return s.pending
}
