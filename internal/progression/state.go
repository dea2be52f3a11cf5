package progression

// State is a lesson card's position in the unlock sequence
type State int

const (
	Locked State = iota
	Accessible
	Completed
)

func (s State) String() string {
	switch s {
	case Accessible:
		return "accessible"
	case Completed:
		return "completed"
	default:
		return "locked"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Derive applies the linear unlock rule to completion flags in lesson order: every lesson up to
// and including the first incomplete one is reachable, everything after it is locked
func Derive(completed []bool) []State {
	states := make([]State, len(completed))
	frontierPassed := false
	for i, done := range completed {
		switch {
		case frontierPassed:
			states[i] = Locked
		case done:
			states[i] = Completed
		default:
			states[i] = Accessible
			frontierPassed = true
		}
	}
	return states
}
