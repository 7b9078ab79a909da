package lifecycle

// State is one of the five ordered lifecycle stages of an owner.
// States are totally ordered by rank, with StateDestroyed lowest.
type State int

const (
	// StateDestroyed is the terminal state. An owner reaches it exactly once
	// and never leaves it.
	StateDestroyed State = iota

	// StateInitialized is the state of an owner that has been constructed
	// but has not yet received EventCreate.
	StateInitialized

	// StateCreated is reached after EventCreate or EventStop.
	StateCreated

	// StateStarted is reached after EventStart or EventPause. An owner at
	// StateStarted or above is considered active for delivery gating.
	StateStarted

	// StateResumed is the topmost state, reached after EventResume.
	StateResumed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDestroyed:
		return "Destroyed"
	case StateInitialized:
		return "Initialized"
	case StateCreated:
		return "Created"
	case StateStarted:
		return "Started"
	case StateResumed:
		return "Resumed"
	default:
		return "Unknown"
	}
}

// AtLeast reports whether s ranks at or above other.
func (s State) AtLeast(other State) bool {
	return s >= other
}

func minState(a, b State) State {
	if b < a {
		return b
	}
	return a
}
