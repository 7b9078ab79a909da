package lifecycle

// Event is a named transition trigger. Each event maps deterministically to
// a resulting State via TargetState.
type Event int

const (
	// EventCreate moves an owner to StateCreated.
	EventCreate Event = iota

	// EventStart moves an owner to StateStarted.
	EventStart

	// EventResume moves an owner to StateResumed.
	EventResume

	// EventPause moves an owner back down to StateStarted.
	EventPause

	// EventStop moves an owner back down to StateCreated.
	EventStop

	// EventDestroy moves an owner to StateDestroyed. It must be dispatched
	// exactly once, last.
	EventDestroy

	// EventAny is a wildcard marker for observer filtering. It matches every
	// event and is never dispatched.
	EventAny
)

// String returns a human-readable representation of the event.
func (e Event) String() string {
	switch e {
	case EventCreate:
		return "Create"
	case EventStart:
		return "Start"
	case EventResume:
		return "Resume"
	case EventPause:
		return "Pause"
	case EventStop:
		return "Stop"
	case EventDestroy:
		return "Destroy"
	case EventAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// TargetState returns the state an owner is in after the event is dispatched.
// Calling TargetState on EventAny panics; the wildcard has no target.
func (e Event) TargetState() State {
	switch e {
	case EventCreate, EventStop:
		return StateCreated
	case EventStart, EventPause:
		return StateStarted
	case EventResume:
		return StateResumed
	case EventDestroy:
		return StateDestroyed
	}
	panic("lifewire: event " + e.String() + " has no target state")
}

// upFrom returns the event that lifts an observer from state to the next
// state on the upward path. There is no event up from StateResumed or
// StateDestroyed.
func upFrom(state State) (Event, bool) {
	switch state {
	case StateInitialized:
		return EventCreate, true
	case StateCreated:
		return EventStart, true
	case StateStarted:
		return EventResume, true
	default:
		return EventAny, false
	}
}

// downFrom returns the event that lowers an observer from state to the next
// state on the downward path. The downward path from StateCreated goes
// directly to StateDestroyed; StateInitialized is only ever left upward, so
// an observer still at StateInitialized is destroyed with EventDestroy.
func downFrom(state State) (Event, bool) {
	switch state {
	case StateResumed:
		return EventPause, true
	case StateStarted:
		return EventStop, true
	case StateCreated, StateInitialized:
		return EventDestroy, true
	default:
		return EventAny, false
	}
}
