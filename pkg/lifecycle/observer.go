package lifecycle

// Owner is a component whose lifecycle state drives synchronization.
// Owners dispatch events on their Registry at well-defined points in their
// own external lifecycle and must dispatch EventDestroy exactly once, last.
type Owner interface {
	// Lifecycle returns the owner's registry.
	Lifecycle() *Registry
}

// Observer receives lifecycle transition callbacks. Observers are tracked by
// identity, so implementations must be comparable; pointer receivers are the
// usual choice. Callbacks may themselves register or unregister observers
// and dispatch further events.
type Observer interface {
	// OnStateChanged is invoked once per transition, in order, with no
	// skipped intermediate events.
	OnStateChanged(owner Owner, event Event)
}

// FuncObserver wraps f as an Observer. Each call produces a distinct
// observer identity; keep the returned value to remove the observer later.
func FuncObserver(f func(owner Owner, event Event)) Observer {
	return &funcObserver{f: f}
}

// OnEvent wraps f as an Observer invoked only for the given event.
// Pass EventAny to match every event.
func OnEvent(event Event, f func(owner Owner)) Observer {
	return &funcObserver{f: func(owner Owner, e Event) {
		if event == EventAny || e == event {
			f(owner)
		}
	}}
}

type funcObserver struct {
	f func(owner Owner, event Event)
}

func (o *funcObserver) OnStateChanged(owner Owner, event Event) {
	o.f(owner, event)
}

// entry pairs an observer with the state it has been driven to so far.
// Mutated only by the registry.
type entry struct {
	state    State
	observer Observer
}

// dispatch delivers one transition to the observer and records the new
// tracked state. The pre-callback clamp keeps the tracked state consistent
// when the callback itself lowers the owner's state.
func (e *entry) dispatch(owner Owner, event Event) {
	target := event.TargetState()
	e.state = minState(e.state, target)
	e.observer.OnStateChanged(owner, event)
	e.state = target
}
