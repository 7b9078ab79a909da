package lifecycle

import (
	"github.com/bft-labs/lifewire/internal/omap"
	"github.com/bft-labs/lifewire/pkg/log"
	"github.com/bft-labs/lifewire/pkg/loop"
)

// Registry tracks an owner's current lifecycle state and drives every
// registered observer toward it, one transition at a time. It is safe under
// reentrancy: observer callbacks may add or remove observers and dispatch
// further events while a synchronization pass is in progress.
//
// All methods must run on the registry's delivery loop when one is attached
// (see WithLoop). The registry does no locking.
type Registry struct {
	state     State
	owner     Owner
	destroyed bool

	observers *omap.Map[Observer, *entry]

	// Reentrancy bookkeeping. A nested Handle or AddObserver sets
	// newEventOccurred so the in-flight pass aborts and the outer loop
	// re-evaluates with fresh state.
	handlingEvent         bool
	addingObserverCounter int
	newEventOccurred      bool
	parentStates          []State

	loop   *loop.Loop
	logger log.Logger
}

// Option configures optional behavior of a Registry.
type Option func(*Registry)

// WithLogger sets a custom logger for the registry.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLoop attaches the delivery loop the registry runs on. When set, every
// registry method panics if invoked from any other goroutine.
func WithLoop(l *loop.Loop) Option {
	return func(r *Registry) {
		r.loop = l
	}
}

// NewRegistry creates a registry for owner, starting at StateInitialized.
func NewRegistry(owner Owner, opts ...Option) *Registry {
	r := &Registry{
		state:     StateInitialized,
		owner:     owner,
		observers: omap.New[Observer, *entry](),
		logger:    log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentState returns the owner's current lifecycle state.
func (r *Registry) CurrentState() State {
	return r.state
}

// ObserverCount returns the number of registered observers.
func (r *Registry) ObserverCount() int {
	return r.observers.Len()
}

// Handle dispatches a lifecycle event, moving the owner to the event's
// target state and synchronizing all observers to it. Dispatching EventAny
// panics. After the owner has been destroyed, Handle is a silent no-op.
func (r *Registry) Handle(event Event) {
	r.checkLoop()
	if event == EventAny {
		panic("lifewire: EventAny is a wildcard for observer filtering and cannot be dispatched")
	}
	if r.destroyed {
		r.logger.Warn("event dispatched after destruction ignored", log.Stringer("event", event))
		return
	}
	r.moveToState(event.TargetState())
}

func (r *Registry) moveToState(next State) {
	if r.state == next {
		return
	}
	r.logger.Debug("lifecycle state change",
		log.Stringer("from", r.state),
		log.Stringer("to", next),
	)
	r.state = next
	if r.handlingEvent || r.addingObserverCounter != 0 {
		r.newEventOccurred = true
		return
	}
	r.handlingEvent = true
	r.sync()
	r.handlingEvent = false
	if r.state == StateDestroyed {
		r.teardown()
	}
}

// teardown drops the owner reference and clears the observer map once the
// owner has reached StateDestroyed. Runs only on the outermost dispatch
// frame, after sync has driven every observer down; a nested destroy defers
// teardown to the frame that entered the registry first.
func (r *Registry) teardown() {
	r.destroyed = true
	r.owner = nil
	r.observers = omap.New[Observer, *entry]()
}

// AddObserver registers o and drives it from StateInitialized up to a
// target capped by both the owner's current state and the tracked state of
// the previously registered observer, so a latecomer never overtakes an
// earlier observer that has not caught up yet. Registration is idempotent;
// adding an observer that is already registered does nothing, and adding
// one to a destroyed registry does nothing.
//
// An observer added after the owner reached StateResumed receives Create,
// Start, and Resume in order, never a jump.
func (r *Registry) AddObserver(o Observer) {
	r.checkLoop()
	if r.destroyed || r.state == StateDestroyed {
		return
	}
	e := &entry{state: StateInitialized, observer: o}
	if _, exists := r.observers.PutIfAbsent(o, e); exists {
		return
	}
	owner := r.owner

	reentrant := r.addingObserverCounter != 0 || r.handlingEvent
	target := r.calculateTargetState(o)
	r.addingObserverCounter++
	for e.state < target && r.observers.Contains(o) {
		r.pushParentState(e.state)
		event, ok := upFrom(e.state)
		if !ok {
			panic("lifewire: no event up from state " + e.state.String())
		}
		e.dispatch(owner, event)
		r.popParentState()
		// The callback may have moved the owner or mutated the registry.
		target = r.calculateTargetState(o)
	}
	if !reentrant {
		r.sync()
	}
	r.addingObserverCounter--
	// A destroy dispatched from a catch-up callback lands here with this
	// call as the outermost frame; finish the teardown that sync started.
	if !reentrant && r.state == StateDestroyed {
		r.teardown()
	}
}

// RemoveObserver deletes o from the registry. The removed observer is
// skipped by any in-flight pass and receives no further callbacks; no
// compensating down events are dispatched on direct removal. Removing an
// observer that is not registered does nothing.
func (r *Registry) RemoveObserver(o Observer) {
	r.checkLoop()
	r.observers.Remove(o)
}

// calculateTargetState caps the state an observer may be driven to: the
// owner's current state, lowered to the tracked state of the observer
// registered immediately before it, and further lowered to the innermost
// state of any dispatch in progress.
func (r *Registry) calculateTargetState(o Observer) State {
	target := r.state
	if prev := r.observers.Before(o); prev != nil {
		target = minState(target, prev.Value.state)
	}
	if n := len(r.parentStates); n > 0 {
		target = minState(target, r.parentStates[n-1])
	}
	return target
}

func (r *Registry) pushParentState(s State) {
	r.parentStates = append(r.parentStates, s)
}

func (r *Registry) popParentState() {
	r.parentStates = r.parentStates[:len(r.parentStates)-1]
}

// sync loops until the registry is settled: empty, or both the eldest and
// newest entries track the owner's current state. Each iteration runs a
// backward pass for entries above the current state, then a forward pass for
// entries below it; a nested state change aborts the passes and restarts the
// loop with fresh data.
func (r *Registry) sync() {
	owner := r.owner
	if owner == nil {
		// Teardown race; treat as already torn down.
		return
	}
	for !r.isSettled() {
		r.newEventOccurred = false
		if eldest := r.observers.Eldest(); eldest != nil && r.state < eldest.Value.state {
			r.backwardPass(owner)
		}
		newest := r.observers.Newest()
		if !r.newEventOccurred && newest != nil && r.state > newest.Value.state {
			r.forwardPass(owner)
		}
	}
	r.newEventOccurred = false
}

func (r *Registry) isSettled() bool {
	if r.observers.Len() == 0 {
		return true
	}
	eldest := r.observers.Eldest().Value.state
	newest := r.observers.Newest().Value.state
	return eldest == newest && newest == r.state
}

// backwardPass steps entries down toward the owner's state in reverse
// registration order. Entries added mid-pass are not visited; a latecomer
// starts below any state that needs lowering and is handled next iteration.
func (r *Registry) backwardPass(owner Owner) {
	it := r.observers.Descending()
	defer it.Close()
	for n, ok := it.Next(); ok && !r.newEventOccurred; n, ok = it.Next() {
		e := n.Value
		for e.state > r.state && !r.newEventOccurred && r.observers.Contains(n.Key) {
			event, ok := downFrom(e.state)
			if !ok {
				panic("lifewire: no event down from state " + e.state.String())
			}
			r.pushParentState(event.TargetState())
			e.dispatch(owner, event)
			r.popParentState()
		}
	}
}

// forwardPass steps entries up toward the owner's state in registration
// order, including entries appended by callbacks during the pass.
func (r *Registry) forwardPass(owner Owner) {
	it := r.observers.AscendingWithAdditions()
	defer it.Close()
	for n, ok := it.Next(); ok && !r.newEventOccurred; n, ok = it.Next() {
		e := n.Value
		for e.state < r.state && !r.newEventOccurred && r.observers.Contains(n.Key) {
			event, ok := upFrom(e.state)
			if !ok {
				panic("lifewire: no event up from state " + e.state.String())
			}
			r.pushParentState(e.state)
			e.dispatch(owner, event)
			r.popParentState()
		}
	}
}

func (r *Registry) checkLoop() {
	if r.loop != nil {
		r.loop.MustBeOn()
	}
}
