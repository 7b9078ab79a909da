package observable

import (
	"sync"

	"github.com/bft-labs/lifewire/internal/omap"
	"github.com/bft-labs/lifewire/pkg/lifecycle"
	"github.com/bft-labs/lifewire/pkg/log"
	"github.com/bft-labs/lifewire/pkg/loop"
)

// unsetVersion is below any valid version, so the first eligible dispatch
// after a binding is created always delivers at least once.
const unsetVersion int64 = -1

// Hooks let a Value react to its own observer activity, typically to start
// an upstream feed when the first observer becomes active and stop it when
// the last one goes inactive.
type Hooks struct {
	// OnActive is invoked when the active observer count rises from 0 to 1.
	OnActive func()

	// OnInactive is invoked when the active observer count drops to 0.
	OnInactive func()
}

// Value is a versioned container that delivers values to observers while
// they are active. Lifecycle-bound observers (see Observe) are active while
// their owner's state is at least lifecycle.StateStarted; ObserveForever
// observers are always active.
//
// Every mutation and delivery runs on the Value's loop. SetValue must be
// called on the loop and panics otherwise; PostValue may be called from any
// goroutine and coalesces onto the loop.
//
// Delivery guarantees: no observer receives the same version twice, no
// observer receives anything while inactive, and an observer that becomes
// active receives the latest version exactly once no matter how many
// versions were produced while it was inactive.
type Value[T any] struct {
	loop   *loop.Loop
	logger log.Logger
	hooks  Hooks

	value   T
	set     bool
	version int64

	observers   *omap.Map[Observer[T], binding[T]]
	activeCount int

	// Reentrancy flags; see dispatchValue and changeActiveCounter.
	dispatching    bool
	invalidated    bool
	changingActive bool

	// countHook is notified after every observer add or remove with the new
	// total count. Used by Mediator to plug and unplug upstream sources.
	countHook func(count int)

	// pending is the single cross-goroutine submission slot. Later
	// PostValue calls overwrite it; only the most recent value survives.
	pendingMu sync.Mutex
	pending   *T
}

// Option configures optional behavior of a Value.
type Option[T any] func(*Value[T])

// WithLogger sets a custom logger for the value.
// If not provided, a no-op logger is used.
func WithLogger[T any](logger log.Logger) Option[T] {
	return func(v *Value[T]) {
		v.logger = logger
	}
}

// WithHooks sets the activity hooks for the value.
func WithHooks[T any](hooks Hooks) Option[T] {
	return func(v *Value[T]) {
		v.hooks = hooks
	}
}

// NewValue creates an empty Value bound to the given delivery loop.
func NewValue[T any](l *loop.Loop, opts ...Option[T]) *Value[T] {
	if l == nil {
		panic("lifewire: NewValue requires a delivery loop")
	}
	v := &Value[T]{
		loop:      l,
		logger:    log.NewNoopLogger(),
		version:   unsetVersion,
		observers: omap.New[Observer[T], binding[T]](),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Value returns the current value and whether one has been set.
// Must be called on the delivery loop.
func (v *Value[T]) Value() (T, bool) {
	v.loop.MustBeOn()
	return v.value, v.set
}

// SetValue stores val, increments the version, and dispatches to all
// eligible observers. Must be called on the delivery loop; use PostValue
// from other goroutines. Setting an equal value dispatches again: delivery
// is gated by version, never by value equality.
func (v *Value[T]) SetValue(val T) {
	v.loop.MustBeOn()
	v.version++
	v.value = val
	v.set = true
	v.logger.Debug("value set", log.Int64("version", v.version))
	v.dispatchValue(nil)
}

// PostValue schedules val to be set on the delivery loop. Callable from any
// goroutine. Calls made before the scheduled delivery runs coalesce: only
// the most recent value is delivered, earlier ones are dropped.
func (v *Value[T]) PostValue(val T) {
	v.pendingMu.Lock()
	schedule := v.pending == nil
	v.pending = &val
	v.pendingMu.Unlock()

	if !schedule {
		return
	}
	v.loop.Post(func() {
		v.pendingMu.Lock()
		pending := v.pending
		v.pending = nil
		v.pendingMu.Unlock()
		if pending != nil {
			v.SetValue(*pending)
		}
	})
}

// Observe registers o gated by the owner's lifecycle: callbacks are
// delivered only while the owner's state is at least StateStarted, and the
// observer is removed automatically when the owner is destroyed. Observing
// with an owner that is already destroyed does nothing. Registration is
// idempotent; registering the same observer under a different owner panics.
// Must be called on the delivery loop.
func (v *Value[T]) Observe(owner lifecycle.Owner, o Observer[T]) {
	v.loop.MustBeOn()
	reg := owner.Lifecycle()
	if reg.CurrentState() == lifecycle.StateDestroyed {
		return
	}
	b := &lifecycleBinding[T]{
		bindingState: bindingState[T]{value: v, observer: o, lastVersion: unsetVersion},
		owner:        owner,
		reg:          reg,
	}
	existing, ok := v.observers.PutIfAbsent(o, b)
	if ok {
		if lb, isLifecycle := existing.(*lifecycleBinding[T]); !isLifecycle || lb.reg != reg {
			panic("lifewire: observer is already registered with a different lifecycle")
		}
		return
	}
	reg.AddObserver(b)
	v.notifyCount()
}

// ObserveForever registers o as always active; it receives every version
// until removed with RemoveObserver. Registration is idempotent;
// registering an observer that is lifecycle-bound panics. Must be called on
// the delivery loop.
func (v *Value[T]) ObserveForever(o Observer[T]) {
	v.loop.MustBeOn()
	b := &foreverBinding[T]{
		bindingState: bindingState[T]{value: v, observer: o, lastVersion: unsetVersion},
	}
	existing, ok := v.observers.PutIfAbsent(o, b)
	if ok {
		if _, isLifecycle := existing.(*lifecycleBinding[T]); isLifecycle {
			panic("lifewire: observer is already registered with a lifecycle")
		}
		return
	}
	b.activeStateChanged(true)
	v.notifyCount()
}

// RemoveObserver deletes o. Safe to call from within a callback; the
// removed observer receives no further deliveries. Removing an observer
// that is not registered does nothing. Must be called on the delivery loop.
func (v *Value[T]) RemoveObserver(o Observer[T]) {
	v.loop.MustBeOn()
	b, ok := v.observers.Remove(o)
	if !ok {
		return
	}
	b.detach()
	b.activeStateChanged(false)
	v.notifyCount()
}

// HasObservers reports whether any observer is registered.
// Must be called on the delivery loop.
func (v *Value[T]) HasObservers() bool {
	v.loop.MustBeOn()
	return v.observers.Len() > 0
}

// HasActiveObservers reports whether any registered observer is active.
// Must be called on the delivery loop.
func (v *Value[T]) HasActiveObservers() bool {
	v.loop.MustBeOn()
	return v.activeCount > 0
}

// Loop returns the delivery loop the value is bound to.
func (v *Value[T]) Loop() *loop.Loop {
	return v.loop
}

func (v *Value[T]) notifyCount() {
	if v.countHook != nil {
		v.countHook(v.observers.Len())
	}
}

// dispatchValue delivers the current version to the initiator binding, or to
// every binding in registration order when initiator is nil. A dispatch
// entered while one is already running only marks it invalidated; the
// running dispatch breaks out of its iteration and restarts with the fresh
// version, so stale deliveries are never completed.
func (v *Value[T]) dispatchValue(initiator binding[T]) {
	if v.dispatching {
		v.invalidated = true
		return
	}
	v.dispatching = true
	for {
		v.invalidated = false
		if initiator != nil {
			v.considerNotify(initiator)
			initiator = nil
		} else {
			it := v.observers.AscendingWithAdditions()
			for n, ok := it.Next(); ok; n, ok = it.Next() {
				v.considerNotify(n.Value)
				if v.invalidated {
					break
				}
			}
			it.Close()
		}
		if !v.invalidated {
			break
		}
	}
	v.dispatching = false
}

// considerNotify delivers the current value to b if and only if b is active,
// its activity predicate still holds, and it has not yet seen this version.
func (v *Value[T]) considerNotify(b binding[T]) {
	s := b.state()
	if !s.active {
		return
	}
	// The owner may have moved since the active flag was last updated;
	// flip the flag instead of delivering stale state.
	if !b.shouldBeActive() {
		b.activeStateChanged(false)
		return
	}
	if s.lastVersion >= v.version {
		return
	}
	s.lastVersion = v.version
	b.observerRef().OnChanged(v.value)
}

// changeActiveCounter maintains the active observer count and fires the
// OnActive and OnInactive hooks on 0-to-1 and 1-to-0 edges. Hooks may
// themselves change observer activity; the loop replays edges until the
// count stabilizes instead of recursing.
func (v *Value[T]) changeActiveCounter(delta int) {
	previous := v.activeCount
	v.activeCount += delta
	if v.changingActive {
		return
	}
	v.changingActive = true
	defer func() { v.changingActive = false }()
	for v.activeCount != previous {
		callActive := previous == 0 && v.activeCount > 0
		callInactive := previous > 0 && v.activeCount == 0
		previous = v.activeCount
		if callActive && v.hooks.OnActive != nil {
			v.hooks.OnActive()
		} else if callInactive && v.hooks.OnInactive != nil {
			v.hooks.OnInactive()
		}
	}
}
