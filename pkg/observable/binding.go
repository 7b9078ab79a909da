package observable

import (
	"github.com/bft-labs/lifewire/pkg/lifecycle"
)

// binding is one registered observer with its activity predicate: either
// lifecycle-derived (active while the bound owner's state is at least
// StateStarted) or always active.
type binding[T any] interface {
	state() *bindingState[T]
	observerRef() Observer[T]
	shouldBeActive() bool
	activeStateChanged(newActive bool)
	detach()
}

// bindingState holds the per-binding delivery bookkeeping shared by both
// binding kinds. lastVersion never exceeds the Value's current version;
// equality means no pending delivery.
type bindingState[T any] struct {
	value       *Value[T]
	observer    Observer[T]
	active      bool
	lastVersion int64
}

func (s *bindingState[T]) state() *bindingState[T] {
	return s
}

func (s *bindingState[T]) observerRef() Observer[T] {
	return s.observer
}

// setActive toggles the active flag, updates the Value's active count, and
// on activation immediately attempts delivery to this binding so it catches
// up with the latest version.
func (s *bindingState[T]) setActive(b binding[T], newActive bool) {
	if newActive == s.active {
		return
	}
	s.active = newActive
	delta := -1
	if newActive {
		delta = 1
	}
	s.value.changeActiveCounter(delta)
	if s.active {
		s.value.dispatchValue(b)
	}
}

// foreverBinding is an always-active binding created by ObserveForever.
type foreverBinding[T any] struct {
	bindingState[T]
}

func (b *foreverBinding[T]) shouldBeActive() bool {
	return true
}

func (b *foreverBinding[T]) activeStateChanged(newActive bool) {
	b.setActive(b, newActive)
}

func (b *foreverBinding[T]) detach() {}

// lifecycleBinding gates delivery by an owner's lifecycle state. It is
// itself a lifecycle.Observer: the registry drives it through transitions
// and the binding recomputes its activity after each one.
type lifecycleBinding[T any] struct {
	bindingState[T]
	owner lifecycle.Owner
	reg   *lifecycle.Registry
}

func (b *lifecycleBinding[T]) shouldBeActive() bool {
	return b.reg.CurrentState().AtLeast(lifecycle.StateStarted)
}

func (b *lifecycleBinding[T]) activeStateChanged(newActive bool) {
	b.setActive(b, newActive)
}

func (b *lifecycleBinding[T]) detach() {
	b.reg.RemoveObserver(b)
}

// OnStateChanged implements lifecycle.Observer. Destruction removes the
// binding entirely; any other transition re-derives the active flag. The
// callback may trigger deliveries that move the owner again, so the flag is
// re-derived until the observed state stops changing.
func (b *lifecycleBinding[T]) OnStateChanged(owner lifecycle.Owner, event lifecycle.Event) {
	current := b.reg.CurrentState()
	if current == lifecycle.StateDestroyed {
		b.value.RemoveObserver(b.observer)
		return
	}
	prev := lifecycle.State(-1)
	for prev != current {
		prev = current
		b.activeStateChanged(b.shouldBeActive())
		current = b.reg.CurrentState()
	}
}
