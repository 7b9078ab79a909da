package observable

import (
	"github.com/bft-labs/lifewire/pkg/loop"
)

// Mediator is a Value that merges updates from several upstream Values.
// Attach upstreams with AttachSource; each upstream delivery whose version
// has not been seen yet invokes the attached callback, which typically
// forwards a derived value with SetValue.
//
// Upstream subscriptions are always-active bindings, but they exist only
// while the mediator itself has at least one registered observer: the first
// Observe plugs every attached source and removing the last observer
// unplugs them. Attachment therefore follows the mediator's observer count,
// not its observers' activity.
type Mediator[T any] struct {
	*Value[T]

	sources map[any]*mediatorSource
	plugged bool
}

// mediatorSource is one upstream subscription, type-erased so sources of
// different value types can share a map.
type mediatorSource struct {
	plug   func()
	unplug func()
}

// NewMediator creates a Mediator bound to the given delivery loop.
func NewMediator[T any](l *loop.Loop, opts ...Option[T]) *Mediator[T] {
	m := &Mediator[T]{
		Value:   NewValue[T](l, opts...),
		sources: make(map[any]*mediatorSource),
	}
	m.Value.countHook = m.observerCountChanged
	return m
}

// AttachSource subscribes m to src. Whenever src produces a version the
// mediator has not seen, onChanged is invoked with the value; it runs on
// the delivery loop and usually calls m.SetValue. Attaching a source that
// is already attached panics. Must be called on the delivery loop.
func AttachSource[T, S any](m *Mediator[T], src *Value[S], onChanged func(value S)) {
	m.Loop().MustBeOn()
	if _, ok := m.sources[src]; ok {
		panic("lifewire: source is already attached to this mediator")
	}

	lastSeen := unsetVersion
	observer := FuncObserver(func(value S) {
		if lastSeen != src.version {
			lastSeen = src.version
			onChanged(value)
		}
	})
	s := &mediatorSource{
		plug:   func() { src.ObserveForever(observer) },
		unplug: func() { src.RemoveObserver(observer) },
	}
	m.sources[src] = s
	if m.plugged {
		s.plug()
	}
}

// DetachSource removes the subscription to src. Detaching a source that is
// not attached does nothing. Must be called on the delivery loop.
func DetachSource[T, S any](m *Mediator[T], src *Value[S]) {
	m.Loop().MustBeOn()
	s, ok := m.sources[src]
	if !ok {
		return
	}
	delete(m.sources, src)
	if m.plugged {
		s.unplug()
	}
}

func (m *Mediator[T]) observerCountChanged(count int) {
	switch {
	case count > 0 && !m.plugged:
		m.plugged = true
		for _, s := range m.sources {
			s.plug()
		}
	case count == 0 && m.plugged:
		m.plugged = false
		for _, s := range m.sources {
			s.unplug()
		}
	}
}
