// Package lifewire provides a lifecycle-aware reactive notification
// substrate: owners walk a fixed lifecycle state machine, observables hold
// versioned values, and delivery is gated on the observing owner being
// started. Everything runs on one designated delivery loop.
//
// Example usage:
//
//	l := lifewire.NewLoop()
//	defer l.Stop()
//
//	temp := lifewire.NewValue[float64](l)
//	l.Do(func() {
//	    owner := lifewire.NewOwner(lifewire.WithLoop(l))
//	    temp.Observe(owner, lifewire.OnChanged(func(v float64) {
//	        fmt.Println("temperature", v)
//	    }))
//	    owner.Handle(lifewire.EventCreate)
//	    owner.Handle(lifewire.EventStart)
//	    temp.SetValue(21.5)
//	})
package lifewire

import (
	"github.com/bft-labs/lifewire/pkg/lifecycle"
	"github.com/bft-labs/lifewire/pkg/loop"
	"github.com/bft-labs/lifewire/pkg/observable"
)

// State is a lifecycle position. States are totally ordered.
type State = lifecycle.State

// Event is a lifecycle transition trigger.
type Event = lifecycle.Event

// Owner is anything that exposes a lifecycle Registry.
type Owner = lifecycle.Owner

// Registry is the lifecycle state machine and observer dispatcher.
type Registry = lifecycle.Registry

// StandaloneOwner is a minimal Owner for daemons and tests.
type StandaloneOwner = lifecycle.StandaloneOwner

// Option configures a Registry.
type Option = lifecycle.Option

// Loop is the designated delivery context.
type Loop = loop.Loop

// Lifecycle states, from terminal to fully active.
const (
	StateDestroyed   = lifecycle.StateDestroyed
	StateInitialized = lifecycle.StateInitialized
	StateCreated     = lifecycle.StateCreated
	StateStarted     = lifecycle.StateStarted
	StateResumed     = lifecycle.StateResumed
)

// Lifecycle events.
const (
	EventCreate  = lifecycle.EventCreate
	EventStart   = lifecycle.EventStart
	EventResume  = lifecycle.EventResume
	EventPause   = lifecycle.EventPause
	EventStop    = lifecycle.EventStop
	EventDestroy = lifecycle.EventDestroy
	EventAny     = lifecycle.EventAny
)

// WithLoop binds a Registry to a delivery loop.
var WithLoop = lifecycle.WithLoop

// NewLoop creates a running delivery loop.
func NewLoop(opts ...loop.Option) *Loop {
	return loop.New(opts...)
}

// NewOwner creates a standalone lifecycle owner.
func NewOwner(opts ...Option) *StandaloneOwner {
	return lifecycle.NewStandaloneOwner(opts...)
}

// NewValue creates an observable value delivering on l.
func NewValue[T any](l *Loop, opts ...observable.Option[T]) *observable.Value[T] {
	return observable.NewValue[T](l, opts...)
}

// NewMediator creates an observable value that aggregates other values.
func NewMediator[T any](l *Loop, opts ...observable.Option[T]) *observable.Mediator[T] {
	return observable.NewMediator[T](l, opts...)
}

// AttachSource subscribes a mediator to an upstream value.
func AttachSource[T, S any](m *observable.Mediator[T], src *observable.Value[S], onChanged func(value S)) {
	observable.AttachSource(m, src, onChanged)
}

// DetachSource removes a mediator's subscription to an upstream value.
func DetachSource[T, S any](m *observable.Mediator[T], src *observable.Value[S]) {
	observable.DetachSource(m, src)
}

// OnChanged wraps f as a value observer.
func OnChanged[T any](f func(value T)) observable.Observer[T] {
	return observable.FuncObserver[T](f)
}

// OnEvent wraps f as a lifecycle observer that fires for a single event.
// Pass EventAny to receive every event.
var OnEvent = lifecycle.OnEvent
