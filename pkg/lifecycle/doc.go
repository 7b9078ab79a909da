// Package lifecycle provides the state-machine synchronizer that drives
// observers in step with an owner's lifecycle.
//
// An owner moves through five ordered states, Destroyed < Initialized <
// Created < Started < Resumed, driven by six events (Create, Start, Resume,
// Pause, Stop, Destroy). A [Registry] tracks the owner's current state and
// delivers every intermediate transition to each registered [Observer], in
// registration order, even when observers are added, removed, or events are
// dispatched from inside a callback.
//
// # Usage
//
// Implement [Owner] on the component whose state drives synchronization, or
// use [StandaloneOwner]:
//
//	owner := lifecycle.NewStandaloneOwner()
//	reg := owner.Lifecycle()
//
//	reg.AddObserver(lifecycle.FuncObserver(func(o lifecycle.Owner, e lifecycle.Event) {
//	    fmt.Println("transition:", e)
//	}))
//
//	owner.Handle(lifecycle.EventCreate)
//	owner.Handle(lifecycle.EventStart)
//	owner.Handle(lifecycle.EventResume)
//	// ...
//	owner.Handle(lifecycle.EventDestroy) // exactly once, last
//
// An observer registered after the owner has already reached a high state
// receives the full ordered sequence of transitions (Create, then Start,
// then Resume), never a jump, because callbacks may have side effects keyed
// to a specific transition rather than a state value.
//
// # Threading
//
// All registry methods must run on a single goroutine. Attach a loop.Loop
// with [WithLoop] to enforce this; violations panic at the call site.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package lifecycle
