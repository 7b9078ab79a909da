// Package observable provides versioned value containers whose delivery is
// gated by observer activity.
//
// A [Value] holds the latest value and a monotonic version. Observers bound
// with [Value.Observe] are active while their lifecycle owner's state is at
// least lifecycle.StateStarted; observers bound with [Value.ObserveForever]
// are always active. An active observer sees each version at most once, an
// inactive observer sees nothing, and an observer that becomes active again
// receives the latest version exactly once regardless of how many versions
// it missed.
//
// # Usage
//
//	l := loop.New()
//	defer l.Stop()
//
//	l.Do(func() {
//	    owner := lifecycle.NewStandaloneOwner(lifecycle.WithLoop(l))
//	    temp := observable.NewValue[float64](l)
//
//	    temp.Observe(owner, observable.FuncObserver(func(c float64) {
//	        fmt.Println("temperature:", c)
//	    }))
//
//	    owner.Handle(lifecycle.EventCreate)
//	    temp.SetValue(21.5) // not delivered: owner below Started
//	    owner.Handle(lifecycle.EventStart)
//	    // delivered now: latest version, exactly once
//	})
//
// From other goroutines, submit with [Value.PostValue]; rapid posts coalesce
// and only the most recent value is delivered.
//
// A [Mediator] merges several upstream Values into one, forwarding each
// unseen upstream version through a callback. Its upstream subscriptions
// exist only while the mediator itself is being observed.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package observable
