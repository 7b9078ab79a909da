// Package retained provides a keyed store for handles that outlive
// transient owner re-creation.
//
// A [Store] maps opaque keys to [Destroyable] handles. The owner of the
// store clears it on final teardown, not on transient re-creation, and every
// handle's Teardown runs exactly once. A typical handle wraps a long-lived
// resource such as an observable pipeline or an upstream subscription.
//
// # Usage
//
//	store := retained.NewStore()
//	store.Put("session", retained.DestroyableFunc(func() {
//	    session.Close()
//	}))
//
//	// ... owner is re-created transiently; the store is carried over ...
//
//	store.Clear() // final teardown: every handle torn down exactly once
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package retained
