// Package loop provides the single-goroutine delivery context for lifewire.
//
// All lifecycle transitions, observer registration, and value delivery run on
// one Loop. Serializing mutation onto a single goroutine replaces locking in
// the observer registries with simple reentrancy flags, and makes dispatch
// deterministic.
//
// # Usage
//
// Create a loop and run work on it:
//
//	l := loop.New()
//	defer l.Stop()
//
//	l.Do(func() {
//	    // runs on the loop goroutine; Do waits for completion
//	})
//
//	l.Post(func() {
//	    // runs on the loop goroutine; Post returns immediately
//	})
//
// Operations restricted to the loop, such as Value.SetValue, call MustBeOn
// and panic when invoked from any other goroutine. Cross-goroutine value
// submission goes through Value.PostValue, which hands off to the loop.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package loop
