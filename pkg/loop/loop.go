package loop

import (
	"sync"
	"sync/atomic"

	"github.com/bft-labs/lifewire/pkg/log"
)

// Loop is a single-goroutine task executor. It is the designated context on
// which all lifecycle transitions, observer registration, and value delivery
// must run, which removes the need for locks around the registries: mutation
// is serialized by construction and reentrancy is handled with flags instead.
//
// Tasks posted from any goroutine run in FIFO order on the loop goroutine.
// Use New to create a running loop and Stop to shut it down.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
	gid  atomic.Int64

	logger log.Logger
}

// Option configures optional behavior of a Loop.
type Option func(*Loop)

// WithLogger sets a custom logger for the loop.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a Loop and starts its goroutine. The loop is ready to accept
// tasks when New returns.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}

	ready := make(chan struct{})
	go l.run(ready)
	<-ready
	return l
}

func (l *Loop) run(ready chan struct{}) {
	l.gid.Store(goid())
	l.logger.Debug("loop started", log.Int64("goroutine", l.gid.Load()))
	close(ready)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		stopped := l.stopped
		l.mu.Unlock()

		for _, f := range batch {
			f()
		}

		if stopped {
			l.mu.Lock()
			drained := len(l.queue) == 0
			l.mu.Unlock()
			if drained {
				l.logger.Debug("loop stopped")
				close(l.done)
				return
			}
			continue
		}

		<-l.wake
	}
}

// enqueue appends a task and reports whether it was accepted.
// Tasks posted after Stop are dropped.
func (l *Loop) enqueue(f func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Post schedules f to run on the loop goroutine and returns immediately.
// Posting from the loop itself is allowed; the task runs after the current
// task finishes. Tasks posted after Stop are silently dropped.
func (l *Loop) Post(f func()) {
	if !l.enqueue(f) {
		l.logger.Debug("task dropped, loop stopped")
	}
}

// Do runs f on the loop goroutine and waits for it to finish.
// When called from the loop itself, f runs inline. Calling Do on a stopped
// loop is a no-op.
func (l *Loop) Do(f func()) {
	if l.IsOn() {
		f()
		return
	}
	fin := make(chan struct{})
	if !l.enqueue(func() {
		defer close(fin)
		f()
	}) {
		return
	}
	<-fin
}

// IsOn reports whether the caller is running on the loop goroutine.
func (l *Loop) IsOn() bool {
	return goid() == l.gid.Load()
}

// MustBeOn panics if the caller is not running on the loop goroutine.
// It is the enforcement point for operations that are restricted to the
// designated delivery context, such as Value.SetValue.
func (l *Loop) MustBeOn() {
	if !l.IsOn() {
		panic("lifewire: operation must run on the delivery loop; use Post, Do, or PostValue from other goroutines")
	}
}

// Stop shuts the loop down after draining already-posted tasks and waits for
// the loop goroutine to exit. Safe to call more than once. Calling Stop from
// the loop itself marks the loop stopped without waiting.
func (l *Loop) Stop() {
	l.mu.Lock()
	already := l.stopped
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	if l.IsOn() {
		return
	}
	if already {
		<-l.done
		return
	}
	<-l.done
}
