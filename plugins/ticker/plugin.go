// Package ticker provides a time-backed observable source.
// It publishes the current time into an observable Value at a fixed
// interval. The underlying ticker runs only while the Value has at least
// one active observer, so a paused owner stops the clock entirely.
package ticker

import (
	"sync"
	"time"

	"github.com/bft-labs/lifewire/pkg/log"
	"github.com/bft-labs/lifewire/pkg/loop"
	"github.com/bft-labs/lifewire/pkg/observable"
)

// Config holds configuration options for the ticker source.
type Config struct {
	// Interval is the delay between ticks.
	// Default: 1 second
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// Source publishes tick timestamps into an observable Value.
type Source struct {
	interval time.Duration
	ticks    *observable.Value[time.Time]
	logger   log.Logger

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a ticker source publishing on the given delivery loop.
// The ticker is not started until the source's Value gains an active
// observer.
func New(cfg Config, l *loop.Loop, opts ...Option) *Source {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	s := &Source{
		interval: cfg.Interval,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ticks = observable.NewValue[time.Time](l, observable.WithHooks[time.Time](observable.Hooks{
		OnActive:   s.start,
		OnInactive: s.halt,
	}))
	return s
}

// Ticks returns the Value the source publishes into.
func (s *Source) Ticks() *observable.Value[time.Time] {
	return s.ticks
}

func (s *Source) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.logger.Debug("ticker started", log.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case now := <-t.C:
				s.ticks.PostValue(now)
			case <-stop:
				return
			}
		}
	}()
}

func (s *Source) halt() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()
	s.logger.Debug("ticker stopped")
}
