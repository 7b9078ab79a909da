// Package fswatch provides a filesystem-backed observable source.
// It watches a set of paths with fsnotify and publishes change events into
// an observable Value. The underlying watcher runs only while the Value has
// at least one active observer: the first active observer starts it and the
// last one going inactive stops it.
package fswatch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/lifewire/pkg/log"
	"github.com/bft-labs/lifewire/pkg/loop"
	"github.com/bft-labs/lifewire/pkg/observable"
)

// Event describes a single filesystem change.
type Event struct {
	// Path is the file or directory that changed.
	Path string

	// Op is the fsnotify operation (create, write, remove, rename, chmod).
	Op fsnotify.Op

	// At is when the event was observed.
	At time.Time
}

// Config holds configuration options for the filesystem source.
type Config struct {
	// Paths are the files or directories to watch. At least one is required.
	Paths []string
}

// Source publishes filesystem change events into an observable Value.
type Source struct {
	cfg    Config
	events *observable.Value[Event]
	logger log.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// New creates a filesystem source publishing on the given delivery loop.
// The watcher is not started until the source's Value gains an active
// observer.
func New(cfg Config, l *loop.Loop, opts ...Option) *Source {
	s := &Source{
		cfg:    cfg,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = observable.NewValue[Event](l, observable.WithHooks[Event](observable.Hooks{
		OnActive:   s.start,
		OnInactive: s.stop,
	}))
	return s
}

// Events returns the Value the source publishes into. Observe it with a
// lifecycle owner to receive change events only while the owner is started.
func (s *Source) Events() *observable.Value[Event] {
	return s.events
}

func (s *Source) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("failed to create watcher", log.Err(err))
		return
	}
	for _, p := range s.cfg.Paths {
		if err := w.Add(p); err != nil {
			s.logger.Warn("failed to watch path", log.String("path", p), log.Err(err))
		}
	}
	s.watcher = w
	s.logger.Info("filesystem watcher started", log.Int("paths", len(s.cfg.Paths)))

	s.wg.Add(1)
	go s.run(w)
}

func (s *Source) stop() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return
	}
	if err := w.Close(); err != nil {
		s.logger.Warn("failed to close watcher", log.Err(err))
	}
	s.wg.Wait()
	s.logger.Info("filesystem watcher stopped")
}

// run pumps fsnotify events into the Value. PostValue coalesces bursts:
// only the most recent not-yet-delivered event survives, which is the
// desired behavior for change notification.
func (s *Source) run(w *fsnotify.Watcher) {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.events.PostValue(Event{Path: ev.Name, Op: ev.Op, At: time.Now()})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", log.Err(err))
		}
	}
}
