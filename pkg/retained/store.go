package retained

import (
	"github.com/bft-labs/lifewire/pkg/log"
)

// Destroyable is a handle whose resources must be released exactly once
// when its store is cleared.
type Destroyable interface {
	// Teardown releases the handle's resources. Called at most once by the
	// store.
	Teardown()
}

// DestroyableFunc adapts a function to Destroyable.
type DestroyableFunc func()

// Teardown invokes the function.
func (f DestroyableFunc) Teardown() {
	f()
}

// Store maps opaque keys to destroyable handles that survive transient
// owner re-creation. On final owner teardown, Clear tears every handle down
// exactly once. The store is not safe for concurrent use; access it from
// the delivery loop like the rest of the substrate.
type Store struct {
	entries map[string]Destroyable
	order   []string
	logger  log.Logger
}

// Option configures optional behavior of a Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Destroyable),
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores d under key. If a handle is already stored under key, it is
// replaced and torn down; a handle never leaks by being silently dropped.
func (s *Store) Put(key string, d Destroyable) {
	if old, ok := s.entries[key]; ok {
		s.entries[key] = d
		old.Teardown()
		return
	}
	s.entries[key] = d
	s.order = append(s.order, key)
}

// Get returns the handle stored under key.
func (s *Store) Get(key string) (Destroyable, bool) {
	d, ok := s.entries[key]
	return d, ok
}

// Keys returns the stored keys in insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored handles.
func (s *Store) Len() int {
	return len(s.entries)
}

// Clear tears down every stored handle exactly once, in insertion order,
// and empties the store. Clearing an empty store does nothing, so Clear is
// idempotent.
func (s *Store) Clear() {
	if len(s.entries) == 0 {
		return
	}
	s.logger.Debug("clearing retained store", log.Int("entries", len(s.entries)))
	entries := s.entries
	order := s.order
	s.entries = make(map[string]Destroyable)
	s.order = nil
	for _, key := range order {
		if d, ok := entries[key]; ok {
			d.Teardown()
		}
	}
}
