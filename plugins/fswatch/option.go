package fswatch

import "github.com/bft-labs/lifewire/pkg/log"

// Option configures optional behavior of a Source.
type Option func(*Source)

// WithLogger sets a custom logger for the source.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}
