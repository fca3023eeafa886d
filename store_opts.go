package fontstore

import "log/slog"

// StoreOption configures a Store.
type StoreOption func(*Store)

// StoreWithCache enables in-memory caching of glyph bytes.
//
// When enabled, glyph content is kept after first read and served from
// memory on subsequent reads. Concurrent requests for the same glyph are
// deduplicated.
func StoreWithCache(enabled bool) StoreOption {
	return func(s *Store) {
		s.cacheEnabled = enabled
	}
}

// StoreWithLogger sets the logger for store operations.
// If not set, logging is disabled.
func StoreWithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}
