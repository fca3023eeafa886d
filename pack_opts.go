package fontstore

import "log/slog"

// packConfig holds configuration for store packing.
type packConfig struct {
	logger          *slog.Logger
	extension       string
	storeName       string
	indexName       string
	maxFiles        int
	sortByCodepoint bool
	strictKeys      bool
	progress        ProgressFunc
}

// PackOption configures store packing.
type PackOption func(*packConfig)

// PackWithLogger sets the logger for pack operations.
// If not set, logging is disabled.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}

// PackWithExtension sets the glyph file extension to match, including the
// leading dot. Defaults to DefaultExtension. An empty extension matches
// every file.
func PackWithExtension(ext string) PackOption {
	return func(cfg *packConfig) {
		cfg.extension = ext
	}
}

// PackWithStoreName sets the store blob filename within the output directory.
// Defaults to DefaultStoreName.
func PackWithStoreName(name string) PackOption {
	return func(cfg *packConfig) {
		cfg.storeName = name
	}
}

// PackWithIndexName sets the index filename within the output directory.
// Defaults to DefaultIndexName.
func PackWithIndexName(name string) PackOption {
	return func(cfg *packConfig) {
		cfg.indexName = name
	}
}

// PackWithMaxFiles limits the number of files packed into the store.
// Zero uses DefaultMaxFiles. Negative means no limit.
func PackWithMaxFiles(n int) PackOption {
	return func(cfg *packConfig) {
		cfg.maxFiles = n
	}
}

// PackWithSortByCodepoint orders glyphs by codepoint key before packing,
// producing a reproducible store layout regardless of traversal order.
// Files sharing a key are ordered by path, so the lexically last one wins.
func PackWithSortByCodepoint(enabled bool) PackOption {
	return func(cfg *packConfig) {
		cfg.sortByCodepoint = enabled
	}
}

// PackWithStrictKeys fails the pack with ErrDuplicateKey when two source
// files derive the same codepoint key. By default the later file wins and
// each collision is logged.
func PackWithStrictKeys(enabled bool) PackOption {
	return func(cfg *packConfig) {
		cfg.strictKeys = enabled
	}
}

// PackWithProgress sets a callback for progress updates during packing.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}
