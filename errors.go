package fontstore

import (
	"errors"

	"github.com/healeycodes/fontstore/internal/index"
)

// ErrCorruptIndex is returned when index data is malformed or names byte
// ranges the store cannot satisfy.
var ErrCorruptIndex = index.ErrCorrupt

// Sentinel errors for pack and store operations.
var (
	// ErrNotFound is returned when no glyph exists for a codepoint key.
	ErrNotFound = errors.New("fontstore: glyph not found")

	// ErrDuplicateKey is returned by strict-key packs when two source files
	// derive the same codepoint key.
	ErrDuplicateKey = errors.New("fontstore: duplicate codepoint key")

	// ErrStoreClosed is returned when reading from a closed store.
	ErrStoreClosed = errors.New("fontstore: store closed")

	// ErrTooManyFiles is returned when the source file count exceeds the
	// configured limit.
	ErrTooManyFiles = errors.New("fontstore: too many files")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("fontstore: size overflow")
)
