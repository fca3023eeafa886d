package fontstore

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/healeycodes/fontstore/internal/codepoint"
	"github.com/healeycodes/fontstore/internal/index"
)

// Re-export types from internal/index for public API.
type (
	// Entry locates one glyph's bytes in the store blob.
	Entry = index.Entry

	// Index maps codepoint keys to byte ranges in the store blob.
	Index = index.Index
)

// Store provides random access to glyphs in a packed store.
//
// Store is safe for concurrent readers.
type Store struct {
	idx          index.Index
	source       ByteSource
	closer       io.Closer
	cacheEnabled bool
	cacheMu      sync.RWMutex
	cache        map[string][]byte
	readGroup    singleflight.Group // zero value is valid
	runesOnce    sync.Once
	runeKeys     map[rune]string
	logger       *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// New creates a Store for accessing glyphs through source.
//
// The indexData is the JSON index object and source provides access to the
// store blob. Byte ranges are validated lazily as glyphs are read.
func New(indexData []byte, source ByteSource, opts ...StoreOption) (*Store, error) {
	idx, err := index.Decode(indexData)
	if err != nil {
		return nil, err
	}

	s := &Store{idx: idx, source: source}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheEnabled {
		s.cache = make(map[string][]byte)
	}
	return s, nil
}

// NewFromBytes creates a Store over in-memory index and store bytes, as
// loaded from go:embed assets.
func NewFromBytes(indexData, store []byte, opts ...StoreOption) (*Store, error) {
	return New(indexData, bytes.NewReader(store), opts...)
}

// Open opens a packed store from its index and store files.
//
// The index file is read into memory; the store file is opened for random
// access. The returned Store must be closed to release the file.
func Open(indexPath, storePath string, opts ...StoreOption) (*Store, error) {
	indexData, err := os.ReadFile(indexPath) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}

	f, err := os.Open(storePath) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}

	source, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	s, err := New(indexData, source, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = source
	return s, nil
}

// OpenMapped opens a packed store with the store blob memory-mapped.
//
// Glyph reads slice the mapping directly instead of issuing file reads.
// On platforms without mmap support this is equivalent to Open. The
// returned Store must be closed to release the mapping.
func OpenMapped(indexPath, storePath string, opts ...StoreOption) (*Store, error) {
	indexData, err := os.ReadFile(indexPath) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}

	source, err := openMapped(storePath)
	if err != nil {
		return nil, err
	}

	s, err := New(indexData, source, opts...)
	if err != nil {
		if c, ok := source.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	if c, ok := source.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

// Lookup returns the byte range for a codepoint key.
func (s *Store) Lookup(key string) (Entry, bool) {
	e, ok := s.idx[key]
	return e, ok
}

// LookupRune returns the byte range for a rune.
//
// Keys are matched by parsed codepoint value, so "U+03a9" and "U+03A9"
// both resolve U+03A9.
func (s *Store) LookupRune(r rune) (Entry, bool) {
	key, ok := s.keyForRune(r)
	if !ok {
		return Entry{}, false
	}
	return s.Lookup(key)
}

// ReadGlyph reads and returns the raw bytes for a codepoint key.
//
// Reads are bounds-checked against the store size and return ErrCorruptIndex
// when the index names bytes the store does not have. When caching is
// enabled the returned slice is shared; callers must treat it as read-only.
func (s *Store) ReadGlyph(key string) ([]byte, error) {
	ent, ok := s.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	if !s.cacheEnabled {
		return s.readRange(key, ent)
	}

	s.cacheMu.RLock()
	content, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if ok {
		s.log().Debug("glyph cache hit", "key", key)
		return content, nil
	}

	s.log().Debug("glyph cache miss", "key", key)

	// Cache miss with singleflight: concurrent reads of the same glyph
	// hit the source once.
	result, err, _ := s.readGroup.Do(key, func() (any, error) {
		// Double-check cache
		s.cacheMu.RLock()
		content, ok := s.cache[key]
		s.cacheMu.RUnlock()
		if ok {
			return content, nil
		}

		content, readErr := s.readRange(key, ent)
		if readErr != nil {
			return nil, readErr
		}

		s.cacheMu.Lock()
		s.cache[key] = content
		s.cacheMu.Unlock()
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

// ReadGlyphRune reads and returns the raw bytes for a rune.
func (s *Store) ReadGlyphRune(r rune) ([]byte, error) {
	key, ok := s.keyForRune(r)
	if !ok {
		return nil, fmt.Errorf("%s: %w", codepoint.Format(r), ErrNotFound)
	}
	return s.ReadGlyph(key)
}

// readRange reads an entry's bytes from the source.
func (s *Store) readRange(key string, ent Entry) ([]byte, error) {
	// Offset+Size can exceed MaxInt64, so compare without the sum.
	// Decode guarantees both are non-negative.
	if ent.Offset > s.source.Size()-ent.Size {
		return nil, fmt.Errorf("%s [%d, %d]: %w", key, ent.Offset, ent.Size, ErrCorruptIndex)
	}
	buf := make([]byte, ent.Size)
	sr := io.NewSectionReader(s.source, ent.Offset, ent.Size)
	if _, err := io.ReadFull(sr, buf); err != nil {
		return nil, fmt.Errorf("read glyph %s: %w", key, err)
	}
	return buf, nil
}

// runeTable builds the rune lookup table on first use. Unparseable keys
// are skipped; when two keys parse to the same codepoint the lexically
// later key wins.
func (s *Store) runeTable() map[rune]string {
	s.runesOnce.Do(func() {
		s.runeKeys = make(map[rune]string, len(s.idx))
		for _, key := range s.idx.Keys() {
			r, err := codepoint.Parse(key)
			if err != nil {
				s.log().Debug("skipping unparseable key", "key", key, "error", err)
				continue
			}
			s.runeKeys[r] = key
		}
	})
	return s.runeKeys
}

// keyForRune resolves a rune to its index key.
func (s *Store) keyForRune(r rune) (string, bool) {
	key, ok := s.runeTable()[r]
	return key, ok
}

// Keys returns all codepoint keys in sorted order.
func (s *Store) Keys() []string {
	return s.idx.Keys()
}

// Runes returns the codepoints of all parseable keys in sorted order.
func (s *Store) Runes() []rune {
	table := s.runeTable()
	runes := make([]rune, 0, len(table))
	for r := range table {
		runes = append(runes, r)
	}
	slices.Sort(runes)
	return runes
}

// Index returns a copy of the index map.
func (s *Store) Index() Index {
	return maps.Clone(s.idx)
}

// Len returns the number of glyphs in the store.
func (s *Store) Len() int {
	return s.idx.Len()
}

// Size returns the total size of the store blob in bytes.
func (s *Store) Size() int64 {
	return s.source.Size()
}

// Close releases the underlying store file or mapping, if any.
// Stores created from in-memory bytes have nothing to release.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
