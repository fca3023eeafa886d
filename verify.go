package fontstore

import (
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

// Report summarizes the integrity of a store and its index.
type Report struct {
	// GlyphCount is the number of index entries.
	GlyphCount int

	// StoreSize is the total size of the store blob in bytes.
	StoreSize int64

	// ReferencedBytes is the number of store bytes covered by index entries.
	ReferencedBytes int64

	// OrphanedBytes is the number of store bytes no entry references.
	// Packs that resolved duplicate keys leave the displaced bytes here.
	OrphanedBytes int64

	// StoreDigest is the digest of the store blob bytes.
	StoreDigest digest.Digest
}

// Verify checks the index against the store blob.
//
// Every entry must lie within the store and no two entries may overlap;
// violations return an error wrapping ErrCorruptIndex. The returned report
// includes the store digest and the orphaned byte count left behind by
// duplicate-key packs.
func (s *Store) Verify() (*Report, error) {
	size := s.source.Size()
	if err := s.idx.Validate(size); err != nil {
		return nil, err
	}

	var referenced int64
	for _, ent := range s.idx {
		referenced += ent.Size
	}

	dgst, err := digest.FromReader(io.NewSectionReader(s.source, 0, size))
	if err != nil {
		return nil, fmt.Errorf("digest store: %w", err)
	}

	return &Report{
		GlyphCount:      s.idx.Len(),
		StoreSize:       size,
		ReferencedBytes: referenced,
		OrphanedBytes:   size - referenced,
		StoreDigest:     dgst,
	}, nil
}
