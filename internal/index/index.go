// Package index defines the glyph index map and its JSON wire format.
package index

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrCorrupt is returned when index data is malformed or inconsistent
// with the store it describes.
var ErrCorrupt = errors.New("fontstore: corrupt index")

// Entry locates one glyph's bytes in the store blob.
//
// The JSON wire form is the two-element array [offset, size].
type Entry struct {
	// Offset is the byte offset in the store where the glyph begins.
	Offset int64

	// Size is the length of the glyph's bytes.
	Size int64
}

// End returns the offset of the first byte past the entry.
// The sum can overflow for entries that have not passed Validate.
func (e Entry) End() int64 {
	return e.Offset + e.Size
}

// MarshalJSON encodes the entry as [offset, size].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{e.Offset, e.Size})
}

// UnmarshalJSON decodes an [offset, size] pair, rejecting malformed
// shapes and negative values.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry must be [offset, size], got %d elements", len(pair))
	}
	if pair[0] < 0 || pair[1] < 0 {
		return fmt.Errorf("entry [%d, %d] has negative values", pair[0], pair[1])
	}
	e.Offset, e.Size = pair[0], pair[1]
	return nil
}

// Index maps codepoint keys to byte ranges in the store blob.
type Index map[string]Entry

// Decode parses a JSON index object.
// Documents that are not objects, including null, are rejected.
func Decode(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// A top-level null leaves the map nil without an unmarshal error.
	if idx == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrCorrupt)
	}
	return idx, nil
}

// Encode serializes the index as a JSON object with keys in sorted order.
// An empty or nil index encodes as {}.
func (idx Index) Encode() ([]byte, error) {
	if idx == nil {
		idx = Index{}
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return data, nil
}

// Len returns the number of entries.
func (idx Index) Len() int {
	return len(idx)
}

// Keys returns all codepoint keys in sorted order.
func (idx Index) Keys() []string {
	return slices.Sorted(maps.Keys(idx))
}

// Validate checks that every entry lies within a store of the given size
// and that no two entries overlap. Violations are reported with the
// offending keys and wrap ErrCorrupt.
func (idx Index) Validate(storeSize int64) error {
	keys := idx.Keys()
	for _, key := range keys {
		ent := idx[key]
		if ent.Offset < 0 || ent.Size < 0 {
			return fmt.Errorf("%w: %s [%d, %d] has negative values",
				ErrCorrupt, key, ent.Offset, ent.Size)
		}
		// Offset+Size can exceed MaxInt64, so compare without the sum.
		if ent.Offset > storeSize-ent.Size {
			return fmt.Errorf("%w: %s [%d, %d] exceeds store size %d",
				ErrCorrupt, key, ent.Offset, ent.Size, storeSize)
		}
	}

	// Sort non-empty ranges by offset and sweep for overlap. Zero-size
	// entries claim no bytes and cannot overlap anything.
	ranged := slices.DeleteFunc(keys, func(k string) bool {
		return idx[k].Size == 0
	})
	slices.SortFunc(ranged, func(a, b string) int {
		if c := cmp.Compare(idx[a].Offset, idx[b].Offset); c != 0 {
			return c
		}
		return cmp.Compare(idx[a].End(), idx[b].End())
	})
	for i := 1; i < len(ranged); i++ {
		prev, cur := idx[ranged[i-1]], idx[ranged[i]]
		if prev.End() > cur.Offset {
			return fmt.Errorf("%w: %s and %s overlap", ErrCorrupt, ranged[i-1], ranged[i])
		}
	}
	return nil
}
