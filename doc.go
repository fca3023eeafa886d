// Package fontstore packs glyph image files into a single store blob plus
// a JSON index, and reads glyphs back out of the pair.
//
// A store is the raw concatenation of glyph file contents. The index maps
// codepoint keys like "U+0041" to [offset, size] byte ranges in the store.
// Keys are derived from the first four characters of each source file's
// base name, so a tree containing 0041.png and 0042.png packs to an index
// of "U+0041" and "U+0042".
//
// # Packing
//
// Pack a directory of glyph images:
//
//	res, err := fontstore.Pack(ctx, "fonts", "fonts/dist")
//	if err != nil {
//	    return err
//	}
//
// The output directory is destroyed and recreated on every pack. Duplicate
// codepoint keys are resolved last-write-wins; the earlier glyph's bytes
// remain in the store as orphans. Use PackWithStrictKeys to fail instead.
//
// # Reading
//
// Open a packed store and read glyph bytes:
//
//	s, err := fontstore.Open("fonts/dist/fonts.json", "fonts/dist/fonts.store")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	png, err := s.ReadGlyph("U+0041")
//
// Embedded consumers can construct a Store directly from bytes:
//
//	s, err := fontstore.NewFromBytes(indexData, storeData)
package fontstore
