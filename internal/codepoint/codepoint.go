// Package codepoint derives and parses the U+XXXX keys that identify
// glyphs in a font store index.
package codepoint

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Prefix marks a string as a codepoint key.
const Prefix = "U+"

// keyChars is the number of leading filename characters that form a key.
const keyChars = 4

// FromFilename derives the codepoint key for a glyph file.
//
// The key is Prefix plus the first four characters of the file's base name,
// exactly as they appear on disk. No hex validation or case folding is
// performed, so "03a9.png" and "03A9.png" produce distinct keys. Base names
// shorter than four characters contribute all of their characters.
func FromFilename(path string) string {
	base := filepath.Base(path)
	runes := []rune(base)
	if len(runes) > keyChars {
		runes = runes[:keyChars]
	}
	return Prefix + string(runes)
}

// Format returns the canonical key for a rune, e.g. "U+0041".
// Codepoints above U+FFFF format to more than four hex digits and will not
// match keys derived from four-character filenames.
func Format(r rune) string {
	return fmt.Sprintf("%s%04X", Prefix, r)
}

// Parse extracts the rune from a key such as "U+0041" or "U+03a9".
// Both hex cases are accepted.
func Parse(key string) (rune, error) {
	hex, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return 0, fmt.Errorf("codepoint key %q: missing %s prefix", key, Prefix)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("codepoint key %q: %w", key, err)
	}
	if v > utf8.MaxRune {
		return 0, fmt.Errorf("codepoint key %q: value out of range", key)
	}
	return rune(v), nil
}
