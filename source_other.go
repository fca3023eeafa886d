//go:build !unix

package fontstore

import (
	"fmt"
	"os"
)

// openMapped opens a plain file source on platforms without unix mmap.
func openMapped(path string) (ByteSource, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	src, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}
