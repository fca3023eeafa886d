//go:build unix

package fontstore

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mappedSource is a ByteSource backed by a read-only memory mapping.
// The size survives Close so bounds checks keep passing and reads report
// ErrStoreClosed instead.
type mappedSource struct {
	data []byte
	size int64
}

// openMapped maps the file at path into memory.
// mmap rejects zero-length mappings, so empty stores fall back to an
// empty in-memory source.
func openMapped(path string) (ByteSource, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat store file: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return bytes.NewReader(nil), nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("store file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap store file: %w", err)
	}
	// Glyph reads are effectively random access.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	return &mappedSource{data: data, size: size}, nil
}

// ReadAt implements io.ReaderAt with bytes.Reader semantics.
func (m *mappedSource) ReadAt(p []byte, off int64) (int, error) {
	if m.data == nil {
		return 0, ErrStoreClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("fontstore: negative read offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the size of the mapping.
func (m *mappedSource) Size() int64 {
	return m.size
}

// Close unmaps the file. Reads after Close return ErrStoreClosed.
func (m *mappedSource) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

var _ ByteSource = (*mappedSource)(nil)
