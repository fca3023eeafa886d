package fontstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/healeycodes/fontstore/internal/codepoint"
)

// UnpackStats reports the outcome of an unpack.
type UnpackStats struct {
	// FileCount is the number of glyph files written.
	FileCount int

	// Skipped is the number of glyphs skipped because the destination
	// file already existed.
	Skipped int

	// TotalBytes is the number of bytes written.
	TotalBytes int64
}

// Unpack writes every indexed glyph to destDir as an individual file.
//
// Filenames are the key's hex portion plus the configured extension, so
// "U+0041" becomes 0041.png. Files are written atomically via temp files
// and renames; existing files are skipped unless overwriting is enabled.
// The destination directory is created as needed.
//
// For a store produced by Pack with default settings, packing the unpacked
// destination with PackWithSortByCodepoint reproduces the same index.
func (s *Store) Unpack(ctx context.Context, destDir string, opts ...UnpackOption) (*UnpackStats, error) {
	cfg := unpackConfig{extension: DefaultExtension}
	for _, opt := range opts {
		opt(&cfg)
	}
	workers := cfg.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	keys := s.idx.Keys()
	var bytesTotal int64
	for _, key := range keys {
		bytesTotal += s.idx[key].Size
	}

	var written, skipped, byteCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			name, err := glyphFilename(key, cfg.extension)
			if err != nil {
				return err
			}
			destPath := filepath.Join(destDir, name)

			if !cfg.overwrite {
				if _, err := os.Stat(destPath); err == nil {
					skipped.Add(1)
					return nil
				}
			}

			content, err := s.ReadGlyph(key)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(destPath, content); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}

			written.Add(1)
			byteCount.Add(int64(len(content)))
			if cfg.progress != nil {
				cfg.progress(ProgressEvent{
					Stage:      StageUnpacking,
					Path:       name,
					Key:        key,
					BytesDone:  byteCount.Load(),
					BytesTotal: bytesTotal,
					FilesDone:  int(written.Load() + skipped.Load()),
					FilesTotal: len(keys),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &UnpackStats{
		FileCount:  int(written.Load()),
		Skipped:    int(skipped.Load()),
		TotalBytes: byteCount.Load(),
	}, nil
}

// glyphFilename maps a codepoint key to a destination filename, rejecting
// keys whose hex portion is not a plain file name.
func glyphFilename(key, ext string) (string, error) {
	hex, ok := strings.CutPrefix(key, codepoint.Prefix)
	if !ok || hex == "" {
		return "", &fs.PathError{Op: "unpack", Path: key, Err: fs.ErrInvalid}
	}
	name := hex + ext
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", &fs.PathError{Op: "unpack", Path: key, Err: fs.ErrInvalid}
	}
	return name, nil
}
