package fontstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/healeycodes/fontstore/internal/codepoint"
	"github.com/healeycodes/fontstore/internal/index"
)

// DefaultMaxFiles is the default limit used when no MaxFiles option is set.
const DefaultMaxFiles = 200_000

// Default artifact names and the default glyph file extension.
const (
	DefaultStoreName = "fonts.store"
	DefaultIndexName = "fonts.json"
	DefaultExtension = ".png"
)

// PackResult summarizes a completed pack.
type PackResult struct {
	// GlyphCount is the number of index entries written.
	GlyphCount int

	// Duplicates is the number of source files whose codepoint key was
	// already taken by an earlier file. Each displaced predecessor's bytes
	// remain in the store as orphans.
	Duplicates int

	// StoreSize is the total size of the store blob in bytes.
	StoreSize int64

	// StoreDigest is the digest of the store blob bytes.
	StoreDigest digest.Digest

	// Elapsed is the wall-clock duration of the pack.
	Elapsed time.Duration
}

// Pack builds a glyph store from the image files under srcDir.
//
// The output directory is destroyed and recreated, then the store blob and
// JSON index are written into it (fonts.store and fonts.json by default).
// Source files are matched by extension (.png by default) and collected
// recursively; each file's bytes are appended to the store unmodified and
// its codepoint key is recorded with the resulting [offset, size] range.
//
// Keys are derived from the first four characters of each base filename.
// When two files derive the same key the later file wins and the earlier
// bytes are orphaned in the store; use PackWithStrictKeys to fail instead.
// Traversal order is not part of the contract; use PackWithSortByCodepoint
// for a reproducible store layout.
//
// Both artifacts are written via temp files and renames, so readers of a
// previous pack never observe a partially written file. The context can be
// used for cancellation between files.
func Pack(ctx context.Context, srcDir, outDir string, opts ...PackOption) (*PackResult, error) {
	cfg := packConfig{
		extension: DefaultExtension,
		storeName: DefaultStoreName,
		indexName: DefaultIndexName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &packer{cfg: cfg, logger: cfg.logger}
	p.log().Info("packing glyphs", "src", srcDir, "out", outDir, "extension", cfg.extension)
	start := time.Now()

	// Reset the output before enumeration so an output directory nested
	// under srcDir never contributes source files.
	if err := resetDir(outDir); err != nil {
		return nil, fmt.Errorf("reset output directory: %w", err)
	}

	root, err := os.OpenRoot(srcDir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	paths, err := p.enumerate(ctx, root)
	if err != nil {
		return nil, err
	}
	p.log().Debug("glyphs enumerated", "file_count", len(paths))

	if cfg.sortByCodepoint {
		sortByKey(paths)
	}

	storePath := filepath.Join(outDir, cfg.storeName)
	res, idx, err := p.writeStore(ctx, root, storePath, paths)
	if err != nil {
		return nil, err
	}

	p.reportProgress(StageWritingIndex, "", "", res.StoreSize, res.StoreSize, len(paths), len(paths))
	indexData, err := idx.Encode()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(outDir, cfg.indexName), indexData); err != nil {
		// Do not leave a store without its index behind.
		os.Remove(storePath)
		return nil, fmt.Errorf("write index file: %w", err)
	}

	res.Elapsed = time.Since(start)
	p.log().Debug("glyphs packed",
		"glyph_count", res.GlyphCount,
		"duplicates", res.Duplicates,
		"store_size", res.StoreSize,
		"store_digest", res.StoreDigest,
	)
	return res, nil
}

// packer holds state for store packing.
type packer struct {
	cfg    packConfig
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *packer) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// reportProgress sends a progress event if a callback is configured.
func (p *packer) reportProgress(stage ProgressStage, path, key string, bytesDone, bytesTotal int64, filesDone, filesTotal int) {
	if p.cfg.progress == nil {
		return
	}
	p.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		Key:        key,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// enumerate walks the source tree and collects matching file paths in
// traversal order.
func (p *packer) enumerate(ctx context.Context, root *os.Root) ([]string, error) {
	maxFiles := p.cfg.maxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	p.reportProgress(StageEnumerating, "", "", 0, 0, 0, 0)

	paths := make([]string, 0, 1024)
	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), p.cfg.extension) {
			return nil
		}
		if maxFiles > 0 && len(paths) >= maxFiles {
			return ErrTooManyFiles
		}
		paths = append(paths, path)
		p.reportProgress(StageEnumerating, path, "", 0, 0, len(paths), 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// writeStore appends each file's bytes to the store blob, building the
// index as offsets accumulate. The store is written to a temp file and
// renamed into place when complete.
func (p *packer) writeStore(ctx context.Context, root *os.Root, storePath string, paths []string) (*PackResult, index.Index, error) {
	tmp, err := os.CreateTemp(filepath.Dir(storePath), ".fontstore-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create store temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	digester := digest.Canonical.Digester()
	w := io.MultiWriter(tmp, digester.Hash())
	buf := make([]byte, 32*1024)

	idx := index.Index{}
	seen := make(map[string]string, len(paths))
	var totalBytes int64
	duplicates := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		key := codepoint.FromFilename(path)
		if prev, ok := seen[key]; ok {
			if p.cfg.strictKeys {
				return nil, nil, fmt.Errorf("%s: %s collides with %s: %w", key, path, prev, ErrDuplicateKey)
			}
			duplicates++
			p.log().Warn("duplicate codepoint key", "key", key, "path", path, "previous", prev)
		}

		n, err := p.writeGlyph(root, w, buf, path)
		if err != nil {
			return nil, nil, err
		}
		if n > math.MaxInt64-totalBytes {
			return nil, nil, ErrSizeOverflow
		}

		idx[key] = index.Entry{Offset: totalBytes, Size: n}
		seen[key] = path
		totalBytes += n
		p.reportProgress(StagePacking, path, key, totalBytes, 0, i+1, len(paths))
	}

	if err := tmp.Close(); err != nil {
		return nil, nil, fmt.Errorf("close store temp file: %w", err)
	}
	if err := os.Rename(tmpPath, storePath); err != nil {
		return nil, nil, fmt.Errorf("rename store file: %w", err)
	}
	success = true

	return &PackResult{
		GlyphCount:  idx.Len(),
		Duplicates:  duplicates,
		StoreSize:   totalBytes,
		StoreDigest: digester.Digest(),
	}, idx, nil
}

// writeGlyph copies a single file's bytes to the store writer.
func (p *packer) writeGlyph(root *os.Root, w io.Writer, buf []byte, path string) (int64, error) {
	f, err := root.Open(filepath.FromSlash(path))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", path)
	}

	n, err := io.CopyBuffer(w, f, buf)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}

// sortByKey orders paths by their derived codepoint key, then by path so
// key collisions resolve deterministically.
func sortByKey(paths []string) {
	slices.SortFunc(paths, func(a, b string) int {
		if c := strings.Compare(codepoint.FromFilename(a), codepoint.FromFilename(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// resetDir removes dir and everything under it, then recreates it.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o750)
}
