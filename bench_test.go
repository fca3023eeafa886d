package fontstore

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

var (
	benchSinkBytes []byte
	benchSinkEntry Entry
)

// benchGlyphBase starts bench fixtures in the CJK block, which has
// thousands of contiguous codepoints.
const benchGlyphBase = 0x4E00

func init() {
	if os.Getenv("FONTSTORE_PROFILE_BLOCK") == "1" {
		runtime.SetBlockProfileRate(1)
	}
	if os.Getenv("FONTSTORE_PROFILE_MUTEX") == "1" {
		runtime.SetMutexProfileFraction(1)
	}
}

// makeBenchGlyphs writes fileCount glyph fixtures under dir and returns
// their codepoint keys.
func makeBenchGlyphs(b *testing.B, dir string, fileCount, fileSize int) []string {
	b.Helper()

	keys := make([]string, 0, fileCount)
	rng := rand.New(rand.NewSource(1))
	content := make([]byte, fileSize)
	for i := range fileCount {
		if _, err := rng.Read(content); err != nil {
			b.Fatal(err)
		}
		name := fmt.Sprintf("%04X.png", benchGlyphBase+i)
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			b.Fatal(err)
		}
		keys = append(keys, fmt.Sprintf("U+%04X", benchGlyphBase+i))
	}
	return keys
}

// createBenchStore packs fileCount glyphs and opens the result.
func createBenchStore(b *testing.B, fileCount, fileSize int, mapped bool, opts ...StoreOption) (*Store, []string) {
	b.Helper()

	srcDir := b.TempDir()
	keys := makeBenchGlyphs(b, srcDir, fileCount, fileSize)

	outDir := filepath.Join(b.TempDir(), "dist")
	if _, err := Pack(context.Background(), srcDir, outDir); err != nil {
		b.Fatal(err)
	}

	indexPath := filepath.Join(outDir, DefaultIndexName)
	storePath := filepath.Join(outDir, DefaultStoreName)

	var s *Store
	var err error
	if mapped {
		s, err = OpenMapped(indexPath, storePath, opts...)
	} else {
		s, err = Open(indexPath, storePath, opts...)
	}
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { s.Close() })
	return s, keys
}

func BenchmarkPack(b *testing.B) {
	cases := []struct {
		name      string
		fileCount int
		fileSize  int
		opts      []PackOption
	}{
		{name: "files=256/size=4k", fileCount: 256, fileSize: 4 << 10},
		{name: "files=1024/size=4k", fileCount: 1024, fileSize: 4 << 10},
		{name: "files=256/size=64k", fileCount: 256, fileSize: 64 << 10},
		{
			name:      "files=256/size=4k/sorted",
			fileCount: 256,
			fileSize:  4 << 10,
			opts:      []PackOption{PackWithSortByCodepoint(true)},
		},
	}

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			srcDir := b.TempDir()
			makeBenchGlyphs(b, srcDir, bc.fileCount, bc.fileSize)
			outDir := filepath.Join(b.TempDir(), "dist")

			b.SetBytes(int64(bc.fileCount * bc.fileSize))
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := Pack(context.Background(), srcDir, outDir, bc.opts...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReadGlyph(b *testing.B) {
	cases := []struct {
		name   string
		mapped bool
		opts   []StoreOption
	}{
		{name: "files=256/size=4k/file"},
		{name: "files=256/size=4k/mapped", mapped: true},
		{name: "files=256/size=4k/cached", opts: []StoreOption{StoreWithCache(true)}},
	}

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			s, keys := createBenchStore(b, 256, 4<<10, bc.mapped, bc.opts...)

			b.SetBytes(4 << 10)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; b.Loop(); i++ {
				content, err := s.ReadGlyph(keys[i%len(keys)])
				if err != nil {
					b.Fatal(err)
				}
				benchSinkBytes = content
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	s, keys := createBenchStore(b, 1024, 16, false)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		entry, ok := s.Lookup(keys[i%len(keys)])
		if !ok {
			b.Fatalf("missing entry for %q", keys[i%len(keys)])
		}
		benchSinkEntry = entry
	}
}

func BenchmarkLookupRune(b *testing.B) {
	s, keys := createBenchStore(b, 1024, 16, false)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		entry, ok := s.LookupRune(rune(benchGlyphBase + i%len(keys)))
		if !ok {
			b.Fatal("missing rune entry")
		}
		benchSinkEntry = entry
	}
}

func BenchmarkVerify(b *testing.B) {
	s, _ := createBenchStore(b, 256, 4<<10, false)

	b.SetBytes(s.Size())
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := s.Verify(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnpack(b *testing.B) {
	s, _ := createBenchStore(b, 256, 4<<10, false)
	destDir := b.TempDir()

	b.SetBytes(s.Size())
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := s.Unpack(context.Background(), destDir, UnpackWithOverwrite(true)); err != nil {
			b.Fatal(err)
		}
	}
}
