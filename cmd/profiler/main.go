// Command profiler exercises pack and read paths against synthetic glyph
// trees for CPU, heap, and wall-clock profiling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/felixge/fgprof"

	"github.com/healeycodes/fontstore"
)

// glyphBase starts synthetic glyphs in the CJK block, which has thousands
// of contiguous codepoints.
const glyphBase = 0x4E00

type config struct {
	mode       string
	files      int
	fileSize   int
	sorted     bool
	cache      bool
	mapped     bool
	readRandom bool
	cold       bool
	workers    int
	fgProfile  string
	duration   time.Duration
	iterations int
	pprofAddr  string
	cpuProfile string
	memProfile string
	traceFile  string
	tempDir    string
	keepTemp   bool
	randomSeed int64
}

//nolint:unused // sink variables prevent compiler optimizations in profiling
var (
	sinkBytes []byte
	sinkEntry fontstore.Entry
	sinkCount int
)

//nolint:gocognit // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	glyphDir := filepath.Join(dir, "glyphs")
	if err := makeGlyphs(glyphDir, cfg.files, cfg.fileSize, cfg.randomSeed); err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	s, err := buildStore(glyphDir, filepath.Join(dir, "dist"), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	var stopFG func() error
	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr)
		}
		stopFG = fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, s, glyphDir, dir)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s ops=%d bytes=%d elapsed=%s throughput=%.2f MB/s\n",
		cfg.mode,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.bytes)/(1024*1024)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

//nolint:gocognit,gocyclo,gocritic // complexity is inherent to multi-mode profiler dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, s *fontstore.Store, glyphDir, rootDir string) (profileStats, error) {
	keys := s.Keys()
	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	switch cfg.mode {
	case "pack":
		outDir := filepath.Join(rootDir, "pack-out")
		for shouldContinue() {
			res, err := fontstore.Pack(context.Background(), glyphDir, outDir, packOpts(cfg)...)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += res.StoreSize
			ops++
		}

	case "read":
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			key := pickKey(keys, ops, rng, cfg.readRandom)
			content, err := s.ReadGlyph(key)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = content
			byteCount += int64(len(content))
			ops++
		}

	case "read-hit":
		if !cfg.cache {
			return profileStats{}, errors.New("read-hit requires -cache")
		}
		for _, key := range keys {
			content, err := s.ReadGlyph(key)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = content
		}

		start = time.Now()
		ops = 0
		byteCount = 0
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			key := pickKey(keys, ops, rng, cfg.readRandom)
			content, err := s.ReadGlyph(key)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = content
			byteCount += int64(len(content))
			ops++
		}

	case "lookup":
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			key := pickKey(keys, ops, rng, cfg.readRandom)
			entry, ok := s.Lookup(key)
			if !ok {
				return profileStats{}, fmt.Errorf("missing entry for %q", key)
			}
			sinkEntry = entry
			ops++
		}

	case "lookup-rune":
		runes := s.Runes()
		if len(runes) == 0 {
			return profileStats{}, errors.New("store has no parseable codepoints")
		}
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			var r rune
			if cfg.readRandom {
				r = runes[rng.Intn(len(runes))]
			} else {
				r = runes[ops%len(runes)]
			}
			entry, ok := s.LookupRune(r)
			if !ok {
				return profileStats{}, fmt.Errorf("missing entry for U+%04X", r)
			}
			sinkEntry = entry
			ops++
		}

	case "verify":
		for shouldContinue() {
			report, err := s.Verify()
			if err != nil {
				return profileStats{}, err
			}
			sinkCount = report.GlyphCount
			byteCount += report.StoreSize
			ops++
		}

	case "unpack":
		opts := []fontstore.UnpackOption{fontstore.UnpackWithWorkers(cfg.workers)}
		if cfg.cold {
			for shouldContinue() {
				destDir := filepath.Join(rootDir, "unpack", fmt.Sprintf("iter-%d", ops))
				stats, err := s.Unpack(context.Background(), destDir, opts...)
				if err != nil {
					return profileStats{}, err
				}
				if err := os.RemoveAll(destDir); err != nil {
					return profileStats{}, err
				}
				byteCount += stats.TotalBytes
				ops++
			}
		} else {
			destDir := filepath.Join(rootDir, "unpack")
			warmOpts := append(opts, fontstore.UnpackWithOverwrite(true))
			for shouldContinue() {
				stats, err := s.Unpack(context.Background(), destDir, warmOpts...)
				if err != nil {
					return profileStats{}, err
				}
				byteCount += stats.TotalBytes
				ops++
			}
		}

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "read", "mode: read, read-hit, pack, lookup, lookup-rune, verify, unpack")
	flag.IntVar(&cfg.files, "files", 512, "number of glyph files")
	flag.IntVar(&cfg.fileSize, "file-size", 4<<10, "glyph file size in bytes")
	flag.BoolVar(&cfg.sorted, "sorted", false, "pack with codepoint sorting")
	flag.BoolVar(&cfg.cache, "cache", false, "enable the in-memory glyph cache")
	flag.BoolVar(&cfg.mapped, "mapped", false, "open the store memory-mapped")
	flag.BoolVar(&cfg.readRandom, "read-random", true, "randomize glyph selection")
	flag.BoolVar(&cfg.cold, "cold", false, "recreate the unpack destination each iteration")
	flag.IntVar(&cfg.workers, "workers", 0, "unpack workers: 0 auto, >0 fixed")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for dataset")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

func pickKey(keys []string, idx int, rng *rand.Rand, random bool) string {
	if random {
		return keys[rng.Intn(len(keys))]
	}
	return keys[idx%len(keys)]
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "fontstore-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// makeGlyphs writes count synthetic glyph files under dir.
func makeGlyphs(dir string, count, size int, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler temp dirs
		return err
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional for reproducible benchmarks
	content := make([]byte, size)
	for i := range count {
		if _, err := rng.Read(content); err != nil {
			return err
		}
		name := fmt.Sprintf("%04X%s", glyphBase+i, fontstore.DefaultExtension)
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil { //nolint:gosec // fixture files are not sensitive
			return err
		}
	}
	return nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func packOpts(cfg config) []fontstore.PackOption {
	var opts []fontstore.PackOption
	if cfg.sorted {
		opts = append(opts, fontstore.PackWithSortByCodepoint(true))
	}
	return opts
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func buildStore(glyphDir, outDir string, cfg config) (*fontstore.Store, error) {
	if _, err := fontstore.Pack(context.Background(), glyphDir, outDir, packOpts(cfg)...); err != nil {
		return nil, err
	}

	indexPath := filepath.Join(outDir, fontstore.DefaultIndexName)
	storePath := filepath.Join(outDir, fontstore.DefaultStoreName)

	var storeOpts []fontstore.StoreOption
	if cfg.cache {
		storeOpts = append(storeOpts, fontstore.StoreWithCache(true))
	}
	if cfg.mapped {
		return fontstore.OpenMapped(indexPath, storePath, storeOpts...)
	}
	return fontstore.Open(indexPath, storePath, storeOpts...)
}
