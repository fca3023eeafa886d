// Command buildfonts packs the glyph images under fonts/ into a store
// blob and index at fonts/dist/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/healeycodes/fontstore"
)

const (
	srcDir = "fonts"
	outDir = "fonts/dist"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger); err != nil {
		logger.Error("build failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	res, err := fontstore.Pack(context.Background(), srcDir, outDir,
		fontstore.PackWithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("fonts built",
		"glyphs", res.GlyphCount,
		"duplicates", res.Duplicates,
		"store_bytes", res.StoreSize,
		"digest", res.StoreDigest,
		"elapsed", res.Elapsed,
	)
	return nil
}
