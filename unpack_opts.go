package fontstore

// unpackConfig holds configuration for unpacking.
type unpackConfig struct {
	extension string
	overwrite bool
	workers   int
	progress  ProgressFunc
}

// UnpackOption configures unpacking.
type UnpackOption func(*unpackConfig)

// UnpackWithExtension sets the extension for written glyph files, including
// the leading dot. Defaults to DefaultExtension.
func UnpackWithExtension(ext string) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.extension = ext
	}
}

// UnpackWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func UnpackWithOverwrite(overwrite bool) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.overwrite = overwrite
	}
}

// UnpackWithWorkers sets the number of workers writing glyph files.
// Values < 1 use GOMAXPROCS.
func UnpackWithWorkers(n int) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.workers = n
	}
}

// UnpackWithProgress sets a callback for progress updates during unpacking.
func UnpackWithProgress(fn ProgressFunc) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.progress = fn
	}
}
