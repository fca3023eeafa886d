package fontstore

// ProgressEvent represents a progress update during pack and unpack operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// Key is the codepoint key for the current glyph, if derived.
	Key string

	// BytesDone is the number of bytes completed in the current operation.
	BytesDone int64

	// BytesTotal is the total bytes for the current operation.
	// Zero indicates the total is unknown.
	BytesTotal int64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g. during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for pack and unpack operations.
const (
	// StageEnumerating indicates the operation is walking the source tree.
	StageEnumerating ProgressStage = iota

	// StagePacking indicates glyph bytes are being appended to the store.
	StagePacking

	// StageWritingIndex indicates the index is being serialized.
	StageWritingIndex

	// StageUnpacking indicates glyphs are being written back out as files.
	StageUnpacking
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StagePacking:
		return "packing"
	case StageWritingIndex:
		return "writing index"
	case StageUnpacking:
		return "unpacking"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
