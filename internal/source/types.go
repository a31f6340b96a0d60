package source

type (
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the content did not come from disk (evaluator input, tests).
	FileVirtual FileFlags = 1 << iota
)

// File captures the content of a single source file as handed to the evaluator.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n' bytes
	Flags   FileFlags
}

// LineCol represents a position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 0-based, UTF-16 code units
}
