package source

import (
	"strings"
	"unicode/utf8"
)

// NewFile wraps content read from path and indexes its lines.
func NewFile(path string, content []byte, flags FileFlags) *File {
	if path != "" {
		path = normalizePath(path)
	}
	return &File{
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	}
}

// Position converts a byte offset into a line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.Content, f.LineIdx, off)
}

// LineCount returns the number of lines, counting a trailing unterminated line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// GetLine returns line lineNum (1-based) without its terminator, or "" when out of range.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > f.LineCount() {
		return ""
	}
	var start uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	end := uint32(len(f.Content))
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return strings.TrimSuffix(string(f.Content[start:end]), "\r")
}

// Excerpt returns the text in [start, end) cut at the first line break and at
// maxRunes runes. An empty range yields the rest of the line starting at start.
func (f *File) Excerpt(start, end uint32, maxRunes int) string {
	size := uint32(len(f.Content))
	if start > size {
		start = size
	}
	if end > size || end < start {
		end = size
	}
	if end == start {
		end = size
	}
	text := string(f.Content[start:end])
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		runes := []rune(text)
		text = string(runes[:maxRunes])
	}
	return text
}
