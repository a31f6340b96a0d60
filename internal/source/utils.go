package source

import (
	"path/filepath"
	"unicode/utf8"
)

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// lineStart returns the 0-based line number containing off and the offset where it begins.
func lineStart(lineIdx []uint32, off uint32) (int, uint32) {
	// бинпоиск: находим наибольший lineIdx[i] < off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if hi < 0 {
		return 0, 0
	}
	return hi + 1, lineIdx[hi] + 1
}

func toLineCol(content []byte, lineIdx []uint32, off uint32) LineCol {
	if int(off) > len(content) {
		off = uint32(len(content))
	}
	line, start := lineStart(lineIdx, off)
	return LineCol{Line: uint32(line + 1), Col: utf16Len(content[start:off])}
}

// utf16Len counts UTF-16 code units, the unit JavaScript tooling reports columns in.
func utf16Len(b []byte) uint32 {
	var n uint32
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
