package source

import "bytes"

// HashbangMarker starts an interpreter directive line ("#!/usr/bin/env node").
var HashbangMarker = []byte("#!")

// HasHashbang reports whether content begins with the interpreter directive marker.
func HasHashbang(content []byte) bool {
	return bytes.HasPrefix(content, HashbangMarker)
}

// Prepare readies raw text for grammar evaluation.
//
// Without allowHashbang the input is returned as is: a leading "#!" line stays
// and the grammar reports it. With allowHashbang a leading "#!" becomes "//", so
// the line turns into a comment. The output always has the same length and line
// breaks as raw, therefore every offset, line and column still points at the
// original text. raw itself is never modified. hadHashbang reports the marker
// whether or not it was neutralised.
func Prepare(raw []byte, allowHashbang bool) (prepared []byte, hadHashbang bool) {
	hadHashbang = HasHashbang(raw)
	if !allowHashbang || !hadHashbang {
		return raw, hadHashbang
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	out[0], out[1] = '/', '/'
	return out, true
}
