package driver

import "strings"

// Filter drops every path that contains any of patterns as a substring.
// Matching is case-sensitive, order-independent and keeps the relative order
// of the surviving paths. Empty patterns are ignored.
func Filter(files, patterns []string) []string {
	active := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		out := make([]string, len(files))
		copy(out, files)
		return out
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if skipped(f, active) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func skipped(path string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
