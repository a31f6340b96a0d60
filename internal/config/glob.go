package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expansion is the outcome of expanding file patterns.
type Expansion struct {
	Files     []string // deduplicated, in pattern order then lexical order
	Unmatched []string // glob patterns that matched nothing
}

// HasMeta reports whether pattern contains glob syntax.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Expand resolves patterns into file paths using doublestar syntax, so "**"
// spans any number of directories. A pattern without glob syntax is kept
// verbatim even if the file does not exist, so the check can report it as
// unreadable. Remote URLs are never expanded.
func Expand(patterns []string) (Expansion, error) {
	var out Expansion
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out.Files = append(out.Files, p)
	}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, "://") || !HasMeta(pattern) {
			add(pattern)
			continue
		}
		matches, err := glob(pattern)
		if err != nil {
			return Expansion{}, err
		}
		if len(matches) == 0 {
			out.Unmatched = append(out.Unmatched, pattern)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// glob returns the regular files matching pattern in lexical order.
func glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
