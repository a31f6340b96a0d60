package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the report renderer.
type Format string

const (
	// FormatJSON is the machine-readable result contract.
	FormatJSON Format = "json"
	// FormatPretty is a colored listing with source context.
	FormatPretty Format = "pretty"
	// FormatYAML renders the result contract as YAML.
	FormatYAML Format = "yaml"
	// FormatShort prints one path:line:col line per diagnostic.
	FormatShort Format = "short"
)

// Formats lists the accepted --format values.
func Formats() []Format {
	return []Format{FormatJSON, FormatPretty, FormatYAML, FormatShort}
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, pretty, yaml or short)", s)
}

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAsGiven prints paths exactly as they were passed in.
	PathModeAsGiven PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string     // для PathModeRelative, пусто - текущий каталог
	Lines    LineSource // nil - без контекста строки
}

// JSONOpts configures JSON output of the result contract.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Color    bool // раскрасить ключи и значения для терминала
}

func formatPath(path string, mode PathMode, base string) string {
	if strings.Contains(path, "://") {
		return path
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			base = "."
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absBase, absPath); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}
