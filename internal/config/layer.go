package config

import (
	"strings"

	"escheck/internal/ecma"
)

// Layer is the set of values one source provides. Nil and empty fields mean
// "not set here" so that a lower layer can fill them in.
type Layer struct {
	Source        string // where the values came from, for debug output
	Files         []string
	EcmaVersion   string
	Module        *bool
	AllowHashBang *bool
	Not           []string
}

// Settings is the merged, fully-defaulted configuration of a check.
type Settings struct {
	Files         []string
	EcmaVersion   string
	Module        bool
	AllowHashBang bool
	Not           []string
	Sources       []string // layers that contributed at least one value
}

// Merge folds layers ordered from highest to lowest precedence. Each field is
// taken from the first layer that sets it; an unset version falls back to
// ecma.DefaultVersion.
func Merge(layers ...*Layer) Settings {
	var s Settings
	var versionSet, moduleSet, hashbangSet, filesSet, notSet bool
	for _, l := range layers {
		if l == nil {
			continue
		}
		used := false
		if !filesSet && len(l.Files) > 0 {
			s.Files = append([]string(nil), l.Files...)
			filesSet, used = true, true
		}
		if !versionSet && strings.TrimSpace(l.EcmaVersion) != "" {
			s.EcmaVersion = strings.TrimSpace(l.EcmaVersion)
			versionSet, used = true, true
		}
		if !moduleSet && l.Module != nil {
			s.Module = *l.Module
			moduleSet, used = true, true
		}
		if !hashbangSet && l.AllowHashBang != nil {
			s.AllowHashBang = *l.AllowHashBang
			hashbangSet, used = true, true
		}
		if !notSet && len(l.Not) > 0 {
			s.Not = append([]string(nil), l.Not...)
			notSet, used = true, true
		}
		if used && l.Source != "" {
			s.Sources = append(s.Sources, l.Source)
		}
	}
	if !versionSet {
		s.EcmaVersion = string(ecma.DefaultVersion)
	}
	return s
}

// Profile resolves the merged version and flags.
func (s Settings) Profile() (ecma.Profile, error) {
	return ecma.Resolve(s.EcmaVersion, s.Module, s.AllowHashBang)
}

// SplitList flattens comma-separated entries ("a,b", "c") into trimmed,
// non-empty items.
func SplitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Bool returns a pointer to v, for building layers by hand.
func Bool(v bool) *bool { return &v }
