package ecma

import (
	"fmt"
	"strings"
)

// VersionID is a user-facing edition identifier such as "es5" or "es2016".
type VersionID string

// DefaultVersion is used when neither the command line nor configuration names one.
const DefaultVersion VersionID = "es5"

// edition is one row of the registry: all ids share one grammar level.
type edition struct {
	level int
	ids   []VersionID // ids[0] is canonical
}

// editions is ordered by level. Keep aliases of one year in the same row.
var editions = []edition{
	{level: 3, ids: []VersionID{"es3"}},
	{level: 4, ids: []VersionID{"es4"}},
	{level: 5, ids: []VersionID{"es5"}},
	{level: 6, ids: []VersionID{"es2015", "es6"}},
	{level: 7, ids: []VersionID{"es2016", "es7"}},
	{level: 8, ids: []VersionID{"es2017", "es8"}},
	{level: 9, ids: []VersionID{"es2018", "es9"}},
	{level: 10, ids: []VersionID{"es2019", "es10"}},
	{level: 11, ids: []VersionID{"es2020", "es11"}},
	{level: 12, ids: []VersionID{"es2021", "es12"}},
	{level: 13, ids: []VersionID{"es2022", "es13"}},
	{level: 14, ids: []VersionID{"es2023", "es14"}},
	{level: 15, ids: []VersionID{"es2024", "es15"}},
	{level: 16, ids: []VersionID{"es2025", "es16"}},
}

var (
	byID    = make(map[VersionID]int)
	byLevel = make(map[int]VersionID)
)

func init() {
	for _, e := range editions {
		byLevel[e.level] = e.ids[0]
		for _, id := range e.ids {
			if _, dup := byID[id]; dup {
				panic(fmt.Sprintf("ecma: duplicate version id %q", id))
			}
			byID[id] = e.level
		}
	}
}

// UnknownVersionError reports an identifier missing from the registry.
type UnknownVersionError struct {
	ID string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown ecmaVersion %q (expected one of %s)", e.ID, strings.Join(Versions(), ", "))
}

// Profile is a resolved grammar configuration for one check run.
type Profile struct {
	id            VersionID
	level         int
	module        bool
	allowHashbang bool
}

// Resolve looks up id and combines it with the module and hashbang switches.
func Resolve(id string, module, allowHashbang bool) (Profile, error) {
	norm := Normalize(id)
	level, ok := byID[norm]
	if !ok {
		return Profile{}, &UnknownVersionError{ID: id}
	}
	return Profile{
		id:            norm,
		level:         level,
		module:        module,
		allowHashbang: allowHashbang,
	}, nil
}

// Normalize trims and lower-cases an identifier; "ES2015" and " es2015 " are the same id.
func Normalize(id string) VersionID {
	return VersionID(strings.ToLower(strings.TrimSpace(id)))
}

// Known reports whether id resolves to an edition.
func Known(id string) bool {
	_, ok := byID[Normalize(id)]
	return ok
}

// Canonical returns the canonical id for a grammar level, or "" if none.
func Canonical(level int) VersionID {
	return byLevel[level]
}

// Versions lists every accepted id, edition by edition.
func Versions() []string {
	out := make([]string, 0, len(byID))
	for _, e := range editions {
		for _, id := range e.ids {
			out = append(out, string(id))
		}
	}
	return out
}

// Aliases returns all ids of the edition at level, canonical first.
func Aliases(level int) []VersionID {
	for _, e := range editions {
		if e.level == level {
			return append([]VersionID(nil), e.ids...)
		}
	}
	return nil
}

// Latest is the highest grammar level in the registry.
func Latest() int {
	return editions[len(editions)-1].level
}

// ID returns the identifier the profile was resolved from.
func (p Profile) ID() VersionID { return p.id }

// Level is the numeric grammar level (3, 5, 6 ... 16).
func (p Profile) Level() int { return p.level }

// Module reports whether module grammar (import/export, strict mode) applies.
func (p Profile) Module() bool { return p.module }

// AllowHashbang reports whether a leading "#!" line is tolerated.
func (p Profile) AllowHashbang() bool { return p.allowHashbang }

// Valid is false for the zero Profile.
func (p Profile) Valid() bool { return p.level != 0 }

// SourceType mirrors the "script"/"module" switch of JavaScript parsers.
func (p Profile) SourceType() string {
	if p.module {
		return "module"
	}
	return "script"
}

func (p Profile) String() string {
	return fmt.Sprintf("%s(level=%d, sourceType=%s, hashbang=%t)", p.id, p.level, p.SourceType(), p.allowHashbang)
}

// WithLevel returns a copy of p evaluated at another registered level.
// It exists for property checks that compare editions; ok is false for unknown levels.
func (p Profile) WithLevel(level int) (Profile, bool) {
	id, ok := byLevel[level]
	if !ok {
		return Profile{}, false
	}
	p.id = id
	p.level = level
	return p, true
}
