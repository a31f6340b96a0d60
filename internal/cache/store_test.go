package cache

import (
	"os"
	"path/filepath"
	"testing"

	"escheck/internal/ecma"
)

func profile(t *testing.T, id string, module bool) ecma.Profile {
	t.Helper()
	p, err := ecma.Resolve(id, module, false)
	if err != nil {
		t.Fatalf("resolve %s: %v", id, err)
	}
	return p
}

func TestKeyDependsOnProfileAndSource(t *testing.T) {
	src := []byte("var a = 1;")
	es5, err := Key(profile(t, "es5", false), src)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Key(profile(t, "es5", false), src)
	if es5 != again {
		t.Fatalf("key is not stable")
	}
	alias, _ := Key(profile(t, "es2015", false), src)
	es6, _ := Key(profile(t, "es6", false), src)
	if alias != es6 {
		t.Fatalf("aliases must share a key")
	}
	if es5 == es6 {
		t.Fatalf("levels must not share a key")
	}
	module, _ := Key(profile(t, "es5", true), src)
	if module == es5 {
		t.Fatalf("module flag must change the key")
	}
	other, _ := Key(profile(t, "es5", false), []byte("var a = 2;"))
	if other == es5 {
		t.Fatalf("source must change the key")
	}
	if es5.IsZero() {
		t.Fatalf("digest is zero")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key, _ := Key(profile(t, "es5", false), []byte("let a;"))

	var got Verdict
	ok, err := s.Get(key, &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := Verdict{Code: 2004, Line: 1, Column: 0, Excerpt: "let a;", Message: "let/const declaration requires es2015 or later (1:0)"}
	if err := s.Put(key, &want); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Get(key, &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Conformant || got.Code != want.Code || got.Message != want.Message || got.Excerpt != want.Excerpt {
		t.Fatalf("verdict mismatch: %+v", got)
	}
	if got.Schema != schemaVersion || got.Stored == 0 {
		t.Fatalf("metadata not stamped: %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(s.pathFor(key)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestStoreDropAll(t *testing.T) {
	s, err := OpenAt(filepath.Join(t.TempDir(), "escheck"))
	if err != nil {
		t.Fatal(err)
	}
	key, _ := Key(profile(t, "es2020", true), []byte("export {};"))
	if err := s.Put(key, &Verdict{Conformant: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.DropAll(); err != nil {
		t.Fatal(err)
	}
	var v Verdict
	if ok, _ := s.Get(key, &v); ok {
		t.Fatalf("entry survived DropAll")
	}
	if err := s.Put(key, &Verdict{Conformant: true}); err != nil {
		t.Fatalf("store unusable after DropAll: %v", err)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Put(Digest{}, &Verdict{}); err != nil {
		t.Fatal(err)
	}
	var v Verdict
	if ok, err := s.Get(Digest{}, &v); ok || err != nil {
		t.Fatalf("nil store must miss quietly")
	}
}

func TestOpenUsesXDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	s, err := Open("escheck")
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir() != filepath.Join(base, "escheck") {
		t.Fatalf("dir = %s", s.Dir())
	}
}
