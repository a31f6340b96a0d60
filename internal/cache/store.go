// Package cache keeps evaluation verdicts on disk, keyed by a digest of the
// profile and the prepared source.
package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Verdict format changes
const schemaVersion uint16 = 1

// ruleRevision is mixed into every key; bump it when the feature table changes.
const ruleRevision = 2

// Verdict is the cached outcome of evaluating one source under one profile.
type Verdict struct {
	Schema     uint16
	Conformant bool
	Code       uint16
	Line       int
	Column     int
	Excerpt    string
	Message    string
	Stored     int64 // unix seconds
}

// Store хранит вердикты по Digest на диске.
// Thread-safe for concurrent access.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a store at $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func Open(app string) (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a store rooted at dir.
func OpenAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

func (s *Store) pathFor(key Digest) string {
	hexKey := key.String()
	// два уровня, чтобы не класть тысячи файлов в один каталог
	return filepath.Join(s.dir, "verdicts", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a verdict.
func (s *Store) Put(key Digest, v *Verdict) error {
	if s == nil || v == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	payload := *v
	payload.Schema = schemaVersion
	payload.Stored = time.Now().Unix()
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a verdict. A missing entry or an entry written with another
// schema is reported as a miss.
func (s *Store) Get(key Digest, out *Verdict) (bool, error) {
	if s == nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var v Verdict
	if err := msgpack.NewDecoder(f).Decode(&v); err != nil {
		return false, err
	}
	if v.Schema != schemaVersion {
		return false, nil
	}
	*out = v
	return true, nil
}

// DropAll invalidates the cache.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := s.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(s.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(s.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}
