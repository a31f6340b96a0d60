package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestFileName is the project manifest searched from the working directory upwards.
const ManifestFileName = "escheck.toml"

type manifestFile struct {
	Check checkTable `toml:"check"`
}

type checkTable struct {
	Files         []string `toml:"files"`
	EcmaVersion   string   `toml:"ecmaVersion"`
	Module        *bool    `toml:"module"`
	AllowHashBang *bool    `toml:"allowHashBang"`
	Not           []string `toml:"not"`
}

// FindManifest walks from startDir to the filesystem root looking for escheck.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes the nearest escheck.toml. Relative file
// globs are anchored at the manifest directory.
func LoadManifest(startDir string) (*Layer, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	l, err := loadManifestFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return l, true, nil
}

func loadManifestFile(path string) (*Layer, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("check") {
		return nil, fmt.Errorf("%s: missing [check]", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	root := filepath.Dir(path)
	files := SplitList(cfg.Check.Files)
	for i, f := range files {
		if !filepath.IsAbs(f) && !strings.Contains(f, "://") {
			files[i] = filepath.Join(root, filepath.FromSlash(f))
		}
	}
	return &Layer{
		Source:        path,
		Files:         files,
		EcmaVersion:   cfg.Check.EcmaVersion,
		Module:        cfg.Check.Module,
		AllowHashBang: cfg.Check.AllowHashBang,
		Not:           SplitList(cfg.Check.Not),
	}, nil
}
