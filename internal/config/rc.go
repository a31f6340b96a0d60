package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// RCFileName is the JSON configuration file looked up in the working directory.
const RCFileName = ".escheckrc"

// EnvPrefix namespaces environment overrides: ESCHECK_ECMAVERSION, ESCHECK_MODULE, ...
const EnvPrefix = "ESCHECK"

var rcKeys = []string{"files", "ecmaVersion", "module", "allowHashBang", "not"}

// LoadRC reads dir/.escheckrc when it exists and overlays ESCHECK_*
// environment variables on top of it. The returned layer is empty when
// neither source sets anything.
func LoadRC(dir string) (*Layer, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range rcKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	source := ""
	rcPath := filepath.Join(dir, RCFileName)
	if info, err := os.Stat(rcPath); err == nil && !info.IsDir() {
		v.SetConfigFile(rcPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: failed to parse JSON: %w", rcPath, err)
		}
		source = rcPath
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %q: %w", rcPath, err)
	}

	l := &Layer{Source: source}
	if v.IsSet("files") {
		l.Files = SplitList(v.GetStringSlice("files"))
	}
	if v.IsSet("ecmaVersion") {
		l.EcmaVersion = v.GetString("ecmaVersion")
	}
	if v.IsSet("module") {
		l.Module = Bool(v.GetBool("module"))
	}
	if v.IsSet("allowHashBang") {
		l.AllowHashBang = Bool(v.GetBool("allowHashBang"))
	}
	if v.IsSet("not") {
		l.Not = SplitList(v.GetStringSlice("not"))
	}
	if source == "" && !l.defined() {
		return &Layer{}, nil
	}
	if source == "" {
		l.Source = "env"
	}
	return l, nil
}

func (l *Layer) defined() bool {
	return len(l.Files) > 0 || l.EcmaVersion != "" || l.Module != nil || l.AllowHashBang != nil || len(l.Not) > 0
}
