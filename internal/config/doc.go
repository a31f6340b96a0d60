// Package config gathers check settings from the places a user can put them:
// command-line flags, a .escheckrc JSON file (plus ESCHECK_* environment
// variables) and an escheck.toml project manifest. It also expands the file
// globs those settings name.
package config
