package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional gather configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Roots    RootsConfig    `toml:"roots"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields distinguish
// "unset" from an explicit false/empty, so CLI flags always win.
type DefaultsConfig struct {
	Verbose       *bool   `toml:"verbose"`
	Quiet         *bool   `toml:"quiet"`
	DryRun        *bool   `toml:"dry_run"`
	PreserveTimes *bool   `toml:"preserve_times"`
	Log           *string `toml:"log"`
}

// RootsConfig preconfigures the destination and source roots so gather can
// run without positional arguments.
type RootsConfig struct {
	Dest    string   `toml:"dest"`
	Sources []string `toml:"sources"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gather", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return loadOptional(path)
}

// LoadFile reads the config file at an explicit path. Unlike Load, a
// missing file is an error: the caller asked for that specific file.
func LoadFile(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadOptional(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
