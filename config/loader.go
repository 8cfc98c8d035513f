package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = ".sitecheck.yaml"

// xdgConfigFile is the configuration file path relative to the XDG config dirs.
var xdgConfigFile = filepath.Join(AppName, "config.yaml")

// LoadFile decodes the YAML file at path on top of Default. Keys missing from
// the file keep their default value. If the file does not exist, it returns
// ErrConfigNotFound.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads YAML from r on top of Default. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// FindFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .sitecheck.yaml in the current directory
//  3. Look for sitecheck/config.yaml in the XDG config directories
//
// An explicit path that does not exist yields ErrConfigNotFound. Otherwise a
// missing file is not an error and the returned path is empty.
func FindFile(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return configPath, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig, nil
		}
	}

	if path, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return path, nil
	}

	return "", nil
}

// Load finds and loads the configuration file. With no file anywhere it
// returns Default and an empty path.
func Load(configPath string) (Config, string, error) {
	path, err := FindFile(configPath)
	if err != nil {
		return Config{}, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// XDGConfigPath returns the per-user configuration file location.
func XDGConfigPath() string {
	return filepath.Join(xdg.ConfigHome, xdgConfigFile)
}
