package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".catalogscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .catalogscan configuration file.
type File struct {
	Scrape  Scrape  `yaml:"scrape,omitempty"`
	Catalog Catalog `yaml:"catalog,omitempty"`
}

// LoadConfigFile parses a YAML configuration file. A missing file yields
// ErrConfigNotFound; callers decide whether that matters based on
// whether the path was given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .catalogscan in the current directory
// 3. Look for .catalogscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ApplyFile overlays the non-zero values of f onto c. A zero value in the
// file cannot override a default; use the environment or a flag for that.
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}
	if err := mergo.Merge(&c.Scrape, f.Scrape, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge scrape config: %w", err)
	}
	catalog, err := MergeCatalog(c.Catalog, f.Catalog)
	if err != nil {
		return err
	}
	c.Catalog = catalog
	return nil
}

// Load applies the config file to c. An explicitly named file must exist;
// a missing default file is not an error. It returns the path used, or
// "" when no file was applied.
func (c *Config) Load() (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	if err := c.ApplyFile(f); err != nil {
		return "", err
	}
	return path, nil
}
