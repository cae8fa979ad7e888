// Package config loads generator settings from .structlayout.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file looked up from the working
// directory upwards.
const FileName = ".structlayout.yaml"

// Config holds generator settings. Command line flags override it.
type Config struct {
	// BuildTag selects declaration files and is negated on generated files.
	BuildTag string `yaml:"build_tag,omitempty"`
	// Tags are extra build tags used when loading packages.
	Tags []string `yaml:"tags,omitempty"`
	// GOARCH is the target architecture for sizes and alignments.
	GOARCH string `yaml:"goarch,omitempty"`
	// Suffix is appended to a declaration file's base name to name its output.
	Suffix string `yaml:"suffix,omitempty"`
	// Concurrency bounds how many packages are generated at once.
	Concurrency int  `yaml:"concurrency,omitempty"`
	Verbose     bool `yaml:"verbose,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse parses YAML data into a Config. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.BuildTag == "" {
		c.BuildTag = "layoutgen"
	}
	if c.GOARCH == "" {
		c.GOARCH = runtime.GOARCH
	}
	if c.Suffix == "" {
		c.Suffix = "_layout"
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}
}

// Validate checks settings that would produce unusable output.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain a path separator", c.Suffix)
	}
	if strings.HasSuffix(c.Suffix, "_test") {
		return fmt.Errorf("suffix %q would produce test files", c.Suffix)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.BuildTag == "" || strings.ContainsAny(c.BuildTag, " ,!") {
		return fmt.Errorf("invalid build tag %q", c.BuildTag)
	}
	return nil
}

// BuildTags returns the tags to load declaration files with.
func (c *Config) BuildTags() []string {
	return append([]string{c.BuildTag}, c.Tags...)
}

// Find looks for FileName in dir and its parents.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load returns the config found from dir, or the defaults if there is none.
func Load(dir string) (*Config, string, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), "", nil
	}
	c, err := LoadFile(path)
	return c, path, err
}

// Marshal serializes a Config to YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes a Config to the given path.
func WriteFile(c *Config, path string) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
