// Package config holds the engine's runtime configuration: worker
// counts, output paths, crawl limits, stemmer exclusions, and the file
// inclusion patterns the builder walks with. Values come from an
// optional TOML file and are overridden by CLI flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	xerrors "github.com/mitch-ross/search-engine/internal/errors"
)

// DefaultThreads is the worker count used when threading is requested
// without a usable value.
const DefaultThreads = 5

// Config is the full engine configuration.
type Config struct {
	// Threads is the worker-pool size; 0 means run serially.
	Threads int `toml:"threads"`

	// Crawl is the maximum number of distinct URLs admitted per crawl.
	Crawl int `toml:"crawl"`

	// RateLimit is the maximum crawl fetches per second; 0 is unlimited.
	RateLimit float64 `toml:"rate_limit"`

	// Include lists doublestar globs selecting files to index. Empty
	// means the built-in .txt/.text suffix rule.
	Include []string `toml:"include"`

	// StemExclusions lists words the stemmer passes through unchanged.
	StemExclusions []string `toml:"stem_exclusions"`

	Output OutputConfig `toml:"output"`
}

// OutputConfig names the three JSON output files.
type OutputConfig struct {
	Counts  string `toml:"counts"`
	Index   string `toml:"index"`
	Results string `toml:"results"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Threads:   0,
		Crawl:     1,
		RateLimit: 0,
		Output: OutputConfig{
			Counts:  "counts.json",
			Index:   "index.json",
			Results: "results.json",
		},
	}
}

// Load reads a TOML config file, layering it over the defaults. A
// missing file yields the defaults; a malformed one is a ConfigError.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, xerrors.NewConfigError("path", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, xerrors.NewConfigError("file", path, err)
	}
	return cfg, nil
}

// Validate normalises and checks the configuration.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		c.Threads = DefaultThreads
	}
	if c.Crawl < 1 {
		c.Crawl = 1
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	for _, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			return xerrors.NewConfigError("include", pattern, os.ErrInvalid)
		}
	}
	return nil
}

// IncludesFile reports whether the filename should be indexed: it
// matches a configured include glob, or, with no globs configured, ends
// in .txt or .text case-insensitively.
func (c *Config) IncludesFile(path string) bool {
	if len(c.Include) > 0 {
		normalized := filepath.ToSlash(path)
		for _, pattern := range c.Include {
			if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
				return true
			}
		}
		return false
	}
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".text")
}
