// Package verify wires symbol extraction, candidate search, aggregation and
// reporting into complete verification runs.
package verify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/portlint/portlint/internal/artifact"
	"github.com/portlint/portlint/internal/search"
)

// Policy decides how a run's pass/fail outcome maps to the process exit code.
type Policy string

const (
	// PolicyGating fails the process when coverage is below the threshold.
	PolicyGating Policy = "gating"
	// PolicyAdvisory always succeeds; the report is informational only.
	PolicyAdvisory Policy = "advisory"
)

const (
	DefaultConfigFile    = ".portlint.yaml"
	DefaultThreshold     = 90.0
	DefaultDiscoverLimit = 10
)

// Config drives a verification run.
type Config struct {
	Title      string          `yaml:"title"`
	Reference  ReferenceConfig `yaml:"reference"`
	Candidates []search.Target `yaml:"candidates"`
	Threshold  float64         `yaml:"threshold"`
	Policy     Policy          `yaml:"policy"`
	Artifacts  artifact.Paths  `yaml:"artifacts"`
	Search     SearchConfig    `yaml:"search"`
}

// ReferenceConfig selects the reference modules to analyze: an explicit list,
// an auto-discovery rule, or both. Explicit modules keep their listed order;
// discovered modules follow in directory order, deduplicated against the
// explicit list.
type ReferenceConfig struct {
	Root     string         `yaml:"root"`
	Modules  []string       `yaml:"modules"`
	Discover DiscoverConfig `yaml:"discover"`
}

// DiscoverConfig bounds module auto-discovery. Dir roots the recursive scan
// at a subdirectory of the reference root (empty means the root itself), and
// Limit caps how many modules a run picks up so reports stay readable on
// large reference trees.
type DiscoverConfig struct {
	Enabled bool     `yaml:"enabled"`
	Dir     string   `yaml:"dir"`
	Pattern string   `yaml:"pattern"`
	Exclude []string `yaml:"exclude"`
	Limit   int      `yaml:"limit"`
}

// SearchConfig selects the search strategy. With Index set the candidate
// corpus is read once per run; otherwise files are rescanned per symbol
// through an LRU content cache of CacheSize entries.
type SearchConfig struct {
	Index     bool `yaml:"index"`
	CacheSize int  `yaml:"cache_size"`
}

// DefaultConfig returns the configuration a run starts from before the file
// and environment are applied.
func DefaultConfig() *Config {
	return &Config{
		Threshold: DefaultThreshold,
		Policy:    PolicyGating,
		Artifacts: artifact.DefaultPaths(),
		Reference: ReferenceConfig{
			Discover: DiscoverConfig{
				Pattern: "*.py",
				Exclude: []string{"__init__.py", "*test*"},
				Limit:   DefaultDiscoverLimit,
			},
		},
		Search: SearchConfig{CacheSize: search.DefaultCacheSize},
	}
}

// Load reads a YAML configuration file, applies environment overrides and
// validates the result. Defaults fill anything the file leaves unset.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variables override file values so CI pipelines can tune a run
// without editing the checked-in config. Malformed values are ignored.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("PORTLINT_THRESHOLD")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("PORTLINT_POLICY")); v != "" {
		c.Policy = Policy(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("PORTLINT_REFERENCE_ROOT")); v != "" {
		c.Reference.Root = v
	}
	if v := strings.TrimSpace(os.Getenv("PORTLINT_INDEX")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Search.Index = parsed
		}
	}
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %v", c.Threshold)
	}

	switch c.Policy {
	case PolicyGating, PolicyAdvisory:
	case "":
		c.Policy = PolicyGating
	default:
		return fmt.Errorf("unknown policy %q (want %q or %q)", c.Policy, PolicyGating, PolicyAdvisory)
	}

	if c.Reference.Root == "" {
		return errors.New("reference.root is required")
	}
	if len(c.Reference.Modules) == 0 && !c.Reference.Discover.Enabled {
		return errors.New("reference.modules or reference.discover must select at least one module")
	}

	if len(c.Candidates) == 0 {
		return errors.New("at least one candidate target is required")
	}
	for i, t := range c.Candidates {
		if t.Root == "" {
			return fmt.Errorf("candidates[%d]: root is required", i)
		}
		if len(t.Patterns) == 0 {
			return fmt.Errorf("candidates[%d]: at least one pattern is required", i)
		}
		for _, p := range t.Patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("candidates[%d]: invalid pattern %q", i, p)
			}
		}
	}

	if c.Reference.Discover.Enabled {
		if c.Reference.Discover.Pattern == "" {
			return errors.New("reference.discover.pattern is required when discovery is enabled")
		}
		if !doublestar.ValidatePattern(c.Reference.Discover.Pattern) {
			return fmt.Errorf("reference.discover: invalid pattern %q", c.Reference.Discover.Pattern)
		}
		for _, p := range c.Reference.Discover.Exclude {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("reference.discover: invalid exclude pattern %q", p)
			}
		}
		if c.Reference.Discover.Limit < 0 {
			return errors.New("reference.discover.limit must not be negative")
		}
		if c.Reference.Discover.Limit == 0 {
			c.Reference.Discover.Limit = DefaultDiscoverLimit
		}
	}

	if c.Artifacts.Functions == "" {
		c.Artifacts.Functions = artifact.DefaultFunctionsFile
	}
	if c.Artifacts.Classes == "" {
		c.Artifacts.Classes = artifact.DefaultClassesFile
	}
	return nil
}
