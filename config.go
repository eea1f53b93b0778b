package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every ngramsub setting. Command line flags override the
// values loaded from the config file.
type Config struct {
	// Reference text the language model is trained on
	Corpus []string `yaml:"corpus"`

	// Ciphertext runes mapped by one key slot
	NgramSSC int `yaml:"ngram_ssc"`

	// Width of the language model n-grams
	NgramFreq int `yaml:"ngram_freq"`

	// Width of the n-grams scored in candidate plaintext, 0 means NgramFreq
	ScoreWidth int `yaml:"score_width"`

	// Subtracted for every scored n-gram missing from the model
	Penalty float64 `yaml:"penalty"`

	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig bounds the hill climb.
type SearchConfig struct {
	Plateau     int    `yaml:"plateau"`      // non-improving mutations before a restart
	Seed        uint64 `yaml:"seed"`         // 0 picks one from the clock
	MaxRestarts int    `yaml:"max_restarts"` // 0 = unlimited
	MaxRuntime  string `yaml:"max_runtime"`  // per ciphertext, empty = unlimited
	TopN        int    `yaml:"topn"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus:    []string{"corpus.txt"},
		NgramSSC:  1,
		NgramFreq: 3,
		Penalty:   8.0,
		Search: SearchConfig{
			Plateau: defaultPlateau,
			TopN:    3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NGRAMSUB_CORPUS"); v != "" {
		c.Corpus = filepath.SplitList(v)
	}
	if v := os.Getenv("NGRAMSUB_SEED"); v != "" {
		if seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			c.Search.Seed = seed
		}
	}
}

// scoreWidth is the width used to score plaintext.
func (c *Config) scoreWidth() int {
	if c.ScoreWidth == 0 {
		return c.NgramFreq
	}
	return c.ScoreWidth
}

// maxRuntime parses Search.MaxRuntime; an empty value means no limit.
func (c *Config) maxRuntime() (time.Duration, error) {
	if c.Search.MaxRuntime == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Search.MaxRuntime)
	if err != nil {
		return 0, fmt.Errorf("invalid max_runtime %q: %w", c.Search.MaxRuntime, err)
	}
	return d, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NgramSSC < 1 {
		return fmt.Errorf("ngram_ssc %d: %w", c.NgramSSC, ErrInvalidWidth)
	}
	if c.NgramFreq < 1 {
		return fmt.Errorf("ngram_freq %d: %w", c.NgramFreq, ErrInvalidWidth)
	}
	if c.scoreWidth() < 1 {
		return fmt.Errorf("score_width %d: %w", c.ScoreWidth, ErrInvalidWidth)
	}
	if len(c.Corpus) == 0 {
		return fmt.Errorf("no corpus configured")
	}
	if c.Penalty < 0 {
		return fmt.Errorf("penalty must not be negative, got %v", c.Penalty)
	}
	if c.Search.Plateau < 0 {
		return fmt.Errorf("plateau must not be negative, got %d", c.Search.Plateau)
	}
	if c.Search.MaxRestarts < 0 {
		return fmt.Errorf("max_restarts must not be negative, got %d", c.Search.MaxRestarts)
	}
	if _, err := c.maxRuntime(); err != nil {
		return err
	}
	return nil
}
