package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPolicy is returned for a removal_policy other than the known ones.
var ErrUnknownPolicy = errors.New("config: unknown removal policy")

// Removal policies.
const (
	PolicyDefault  = "default"
	PolicyExplicit = "explicit"
)

// Calculator holds all configuration for a stat calculator.
type Calculator struct {
	// Logging: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Pruning
	PruneAfterUpdate bool   `yaml:"prune_after_update"`
	RemovalPolicy    string `yaml:"removal_policy"` // default | explicit

	// Output
	RequestedStats []string `yaml:"requested_stats"`
	Entity         string   `yaml:"entity"` // entity of build stats without one

	// Builds evaluated concurrently by the CLI (0 = no limit)
	MaxConcurrentBuilds int `yaml:"max_concurrent_builds"`
}

// DefaultCalculator returns Calculator config with sensible defaults.
func DefaultCalculator() Calculator {
	return Calculator{
		LogLevel:            "info",
		PruneAfterUpdate:    true,
		RemovalPolicy:       PolicyDefault,
		RequestedStats:      []string{"Life", "Mana"},
		Entity:              "Character",
		MaxConcurrentBuilds: 4,
	}
}

// Validate checks values that cannot be defaulted.
func (c Calculator) Validate() error {
	switch c.RemovalPolicy {
	case PolicyDefault, PolicyExplicit:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, c.RemovalPolicy)
	}
	if c.MaxConcurrentBuilds < 0 {
		return fmt.Errorf("max_concurrent_builds must not be negative, got %d", c.MaxConcurrentBuilds)
	}
	return nil
}

// LoadCalculator loads calculator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadCalculator(path string) (Calculator, error) {
	cfg := DefaultCalculator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
