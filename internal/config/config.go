// Package config loads and validates apidelta configuration from
// .apidelta/config.json, with optional repo-local overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"apidelta/internal/errors"
)

// Config represents the complete apidelta configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Parser  ParserConfig  `json:"parser" mapstructure:"parser"`
	Differ  DifferConfig  `json:"differ" mapstructure:"differ"`
	Policy  PolicyConfig  `json:"policy" mapstructure:"policy"`
	Store   StoreConfig   `json:"store" mapstructure:"store"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ParserConfig selects the parser frontend
type ParserConfig struct {
	// Frontend is "auto", "typescript", or "scip". Auto dispatches on the
	// input file extension.
	Frontend string `json:"frontend" mapstructure:"frontend"`
}

// DifferConfig contains structural comparison settings
type DifferConfig struct {
	RenameThreshold           float64 `json:"renameThreshold" mapstructure:"renameThreshold"`
	IncludeNestedChanges      bool    `json:"includeNestedChanges" mapstructure:"includeNestedChanges"`
	ResolveTypeRelationships  bool    `json:"resolveTypeRelationships" mapstructure:"resolveTypeRelationships"`
	MaxNestingDepth           int     `json:"maxNestingDepth" mapstructure:"maxNestingDepth"`
	DetectParameterReordering bool    `json:"detectParameterReordering" mapstructure:"detectParameterReordering"`
}

// PolicyConfig selects the classification policy
type PolicyConfig struct {
	// Name of a builtin policy, used when Path is empty
	Name string `json:"name" mapstructure:"name"`
	// Path to a policy file (.yaml or .toml), overriding Name
	Path string `json:"path" mapstructure:"path"`
}

// StoreConfig contains baseline store settings
type StoreConfig struct {
	// Root is the directory whose .apidelta/ subdirectory holds the database
	Root string `json:"root" mapstructure:"root"`
}

// OutputConfig contains report rendering settings
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"` // "human" or "json"
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Parser: ParserConfig{
			Frontend: "auto",
		},
		Differ: DifferConfig{
			RenameThreshold:           0.8,
			IncludeNestedChanges:      true,
			ResolveTypeRelationships:  true,
			MaxNestingDepth:           10,
			DetectParameterReordering: true,
		},
		Policy: PolicyConfig{
			Name: "semver",
		},
		Store: StoreConfig{
			Root: ".",
		},
		Output: OutputConfig{
			Format: "human",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .apidelta/config.json under root,
// then applies .apidelta.toml overrides from the same root if present.
// A missing config file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".apidelta"))
	v.SetEnvPrefix("APIDELTA")
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.New(errors.ConfigInvalid, "cannot read config file", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot parse config file", err)
	}

	if err := cfg.applyLocalOverride(root); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to .apidelta/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".apidelta")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return errors.New(errors.ConfigInvalid,
			fmt.Sprintf("unsupported config version %d", c.Version), nil)
	}

	switch c.Parser.Frontend {
	case "auto", "typescript", "scip":
	default:
		return errors.New(errors.ConfigInvalid,
			fmt.Sprintf("unknown parser frontend %q", c.Parser.Frontend), nil)
	}

	if c.Differ.RenameThreshold < 0 || c.Differ.RenameThreshold > 1 {
		return errors.New(errors.ConfigInvalid,
			fmt.Sprintf("rename threshold %g out of [0,1]", c.Differ.RenameThreshold), nil)
	}
	if c.Differ.MaxNestingDepth < 1 {
		return errors.New(errors.ConfigInvalid, "max nesting depth must be at least 1", nil)
	}

	switch c.Output.Format {
	case "human", "json":
	default:
		return errors.New(errors.ConfigInvalid,
			fmt.Sprintf("unknown output format %q", c.Output.Format), nil)
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return errors.New(errors.ConfigInvalid,
			fmt.Sprintf("unknown logging format %q", c.Logging.Format), nil)
	}
	return nil
}
