package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"apidelta/internal/errors"
)

// LocalOverrideFile is a repo-local settings file that wins over the
// project config for the sections it sets.
const LocalOverrideFile = ".apidelta.toml"

// localOverride holds the subset of settings a repo may pin locally.
// Pointer fields distinguish "not set" from a zero value.
type localOverride struct {
	Policy  policyOverride  `toml:"policy"`
	Differ  differOverride  `toml:"differ"`
	Output  outputOverride  `toml:"output"`
	Logging loggingOverride `toml:"logging"`
}

type policyOverride struct {
	Name *string `toml:"name"`
	Path *string `toml:"path"`
}

type differOverride struct {
	RenameThreshold           *float64 `toml:"rename_threshold"`
	IncludeNestedChanges      *bool    `toml:"include_nested_changes"`
	ResolveTypeRelationships  *bool    `toml:"resolve_type_relationships"`
	MaxNestingDepth           *int     `toml:"max_nesting_depth"`
	DetectParameterReordering *bool    `toml:"detect_parameter_reordering"`
}

type outputOverride struct {
	Format *string `toml:"format"`
}

type loggingOverride struct {
	Format *string `toml:"format"`
	Level  *string `toml:"level"`
}

// applyLocalOverride merges .apidelta.toml from root into the config.
// A missing file is not an error.
func (c *Config) applyLocalOverride(root string) error {
	path := filepath.Join(root, LocalOverrideFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.New(errors.ConfigInvalid, "cannot read "+LocalOverrideFile, err)
	}

	var local localOverride
	if _, err := toml.Decode(string(data), &local); err != nil {
		return errors.New(errors.ConfigInvalid, "cannot parse "+LocalOverrideFile, err)
	}

	if local.Policy.Name != nil {
		c.Policy.Name = *local.Policy.Name
	}
	if local.Policy.Path != nil {
		// Relative policy paths resolve against the override file's root
		c.Policy.Path = *local.Policy.Path
		if !filepath.IsAbs(c.Policy.Path) {
			c.Policy.Path = filepath.Join(root, c.Policy.Path)
		}
	}

	if local.Differ.RenameThreshold != nil {
		c.Differ.RenameThreshold = *local.Differ.RenameThreshold
	}
	if local.Differ.IncludeNestedChanges != nil {
		c.Differ.IncludeNestedChanges = *local.Differ.IncludeNestedChanges
	}
	if local.Differ.ResolveTypeRelationships != nil {
		c.Differ.ResolveTypeRelationships = *local.Differ.ResolveTypeRelationships
	}
	if local.Differ.MaxNestingDepth != nil {
		c.Differ.MaxNestingDepth = *local.Differ.MaxNestingDepth
	}
	if local.Differ.DetectParameterReordering != nil {
		c.Differ.DetectParameterReordering = *local.Differ.DetectParameterReordering
	}

	if local.Output.Format != nil {
		c.Output.Format = *local.Output.Format
	}
	if local.Logging.Format != nil {
		c.Logging.Format = *local.Logging.Format
	}
	if local.Logging.Level != nil {
		c.Logging.Level = *local.Logging.Level
	}
	return nil
}
