package config

import (
	"os"
	"path/filepath"
	"testing"

	"apidelta/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}
	if cfg.Parser.Frontend != "auto" {
		t.Errorf("Frontend = %q, want auto", cfg.Parser.Frontend)
	}
	if cfg.Policy.Name != "semver" {
		t.Errorf("Policy name = %q, want semver", cfg.Policy.Name)
	}
	if cfg.Differ.RenameThreshold != 0.8 {
		t.Errorf("RenameThreshold = %g, want 0.8", cfg.Differ.RenameThreshold)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Version != 1 || cfg.Output.Format != "human" {
		t.Errorf("Missing config did not yield defaults: %+v", cfg)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".apidelta")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{
		"version": 1,
		"policy": {"name": "strict"},
		"differ": {"renameThreshold": 0.6, "maxNestingDepth": 4},
		"output": {"format": "json"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Policy.Name != "strict" {
		t.Errorf("Policy name = %q, want strict", cfg.Policy.Name)
	}
	if cfg.Differ.RenameThreshold != 0.6 || cfg.Differ.MaxNestingDepth != 4 {
		t.Errorf("Differ config = %+v", cfg.Differ)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output format = %q, want json", cfg.Output.Format)
	}
}

func TestLocalOverrideWins(t *testing.T) {
	root := t.TempDir()
	override := `
[policy]
path = "policies/internal.yaml"

[differ]
rename_threshold = 0.9
detect_parameter_reordering = false

[logging]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(root, LocalOverrideFile), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if want := filepath.Join(root, "policies/internal.yaml"); cfg.Policy.Path != want {
		t.Errorf("Policy path = %q, want %q", cfg.Policy.Path, want)
	}
	if cfg.Differ.RenameThreshold != 0.9 {
		t.Errorf("RenameThreshold = %g, want 0.9", cfg.Differ.RenameThreshold)
	}
	if cfg.Differ.DetectParameterReordering {
		t.Error("DetectParameterReordering not overridden")
	}
	// Untouched sections keep their defaults
	if !cfg.Differ.IncludeNestedChanges {
		t.Error("IncludeNestedChanges lost its default")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging level = %q, want debug", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Policy.Name = "lenient"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Policy.Name != "lenient" {
		t.Errorf("Policy name = %q, want lenient", loaded.Policy.Name)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 2 }},
		{"bad frontend", func(c *Config) { c.Parser.Frontend = "swift" }},
		{"threshold too high", func(c *Config) { c.Differ.RenameThreshold = 1.5 }},
		{"zero nesting depth", func(c *Config) { c.Differ.MaxNestingDepth = 0 }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad logging format", func(c *Config) { c.Logging.Format = "logfmt" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			de, ok := err.(*errors.DeltaError)
			if !ok || de.Code != errors.ConfigInvalid {
				t.Errorf("Expected CONFIG_INVALID, got %v", err)
			}
		})
	}
}

func TestMalformedOverrideFails(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, LocalOverrideFile), []byte("[policy\nname="), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Fatal("Malformed override accepted")
	}
}
