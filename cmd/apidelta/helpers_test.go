package main

import (
	"testing"

	"apidelta/internal/config"
)

func TestApplyPolicyFlag(t *testing.T) {
	cases := []struct {
		value    string
		wantPath string
		wantName string
	}{
		{"policies/release.yaml", "policies/release.yaml", "semver"},
		{"release.toml", "release.toml", "semver"},
		{"strict", "", "strict"},
	}

	for _, tc := range cases {
		cfg := config.DefaultConfig()
		applyPolicyFlag(cfg, tc.value)
		if cfg.Policy.Path != tc.wantPath {
			t.Errorf("applyPolicyFlag(%q): Path = %q, want %q", tc.value, cfg.Policy.Path, tc.wantPath)
		}
		if cfg.Policy.Name != tc.wantName {
			t.Errorf("applyPolicyFlag(%q): Name = %q, want %q", tc.value, cfg.Policy.Name, tc.wantName)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	cfg := config.DefaultConfig()

	if got := outputFormat("", cfg); got != FormatHuman {
		t.Errorf("outputFormat default = %q, want human", got)
	}
	if got := outputFormat("json", cfg); got != FormatJSON {
		t.Errorf("outputFormat flag = %q, want json", got)
	}

	cfg.Output.Format = "json"
	if got := outputFormat("", cfg); got != FormatJSON {
		t.Errorf("outputFormat config = %q, want json", got)
	}
}

func TestBuildEngineWithBuiltinPolicy(t *testing.T) {
	cfg := config.DefaultConfig()

	engine, err := buildEngine(cfg, nil)
	if err != nil {
		t.Fatalf("buildEngine failed: %v", err)
	}
	if engine.Name() != "semver" {
		t.Errorf("Engine name = %q, want semver", engine.Name())
	}
	if engine.RuleCount() == 0 {
		t.Error("Builtin policy compiled to zero rules")
	}
}
