package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"apidelta/internal/change"
	"apidelta/internal/config"
	"apidelta/internal/differ"
	"apidelta/internal/logging"
	"apidelta/internal/parser/scipsurface"
	"apidelta/internal/parser/tsdecl"
	"apidelta/internal/policy"
	"apidelta/internal/ruledsl"
	"apidelta/internal/store"
	"apidelta/internal/surface"
	"apidelta/internal/typeoracle"
)

// mustLoadConfig loads the project configuration or exits
func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds a logger from the configured format and level
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}

// commandLogger derives a child logger tagging every entry with the
// subcommand that emitted it
func commandLogger(cfg *config.Config, command string) *logging.Logger {
	return newLogger(cfg).With(map[string]interface{}{"command": command})
}

// loadSurface parses one declaration input into a surface. The frontend
// comes from the config; "auto" dispatches on the file extension.
func loadSurface(path string, cfg *config.Config, logger *logging.Logger) (*surface.Module, error) {
	frontend := cfg.Parser.Frontend
	if frontend == "auto" {
		if strings.HasSuffix(path, ".scip") {
			frontend = "scip"
		} else {
			frontend = "typescript"
		}
	}

	switch frontend {
	case "scip":
		return scipsurface.Load(path)
	case "typescript":
		if !tsdecl.IsAvailable() {
			return nil, fmt.Errorf("typescript parsing is not available in this build")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		mod := tsdecl.NewParser().Parse(string(data), filepath.Base(path))
		for _, msg := range mod.Errors {
			logger.Warn("Parse anomaly", map[string]interface{}{
				"file":  path,
				"error": msg,
			})
		}
		return mod, nil
	default:
		return nil, fmt.Errorf("unknown parser frontend %q", frontend)
	}
}

// newDiffer builds a differ from the configured comparison options
func newDiffer(cfg *config.Config, logger *logging.Logger) *differ.Differ {
	opts := differ.Options{
		RenameThreshold:           cfg.Differ.RenameThreshold,
		IncludeNestedChanges:      cfg.Differ.IncludeNestedChanges,
		ResolveTypeRelationships:  cfg.Differ.ResolveTypeRelationships,
		MaxNestingDepth:           cfg.Differ.MaxNestingDepth,
		DetectParameterReordering: cfg.Differ.DetectParameterReordering,
	}
	return differ.New(typeoracle.New(), opts, logger)
}

// loadPolicy resolves the configured policy: an explicit file path wins
// over a builtin name
func loadPolicy(cfg *config.Config) (*policy.Policy, error) {
	if cfg.Policy.Path != "" {
		return policy.LoadFile(cfg.Policy.Path)
	}
	name := cfg.Policy.Name
	if name == "" {
		name = policy.DefaultPolicyName
	}
	return policy.BuiltinPolicy(name)
}

// applyPolicyFlag overrides the configured policy from the --policy flag.
// A value ending in a policy file extension is a path; anything else names
// a builtin policy.
func applyPolicyFlag(cfg *config.Config, value string) {
	switch filepath.Ext(value) {
	case ".yaml", ".yml", ".toml":
		cfg.Policy.Path = value
	default:
		cfg.Policy.Path = ""
		cfg.Policy.Name = value
	}
}

// buildEngine compiles the configured policy into a classification engine,
// logging any rules that failed to compile
func buildEngine(cfg *config.Config, logger *logging.Logger) (*policy.Engine, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	p, err := loadPolicy(cfg)
	if err != nil {
		return nil, err
	}
	engine, skipped, err := policy.NewEngine(p, logger)
	if err != nil {
		return nil, err
	}
	for _, ruleErr := range skipped {
		logger.Warn("Policy rule skipped", map[string]interface{}{
			"rule":  ruleErr.Index,
			"error": ruleErr.Err.Error(),
		})
	}
	return engine, nil
}

// resolveSurfacePair loads the old and new surfaces for a comparison.
// Two positional args name two files; one arg plus --against names the new
// file and a stored baseline holding the old surface.
func resolveSurfacePair(args []string, against string, cfg *config.Config, logger *logging.Logger) (oldMod, newMod *surface.Module, oldRef, newRef string) {
	switch {
	case against != "" && len(args) == 1:
		s, err := store.Open(cfg.Store.Root, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening baseline store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		mod, baseline, err := s.Load(against)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading baseline: %v\n", err)
			os.Exit(1)
		}
		oldMod, oldRef = mod, fmt.Sprintf("baseline %s", baseline.Label)
		newRef = args[0]
	case against == "" && len(args) == 2:
		var err error
		oldMod, err = loadSurface(args[0], cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", args[0], err)
			os.Exit(1)
		}
		oldRef = args[0]
		newRef = args[1]
	default:
		fmt.Fprintln(os.Stderr, "Error: provide two files, or one file with --against <label>")
		os.Exit(1)
	}

	newPath := newRef
	mod, err := loadSurface(newPath, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", newPath, err)
		os.Exit(1)
	}
	newMod = mod
	return oldMod, newMod, oldRef, newRef
}

// outputFormat resolves the effective output format: flag over config
func outputFormat(flag string, cfg *config.Config) OutputFormat {
	if flag != "" {
		return OutputFormat(flag)
	}
	return OutputFormat(cfg.Output.Format)
}

// changeRefs converts a diff result to the pointer slice the engine consumes
func changeRefs(changes []change.APIChange) []*change.APIChange {
	refs := make([]*change.APIChange, len(changes))
	for i := range changes {
		refs[i] = &changes[i]
	}
	return refs
}

// policyRules loads the rules of a policy file into a builder for the
// rules subcommands
func policyRules(path string) (*ruledsl.Builder, string, error) {
	p, err := policy.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return ruledsl.NewBuilder().Add(p.Rules...), p.Name, nil
}
