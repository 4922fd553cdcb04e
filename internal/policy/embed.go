package policy

import (
	"embed"
	"io/fs"
	"path/filepath"
	"sort"

	"apidelta/internal/errors"
)

// builtinFS embeds the built-in policy files shipped with the tool.
//
//go:embed policies/*.yaml
var builtinFS embed.FS

// DefaultPolicyName is the policy used when no policy file is configured
const DefaultPolicyName = "semver"

// BuiltinPolicy loads one embedded policy by name
func BuiltinPolicy(name string) (*Policy, error) {
	data, err := builtinFS.ReadFile("policies/" + name + ".yaml")
	if err != nil {
		return nil, errors.New(errors.PolicyInvalid, "unknown builtin policy "+name, err)
	}
	return LoadYAML(data)
}

// DefaultPolicy loads the embedded semver policy
func DefaultPolicy() (*Policy, error) {
	return BuiltinPolicy(DefaultPolicyName)
}

// BuiltinPolicyNames lists the embedded policies in sorted order
func BuiltinPolicyNames() []string {
	var names []string
	entries, err := fs.ReadDir(builtinFS, "policies")
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			names = append(names, e.Name()[:len(e.Name())-len(".yaml")])
		}
	}
	sort.Strings(names)
	return names
}
