package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"apidelta/internal/change"
	"apidelta/internal/errors"
	"apidelta/internal/ruledsl"
	"apidelta/internal/surface"
)

// policyFile is the on-disk shape of a policy, shared by YAML and TOML
type policyFile struct {
	Name    string     `yaml:"name" toml:"name"`
	Default string     `yaml:"default" toml:"default"`
	Rules   []ruleSpec `yaml:"rules" toml:"rules"`
}

// ruleSpec is one declared rule at any representation level. The level is
// discriminated by which fields are populated: intent wins over pattern,
// pattern over dimensional arrays.
type ruleSpec struct {
	Intent    string         `yaml:"intent,omitempty" toml:"intent,omitempty"`
	Pattern   string         `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Variables []variableSpec `yaml:"variables,omitempty" toml:"variables,omitempty"`

	Name      string   `yaml:"name,omitempty" toml:"name,omitempty"`
	Actions   []string `yaml:"actions,omitempty" toml:"actions,omitempty"`
	Targets   []string `yaml:"targets,omitempty" toml:"targets,omitempty"`
	Aspects   []string `yaml:"aspects,omitempty" toml:"aspects,omitempty"`
	Impacts   []string `yaml:"impacts,omitempty" toml:"impacts,omitempty"`
	NodeKinds []string `yaml:"nodeKinds,omitempty" toml:"nodeKinds,omitempty"`
	Tags      []string `yaml:"tags,omitempty" toml:"tags,omitempty"`
	Nested    *bool    `yaml:"nested,omitempty" toml:"nested,omitempty"`

	Returns     string `yaml:"returns" toml:"returns"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

type variableSpec struct {
	Name  string `yaml:"name" toml:"name"`
	Value string `yaml:"value" toml:"value"`
	Type  string `yaml:"type,omitempty" toml:"type,omitempty"`
}

// LoadFile reads a policy from a YAML or TOML file, dispatching on the
// file extension
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PolicyInvalid,
			fmt.Sprintf("cannot read policy file %s", path), err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".toml":
		return LoadTOML(data)
	default:
		return nil, errors.New(errors.PolicyInvalid,
			fmt.Sprintf("unsupported policy file extension %q", filepath.Ext(path)), nil)
	}
}

// LoadYAML parses a policy from YAML bytes
func LoadYAML(data []byte) (*Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.New(errors.PolicyInvalid, "cannot parse policy YAML", err)
	}
	return pf.toPolicy()
}

// LoadTOML parses a policy from TOML bytes
func LoadTOML(data []byte) (*Policy, error) {
	var pf policyFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, errors.New(errors.PolicyInvalid, "cannot parse policy TOML", err)
	}
	return pf.toPolicy()
}

func (pf *policyFile) toPolicy() (*Policy, error) {
	p := &Policy{
		Name:    pf.Name,
		Default: change.ReleaseType(pf.Default),
	}
	for i, spec := range pf.Rules {
		rule, err := spec.toRule()
		if err != nil {
			return nil, errors.New(errors.PolicyInvalid,
				fmt.Sprintf("policy %q rule %d is malformed", pf.Name, i), err)
		}
		p.Rules = append(p.Rules, rule)
	}
	return p, nil
}

func (s *ruleSpec) toRule() (ruledsl.Rule, error) {
	if s.Intent != "" && s.Pattern != "" {
		return nil, fmt.Errorf("rule declares both intent and pattern")
	}

	if s.Intent != "" {
		return &ruledsl.IntentRule{
			Expression:  s.Intent,
			Returns:     change.ReleaseType(s.Returns),
			Description: s.Description,
		}, nil
	}

	if s.Pattern != "" {
		rule := &ruledsl.PatternRule{
			Template:    s.Pattern,
			Returns:     change.ReleaseType(s.Returns),
			Description: s.Description,
		}
		for _, v := range s.Variables {
			rule.Variables = append(rule.Variables, ruledsl.Variable{
				Name:  v.Name,
				Value: v.Value,
				Type:  v.Type,
			})
		}
		return rule, nil
	}

	rule := &ruledsl.DimensionalRule{
		Name:        s.Name,
		Tags:        s.Tags,
		Nested:      s.Nested,
		Returns:     change.ReleaseType(s.Returns),
		Description: s.Description,
	}
	for _, a := range s.Actions {
		rule.Actions = append(rule.Actions, change.Action(a))
	}
	for _, t := range s.Targets {
		rule.Targets = append(rule.Targets, change.Target(t))
	}
	for _, a := range s.Aspects {
		rule.Aspects = append(rule.Aspects, change.Aspect(a))
	}
	for _, i := range s.Impacts {
		rule.Impacts = append(rule.Impacts, change.Impact(i))
	}
	for _, k := range s.NodeKinds {
		rule.NodeKinds = append(rule.NodeKinds, surface.NodeKind(k))
	}
	return rule, nil
}
