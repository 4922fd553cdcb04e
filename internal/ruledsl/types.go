// Package ruledsl implements the three-level policy rule language: intent
// rules written as free text, pattern rules built from a closed template
// catalog, and dimensional rules constraining explicit arrays over every
// change dimension. Rules transform between levels in both directions with
// a confidence score describing how much intent the transformation kept.
package ruledsl

import (
	"apidelta/internal/change"
	"apidelta/internal/surface"
)

// Kind discriminates the three rule representations
type Kind string

const (
	KindIntent      Kind = "intent"
	KindPattern     Kind = "pattern"
	KindDimensional Kind = "dimensional"
)

// Rule is one policy rule at any representation level
type Rule interface {
	Kind() Kind
	Release() change.ReleaseType
}

// IntentRule expresses a policy in natural language
type IntentRule struct {
	Expression  string             `json:"expression" yaml:"expression"`
	Returns     change.ReleaseType `json:"returns" yaml:"returns"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
}

func (r *IntentRule) Kind() Kind                  { return KindIntent }
func (r *IntentRule) Release() change.ReleaseType { return r.Returns }

// Variable is one placeholder binding of a pattern rule
type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// PatternRule expresses a policy as a catalog template with placeholder
// bindings. Templates come from the closed catalog, extended only by the
// decompiler's fallback generator.
type PatternRule struct {
	Template    string             `json:"template" yaml:"template"`
	Variables   []Variable         `json:"variables,omitempty" yaml:"variables,omitempty"`
	Returns     change.ReleaseType `json:"returns" yaml:"returns"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
}

func (r *PatternRule) Kind() Kind                  { return KindPattern }
func (r *PatternRule) Release() change.ReleaseType { return r.Returns }

// Variable returns the binding with the given name, or ""
func (r *PatternRule) Variable(name string) string {
	for _, v := range r.Variables {
		if v.Name == name {
			return v.Value
		}
	}
	return ""
}

// DimensionalRule expresses a policy as explicit arrays over the change
// dimensions. An empty array is a wildcard; a non-empty array matches when
// any element equals the change's value.
type DimensionalRule struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Actions     []change.Action    `json:"actions,omitempty" yaml:"actions,omitempty"`
	Targets     []change.Target    `json:"targets,omitempty" yaml:"targets,omitempty"`
	Aspects     []change.Aspect    `json:"aspects,omitempty" yaml:"aspects,omitempty"`
	Impacts     []change.Impact    `json:"impacts,omitempty" yaml:"impacts,omitempty"`
	NodeKinds   []surface.NodeKind `json:"nodeKinds,omitempty" yaml:"nodeKinds,omitempty"`
	Tags        []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Nested      *bool              `json:"nested,omitempty" yaml:"nested,omitempty"`
	Returns     change.ReleaseType `json:"returns" yaml:"returns"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
}

func (r *DimensionalRule) Kind() Kind                  { return KindDimensional }
func (r *DimensionalRule) Release() change.ReleaseType { return r.Returns }

// Matches reports whether the rule accepts the change: every constrained
// dimension must include the change's value, unconstrained dimensions are
// wildcards.
func (r *DimensionalRule) Matches(c *change.ClassifiedChange) bool {
	return r.MatchesChange(&c.APIChange)
}

// MatchesChange applies the dimensional constraints to a raw change
func (r *DimensionalRule) MatchesChange(c *change.APIChange) bool {
	if len(r.Actions) > 0 && !containsAction(r.Actions, c.Descriptor.Action) {
		return false
	}
	if len(r.Targets) > 0 && !containsTarget(r.Targets, c.Descriptor.Target) {
		return false
	}
	if len(r.Aspects) > 0 && !containsAspect(r.Aspects, c.Descriptor.Aspect) {
		return false
	}
	if len(r.Impacts) > 0 && !containsImpact(r.Impacts, c.Descriptor.Impact) {
		return false
	}
	if len(r.NodeKinds) > 0 && !containsKind(r.NodeKinds, c.NodeKind) {
		return false
	}
	if len(r.Tags) > 0 && !anyTag(r.Tags, c.Descriptor.Tags) {
		return false
	}
	if r.Nested != nil && *r.Nested != c.Context.IsNested {
		return false
	}
	return true
}

func containsAction(list []change.Action, v change.Action) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsTarget(list []change.Target, v change.Target) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsAspect(list []change.Aspect, v change.Aspect) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsImpact(list []change.Impact, v change.Impact) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsKind(list []surface.NodeKind, v surface.NodeKind) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func anyTag(ruleTags, changeTags []string) bool {
	for _, rt := range ruleTags {
		for _, ct := range changeTags {
			if rt == ct {
				return true
			}
		}
	}
	return false
}
