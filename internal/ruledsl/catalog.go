package ruledsl

import (
	"apidelta/internal/change"
)

// constraints is one mapping's declared dimensions. Required arrays must
// intersect the rule's corresponding arrays for the mapping to apply;
// optional arrays must agree only when the rule populates that dimension.
type constraints struct {
	Actions []change.Action
	Aspects []change.Aspect
	Impacts []change.Impact
}

// mapping is one catalog entry relating a template to the dimensions it can
// express. Higher priority entries describe more specific situations.
type mapping struct {
	Template    string
	Priority    int
	Description string
	Required    constraints
	Optional    constraints
	// UsesNodeKind marks templates that surface the node kind, earning the
	// context-preservation bonus when the rule constrains kinds
	UsesNodeKind bool
	// UsesNested marks templates that express the nested condition
	UsesNested bool
}

// catalog is the static, priority-ordered template table. It is read-only
// data initialized once and safe for concurrent reads.
var catalog = []mapping{
	{
		Template:    "added required {target}",
		Priority:    10,
		Description: "a required element was introduced",
		Required: constraints{
			Actions: []change.Action{change.ActionAdded},
			Impacts: []change.Impact{change.ImpactNarrowing},
		},
	},
	{
		Template:    "added optional {target}",
		Priority:    10,
		Description: "an optional element was introduced",
		Required: constraints{
			Actions: []change.Action{change.ActionAdded},
			Impacts: []change.Impact{change.ImpactWidening},
		},
	},
	{
		Template:    "{target} type narrowed",
		Priority:    9,
		Description: "a type changed to accept less",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectType},
			Impacts: []change.Impact{change.ImpactNarrowing},
		},
	},
	{
		Template:    "{target} type widened",
		Priority:    9,
		Description: "a type changed to accept more",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectType},
			Impacts: []change.Impact{change.ImpactWidening},
		},
	},
	{
		Template:    "{target} became required",
		Priority:    8,
		Description: "optionality was removed",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectOptionality},
			Impacts: []change.Impact{change.ImpactNarrowing},
		},
	},
	{
		Template:    "{target} became optional",
		Priority:    8,
		Description: "optionality was added",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectOptionality},
			Impacts: []change.Impact{change.ImpactWidening},
		},
	},
	{
		Template:    "{target} deprecated",
		Priority:    8,
		Description: "an element gained a deprecation notice",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectDeprecation},
		},
	},
	{
		Template:    "reordered parameters of {target}",
		Priority:    8,
		Description: "parameter positions were permuted",
		Required: constraints{
			Actions: []change.Action{change.ActionReordered},
		},
	},
	{
		Template:    "renamed {target}",
		Priority:    7,
		Description: "an element was renamed",
		Required: constraints{
			Actions: []change.Action{change.ActionRenamed},
		},
	},
	{
		Template:    "{target} visibility restricted",
		Priority:    7,
		Description: "an element became less visible",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
			Aspects: []change.Aspect{change.AspectVisibility},
			Impacts: []change.Impact{change.ImpactNarrowing},
		},
	},
	{
		Template:    "modified {nodeKind} {target}",
		Priority:    6,
		Description: "a declaration of a specific kind was modified",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
		},
		UsesNodeKind: true,
	},
	{
		Template:    "{action} {target} when {condition}",
		Priority:    6,
		Description: "a change below the export surface",
		UsesNested:  true,
	},
	{
		Template:    "{action} {target}",
		Priority:    5,
		Description: "any change with a known action",
	},
	{
		Template:    "modified {target}",
		Priority:    3,
		Description: "any modification",
		Required: constraints{
			Actions: []change.Action{change.ActionModified},
		},
	},
}

// Fallback templates generated when nothing in the catalog matches. These
// are the only templates outside the closed catalog.
const (
	fallbackActionTemplate  = "{action} {target}"
	fallbackGenericTemplate = "modified {target}"

	fallbackActionConfidence  = 0.3
	fallbackGenericConfidence = 0.2
)

// matchesRequired reports whether every declared required array intersects
// the rule's corresponding array
func (c constraints) matchesRequired(r *DimensionalRule) bool {
	if len(c.Actions) > 0 && !intersectActions(c.Actions, r.Actions) {
		return false
	}
	if len(c.Aspects) > 0 && !intersectAspects(c.Aspects, r.Aspects) {
		return false
	}
	if len(c.Impacts) > 0 && !intersectImpacts(c.Impacts, r.Impacts) {
		return false
	}
	return true
}

// matchesOptional reports whether every declared optional array agrees with
// the rule wherever the rule populates that dimension
func (c constraints) matchesOptional(r *DimensionalRule) bool {
	if len(c.Actions) > 0 && len(r.Actions) > 0 && !intersectActions(c.Actions, r.Actions) {
		return false
	}
	if len(c.Aspects) > 0 && len(r.Aspects) > 0 && !intersectAspects(c.Aspects, r.Aspects) {
		return false
	}
	if len(c.Impacts) > 0 && len(r.Impacts) > 0 && !intersectImpacts(c.Impacts, r.Impacts) {
		return false
	}
	return true
}

func intersectActions(a, b []change.Action) bool {
	for _, x := range a {
		if containsAction(b, x) {
			return true
		}
	}
	return false
}

func intersectAspects(a, b []change.Aspect) bool {
	for _, x := range a {
		if containsAspect(b, x) {
			return true
		}
	}
	return false
}

func intersectImpacts(a, b []change.Impact) bool {
	for _, x := range a {
		if containsImpact(b, x) {
			return true
		}
	}
	return false
}
