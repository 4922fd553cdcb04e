// Package change is the shared vocabulary for describing API changes: the
// dimensions every detected change is described along, the descriptor variant
// enforcing which dimensions are required, and the change records flowing
// from the differ to the policy engine.
package change

import (
	"apidelta/internal/surface"
)

// Action is what happened to the changed element
type Action string

const (
	ActionAdded     Action = "added"
	ActionRemoved   Action = "removed"
	ActionModified  Action = "modified"
	ActionRenamed   Action = "renamed"
	ActionReordered Action = "reordered"
)

// Target is which sort of element the action applies to
type Target string

const (
	TargetExport        Target = "export"
	TargetMember        Target = "member"
	TargetParameter     Target = "parameter"
	TargetProperty      Target = "property"
	TargetMethod        Target = "method"
	TargetSignature     Target = "signature"
	TargetTypeParameter Target = "type-parameter"
	TargetEnumMember    Target = "enum-member"
)

// Aspect is which facet of a declaration a modification touched.
// Only meaningful when the action is modified.
type Aspect string

const (
	AspectType             Aspect = "type"
	AspectOptionality      Aspect = "optionality"
	AspectReadonly         Aspect = "readonly"
	AspectVisibility       Aspect = "visibility"
	AspectAbstractness     Aspect = "abstractness"
	AspectStaticness       Aspect = "staticness"
	AspectDeprecation      Aspect = "deprecation"
	AspectDefaultValue     Aspect = "default-value"
	AspectConstraint       Aspect = "constraint"
	AspectDefaultType      Aspect = "default-type"
	AspectEnumValue        Aspect = "enum-value"
	AspectExtendsClause    Aspect = "extends-clause"
	AspectImplementsClause Aspect = "implements-clause"
)

// Impact is the compatibility direction of a modification
type Impact string

const (
	ImpactWidening     Impact = "widening"
	ImpactNarrowing    Impact = "narrowing"
	ImpactEquivalent   Impact = "equivalent"
	ImpactUnrelated    Impact = "unrelated"
	ImpactUndetermined Impact = "undetermined"
)

// ReleaseType is the semantic-versioning bump category for a change
type ReleaseType string

const (
	ReleaseMajor ReleaseType = "major"
	ReleaseMinor ReleaseType = "minor"
	ReleasePatch ReleaseType = "patch"
	ReleaseNone  ReleaseType = "none"
)

var releaseSeverity = map[ReleaseType]int{
	ReleaseMajor: 3,
	ReleaseMinor: 2,
	ReleasePatch: 1,
	ReleaseNone:  0,
}

// Severity returns the ordering rank of a release type (major highest)
func (r ReleaseType) Severity() int {
	return releaseSeverity[r]
}

// ValidReleaseType reports whether s is one of the four release types
func ValidReleaseType(s string) bool {
	_, ok := releaseSeverity[ReleaseType(s)]
	return ok
}

// MostSevere returns the highest-severity release type observed across a
// batch of classified changes. An empty batch yields ReleaseNone.
func MostSevere(changes []ClassifiedChange) ReleaseType {
	result := ReleaseNone
	for _, c := range changes {
		if c.ReleaseType.Severity() > result.Severity() {
			result = c.ReleaseType
		}
	}
	return result
}

// Context carries where and how a change was detected
type Context struct {
	IsNested         bool     `json:"isNested,omitempty"`
	Depth            int      `json:"depth,omitempty"`
	AncestorPaths    []string `json:"ancestorPaths,omitempty"`
	RenameConfidence float64  `json:"renameConfidence,omitempty"`
	ModifierChange   string   `json:"modifierChange,omitempty"`
	OldType          string   `json:"oldType,omitempty"`
	NewType          string   `json:"newType,omitempty"`
}

// APIChange is one detected change between two module surfaces
type APIChange struct {
	Descriptor    Descriptor       `json:"descriptor"`
	Path          string           `json:"path"`
	NodeKind      surface.NodeKind `json:"nodeKind"`
	OldLocation   *surface.Range   `json:"oldLocation,omitempty"`
	NewLocation   *surface.Range   `json:"newLocation,omitempty"`
	OldNode       *surface.Node    `json:"-"`
	NewNode       *surface.Node    `json:"-"`
	NestedChanges []APIChange      `json:"nestedChanges,omitempty"`
	Context       Context          `json:"context"`
	Explanation   string           `json:"explanation,omitempty"`
}

// MatchedRule records which policy rule decided a change's release type
type MatchedRule struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ClassifiedChange is an APIChange after the policy engine assigned a verdict
type ClassifiedChange struct {
	APIChange
	ReleaseType ReleaseType  `json:"releaseType"`
	MatchedRule *MatchedRule `json:"matchedRule,omitempty"`
}
