package change

import (
	"fmt"
)

// Descriptor is the tagged description of one change. The zero value is
// invalid; use the constructors, which enforce that modified changes always
// carry an aspect and an impact. That requirement is a correctness invariant
// of the model, not a convention: the policy engine and the rule decompiler
// both assume it.
type Descriptor struct {
	Action Action   `json:"action"`
	Target Target   `json:"target"`
	Tags   []string `json:"tags,omitempty"`

	// Aspect and Impact are set if and only if Action is modified.
	Aspect Aspect `json:"aspect,omitempty"`
	Impact Impact `json:"impact,omitempty"`
}

// Added describes a newly introduced element
func Added(target Target, tags ...string) Descriptor {
	return Descriptor{Action: ActionAdded, Target: target, Tags: tags}
}

// Removed describes a deleted element
func Removed(target Target, tags ...string) Descriptor {
	return Descriptor{Action: ActionRemoved, Target: target, Tags: tags}
}

// Renamed describes an element whose name changed but whose shape survived
func Renamed(target Target, tags ...string) Descriptor {
	return Descriptor{Action: ActionRenamed, Target: target, Tags: tags}
}

// Reordered describes parameters whose positions were permuted
func Reordered(target Target, tags ...string) Descriptor {
	return Descriptor{Action: ActionReordered, Target: target, Tags: tags}
}

// Modified describes an in-place edit of one facet of an element
func Modified(target Target, aspect Aspect, impact Impact, tags ...string) Descriptor {
	return Descriptor{
		Action: ActionModified,
		Target: target,
		Aspect: aspect,
		Impact: impact,
		Tags:   tags,
	}
}

// Validate checks the descriptor invariants. It exists for descriptors
// arriving from deserialized data; constructor-built descriptors always pass.
func (d Descriptor) Validate() error {
	switch d.Action {
	case ActionAdded, ActionRemoved, ActionRenamed, ActionReordered:
		if d.Aspect != "" || d.Impact != "" {
			return fmt.Errorf("descriptor: action %q must not carry aspect or impact", d.Action)
		}
	case ActionModified:
		if d.Aspect == "" || d.Impact == "" {
			return fmt.Errorf("descriptor: modified requires aspect and impact (got aspect=%q impact=%q)", d.Aspect, d.Impact)
		}
	default:
		return fmt.Errorf("descriptor: unknown action %q", d.Action)
	}
	return nil
}

// HasTag reports whether the descriptor carries the given tag
func (d Descriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// String renders a compact human-readable form, used in explanations and logs
func (d Descriptor) String() string {
	if d.Action == ActionModified {
		return fmt.Sprintf("%s %s (%s, %s)", d.Action, d.Target, d.Aspect, d.Impact)
	}
	return fmt.Sprintf("%s %s", d.Action, d.Target)
}
