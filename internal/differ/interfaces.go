package differ

import (
	"apidelta/internal/change"
)

// TypeOracle judges the compatibility direction of replacing one type
// signature with another. Implementations must be total: when the strings do
// not carry enough semantic information they answer undetermined, never an
// error.
type TypeOracle interface {
	Compare(oldType, newType string) change.Impact
}

// Options configures a comparison
type Options struct {
	// RenameThreshold is the minimum name similarity for collapsing a
	// removed/added pair into one renamed change
	RenameThreshold float64
	// IncludeNestedChanges controls whether member-level changes are
	// reported under their parents
	IncludeNestedChanges bool
	// ResolveTypeRelationships consults the type oracle on textually
	// differing types; disabled, every textual difference is undetermined
	ResolveTypeRelationships bool
	// MaxNestingDepth bounds recursion into children
	MaxNestingDepth int
	// DetectParameterReordering runs the reorder detector on callable
	// signatures
	DetectParameterReordering bool
}

// DefaultOptions returns the standard comparison configuration
func DefaultOptions() Options {
	return Options{
		RenameThreshold:           0.8,
		IncludeNestedChanges:      true,
		ResolveTypeRelationships:  true,
		MaxNestingDepth:           10,
		DetectParameterReordering: true,
	}
}
