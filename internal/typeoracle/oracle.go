// Package typeoracle is the default type-compatibility collaborator for the
// differ. It judges the direction of a type edit from normalized signature
// text alone, with no real type system behind it: when the strings do not
// carry enough information it answers undetermined rather than guessing.
package typeoracle

import (
	"strings"

	"apidelta/internal/change"
)

// Oracle compares normalized type signature strings. It is total: Compare
// never fails, and unparseable input degrades to undetermined.
type Oracle struct{}

// New creates a heuristic oracle
func New() *Oracle {
	return &Oracle{}
}

// Compare reports the compatibility direction of replacing oldType with
// newType in a declaration.
func (o *Oracle) Compare(oldType, newType string) change.Impact {
	oldT := normalize(oldType)
	newT := normalize(newType)

	if oldT == "" || newT == "" {
		return change.ImpactUndetermined
	}
	if oldT == newT {
		return change.ImpactEquivalent
	}

	// Top types accept everything; moving to or from one is directional.
	if isTop(newT) {
		return change.ImpactWidening
	}
	if isTop(oldT) {
		return change.ImpactNarrowing
	}

	// never accepts nothing.
	if oldT == "never" {
		return change.ImpactWidening
	}
	if newT == "never" {
		return change.ImpactNarrowing
	}

	oldMembers := splitUnion(oldT)
	newMembers := splitUnion(newT)
	if len(oldMembers) > 1 || len(newMembers) > 1 {
		return compareUnions(oldMembers, newMembers)
	}

	// A literal widened to its base primitive, or the reverse.
	if base := literalBase(oldT); base != "" && base == newT {
		return change.ImpactWidening
	}
	if base := literalBase(newT); base != "" && base == oldT {
		return change.ImpactNarrowing
	}

	return change.ImpactUndetermined
}

func compareUnions(oldMembers, newMembers []string) change.Impact {
	oldSet := toSet(oldMembers)
	newSet := toSet(newMembers)

	oldInNew := subset(oldSet, newSet)
	newInOld := subset(newSet, oldSet)

	switch {
	case oldInNew && newInOld:
		return change.ImpactEquivalent
	case oldInNew:
		return change.ImpactWidening
	case newInOld:
		return change.ImpactNarrowing
	}

	if !overlaps(oldSet, newSet) {
		return change.ImpactUnrelated
	}
	return change.ImpactUndetermined
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isTop(t string) bool {
	return t == "any" || t == "unknown"
}

// literalBase returns the primitive a literal type widens to, or ""
func literalBase(t string) string {
	if len(t) >= 2 {
		if (t[0] == '"' && t[len(t)-1] == '"') || (t[0] == '\'' && t[len(t)-1] == '\'') || (t[0] == '`' && t[len(t)-1] == '`') {
			return "string"
		}
	}
	if t == "true" || t == "false" {
		return "boolean"
	}
	numeric := true
	for i, r := range t {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		if r == '.' || r == '_' {
			continue
		}
		numeric = false
		break
	}
	if numeric && t != "" && t != "-" && t != "+" && t != "." {
		return "number"
	}
	return ""
}

// splitUnion splits a type string on top-level union bars, ignoring bars
// nested inside brackets, braces, parens, generics, or string literals.
func splitUnion(t string) []string {
	var members []string
	depth := 0
	var quote rune
	start := 0

	for i, r := range t {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				members = append(members, strings.TrimSpace(t[start:i]))
				start = i + 1
			}
		}
	}
	members = append(members, strings.TrimSpace(t[start:]))

	out := members[:0]
	for _, m := range members {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func toSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[normalize(m)] = true
	}
	return set
}

func subset(a, b map[string]bool) bool {
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func overlaps(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}
