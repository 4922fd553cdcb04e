package ruledsl

import (
	"strings"

	"apidelta/internal/change"
)

// Weighted credit for each dimension when checking how faithfully a pattern
// reflects a dimensional rule. Normalization runs over the weights of
// dimensions actually present on the input, so a sparse rule is not punished
// for what it never constrained.
const (
	wAction      = 3.0
	wAspect      = 2.5
	wTarget      = 2.0
	wImpact      = 2.0
	wNodeKind    = 1.5
	wNested      = 1.0
	wReturns     = 2.0
	wDescription = 0.5

	// present-but-mismatched values earn half credit rather than zero
	mismatchCredit = 0.5
)

// inferred is what a pattern's template text and variables imply about each
// change dimension
type inferred struct {
	action   change.Action
	aspect   change.Aspect
	impact   change.Impact
	target   string
	nodeKind string
	nested   bool
}

// CalculatePatternConfidence scores, in [0,1], how well a pattern rule
// preserves a dimensional rule's intent. It is the inverse-direction check
// of DecompileToPattern: values are inferred back out of the template and
// compared against the rule's arrays. A nil rule or pattern scores exactly 0.
func CalculatePatternConfidence(rule *DimensionalRule, pattern *PatternRule) float64 {
	if rule == nil || pattern == nil {
		return 0
	}

	inf := inferFromPattern(pattern)

	total := 0.0
	earned := 0.0
	dim := func(weight float64, present bool, inferredPresent bool, exact bool) {
		if !present {
			return
		}
		total += weight
		if !inferredPresent {
			return
		}
		if exact {
			earned += weight
		} else {
			earned += weight * mismatchCredit
		}
	}

	dim(wAction, len(rule.Actions) > 0, inf.action != "", containsAction(rule.Actions, inf.action))
	dim(wAspect, len(rule.Aspects) > 0, inf.aspect != "", containsAspect(rule.Aspects, inf.aspect))
	dim(wImpact, len(rule.Impacts) > 0, inf.impact != "", containsImpact(rule.Impacts, inf.impact))
	dim(wTarget, len(rule.Targets) > 0, inf.target != "", containsTarget(rule.Targets, change.Target(inf.target)))
	dim(wNodeKind, len(rule.NodeKinds) > 0, inf.nodeKind != "", hasKindString(rule, inf.nodeKind))
	dim(wNested, rule.Nested != nil, true, rule.Nested != nil && inf.nested == *rule.Nested)

	// Returns is always present on a valid rule.
	dim(wReturns, true, true, pattern.Returns == rule.Returns)

	if rule.Description != "" {
		total += wDescription
		earned += wDescription * descriptionSimilarity(rule.Description, pattern.Description)
	}

	if total == 0 {
		return 0
	}
	return clamp01(earned / total)
}

// inferFromPattern reads the change dimensions back out of a pattern's
// template text and variable bindings
func inferFromPattern(pattern *PatternRule) inferred {
	var inf inferred
	template := strings.ToLower(pattern.Template)

	if v := pattern.Variable("action"); v != "" {
		inf.action = change.Action(v)
	} else {
		switch {
		case strings.Contains(template, "added"):
			inf.action = change.ActionAdded
		case strings.Contains(template, "removed"):
			inf.action = change.ActionRemoved
		case strings.Contains(template, "renamed"):
			inf.action = change.ActionRenamed
		case strings.Contains(template, "reordered"):
			inf.action = change.ActionReordered
		case strings.Contains(template, "modified"), strings.Contains(template, "narrowed"),
			strings.Contains(template, "widened"), strings.Contains(template, "became"),
			strings.Contains(template, "deprecated"), strings.Contains(template, "visibility"):
			inf.action = change.ActionModified
		}
	}

	switch {
	case strings.Contains(template, "type narrowed"), strings.Contains(template, "type widened"):
		inf.aspect = change.AspectType
	case strings.Contains(template, "became required"), strings.Contains(template, "became optional"):
		inf.aspect = change.AspectOptionality
	case strings.Contains(template, "deprecated"):
		inf.aspect = change.AspectDeprecation
	case strings.Contains(template, "visibility"):
		inf.aspect = change.AspectVisibility
	}

	switch {
	case strings.Contains(template, "narrowed"), strings.Contains(template, "became required"),
		strings.Contains(template, "added required"), strings.Contains(template, "restricted"):
		inf.impact = change.ImpactNarrowing
	case strings.Contains(template, "widened"), strings.Contains(template, "became optional"),
		strings.Contains(template, "added optional"):
		inf.impact = change.ImpactWidening
	}

	if v := pattern.Variable("target"); v != "" && v != "declaration" {
		inf.target = v
	}
	inf.nodeKind = pattern.Variable("nodeKind")
	inf.nested = strings.Contains(template, "nested") || pattern.Variable("condition") == "nested"

	return inf
}

func hasKindString(rule *DimensionalRule, kind string) bool {
	for _, k := range rule.NodeKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

// descriptionSimilarity is a token-overlap ratio between two free-text
// descriptions, in [0,1]
func descriptionSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	tokensA := strings.Fields(strings.ToLower(a))
	tokensB := strings.Fields(strings.ToLower(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}
	common := 0
	for _, t := range tokensA {
		if setB[t] {
			common++
		}
	}

	longer := len(tokensA)
	if len(tokensB) > longer {
		longer = len(tokensB)
	}
	return float64(common) / float64(longer)
}
