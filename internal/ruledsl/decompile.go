package ruledsl

import (
	"sort"
	"strings"

	"apidelta/internal/change"
)

// Scoring weights for catalog matches. These are tuned values asserted
// numerically by downstream consumers; change them and recorded confidences
// shift everywhere.
const (
	priorityWeight    = 0.4
	coverageWeight    = 0.3
	specificityBonus  = 0.1 // per declared aspect/impact, capped at 0.2
	contextBonus      = 0.1
	minWinnerScore    = 0.3
	alternativeCutoff = 0.4
	maxAlternatives   = 3
)

// Alternative is a further viable pattern beyond the winner
type Alternative struct {
	Pattern    *PatternRule `json:"pattern"`
	Confidence float64      `json:"confidence"`
}

// DecompileResult is the outcome of lowering a dimensional rule to a pattern
type DecompileResult struct {
	Success      bool          `json:"success"`
	Pattern      *PatternRule  `json:"pattern,omitempty"`
	Confidence   float64       `json:"confidence"`
	Fallback     bool          `json:"fallback,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// DecompileRule lowers any rule representation to a pattern. Non-dimensional
// input is a discriminant error: the result reports failure rather than
// guessing.
func DecompileRule(r Rule) DecompileResult {
	dim, ok := r.(*DimensionalRule)
	if !ok {
		return DecompileResult{Success: false, Confidence: 0}
	}
	return DecompileToPattern(dim)
}

// DecompileToPattern finds the catalog template that best expresses a
// dimensional rule. When nothing in the catalog reaches the minimum score
// the result degrades to a generated fallback template at fixed confidence.
// Invalid input (nil rule, missing or unknown returns) fails with zero
// confidence.
func DecompileToPattern(rule *DimensionalRule) DecompileResult {
	if rule == nil || !change.ValidReleaseType(string(rule.Returns)) {
		return DecompileResult{Success: false, Confidence: 0}
	}

	matches := scoreCatalog(rule)
	if len(matches) == 0 || matches[0].score < minWinnerScore {
		return fallbackResult(rule)
	}

	result := DecompileResult{
		Success:    true,
		Pattern:    buildPattern(matches[0].m, rule),
		Confidence: matches[0].score,
	}
	for _, alt := range matches[1:] {
		if alt.score <= alternativeCutoff || len(result.Alternatives) >= maxAlternatives {
			continue
		}
		result.Alternatives = append(result.Alternatives, Alternative{
			Pattern:    buildPattern(alt.m, rule),
			Confidence: alt.score,
		})
	}
	return result
}

// FindBestPattern performs the same search and returns only the winning
// template, falling back when the winner is below the minimum score
func FindBestPattern(rule *DimensionalRule) string {
	result := DecompileToPattern(rule)
	if result.Pattern == nil {
		return ""
	}
	return result.Pattern.Template
}

type scoredMapping struct {
	m     mapping
	score float64
}

func scoreCatalog(rule *DimensionalRule) []scoredMapping {
	var matches []scoredMapping
	for _, m := range catalog {
		if m.UsesNodeKind && len(rule.NodeKinds) == 0 {
			continue
		}
		if m.UsesNested && (rule.Nested == nil || !*rule.Nested) {
			continue
		}
		if !m.Required.matchesRequired(rule) {
			continue
		}
		if !m.Optional.matchesOptional(rule) {
			continue
		}
		matches = append(matches, scoredMapping{m: m, score: scoreMapping(m, rule)})
	}
	// Stable sort keeps catalog (priority) order among equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	return matches
}

// scoreMapping combines priority, dimension coverage, specificity, and
// context preservation into one confidence in [0,1]
func scoreMapping(m mapping, rule *DimensionalRule) float64 {
	score := float64(m.Priority) / 10.0 * priorityWeight

	populated, captured := 0, 0
	count := func(isPopulated, isCaptured bool) {
		if !isPopulated {
			return
		}
		populated++
		if isCaptured {
			captured++
		}
	}
	declaresAction := len(m.Required.Actions) > 0 || len(m.Optional.Actions) > 0
	declaresAspect := len(m.Required.Aspects) > 0 || len(m.Optional.Aspects) > 0
	declaresImpact := len(m.Required.Impacts) > 0 || len(m.Optional.Impacts) > 0

	count(len(rule.Actions) > 0, declaresAction || strings.Contains(m.Template, "{action}"))
	count(len(rule.Targets) > 0, strings.Contains(m.Template, "{target}"))
	count(len(rule.Aspects) > 0, declaresAspect)
	count(len(rule.Impacts) > 0, declaresImpact)
	count(len(rule.NodeKinds) > 0, m.UsesNodeKind)
	count(len(rule.Tags) > 0, false)

	coverage := 1.0
	if populated > 0 {
		coverage = float64(captured) / float64(populated)
	}
	score += coverage * coverageWeight

	if declaresAspect {
		score += specificityBonus
	}
	if declaresImpact {
		score += specificityBonus
	}

	if (m.UsesNodeKind && len(rule.NodeKinds) > 0) || (m.UsesNested && rule.Nested != nil && *rule.Nested) {
		score += contextBonus
	}

	return clamp01(score)
}

// buildPattern instantiates a template with variables drawn from the rule's
// dimension arrays
func buildPattern(m mapping, rule *DimensionalRule) *PatternRule {
	p := &PatternRule{
		Template:    m.Template,
		Returns:     rule.Returns,
		Description: rule.Description,
	}
	if p.Description == "" {
		p.Description = m.Description
	}

	target := "declaration"
	if len(rule.Targets) > 0 {
		target = string(rule.Targets[0])
	}
	p.Variables = append(p.Variables, Variable{Name: "target", Value: target, Type: "target"})

	if strings.Contains(m.Template, "{action}") {
		action := string(change.ActionModified)
		if len(rule.Actions) > 0 {
			action = string(rule.Actions[0])
		}
		p.Variables = append(p.Variables, Variable{Name: "action", Value: action, Type: "action"})
	}
	if m.UsesNodeKind && len(rule.NodeKinds) > 0 {
		p.Variables = append(p.Variables, Variable{Name: "nodeKind", Value: string(rule.NodeKinds[0]), Type: "nodeKind"})
	}
	if m.UsesNested {
		p.Variables = append(p.Variables, Variable{Name: "condition", Value: "nested", Type: "condition"})
	}
	return p
}

func fallbackResult(rule *DimensionalRule) DecompileResult {
	template := fallbackGenericTemplate
	confidence := fallbackGenericConfidence
	if len(rule.Actions) > 0 {
		template = fallbackActionTemplate
		confidence = fallbackActionConfidence
	}

	pattern := buildPattern(mapping{Template: template, Description: "generated fallback"}, rule)
	return DecompileResult{
		Success:    true,
		Pattern:    pattern,
		Confidence: confidence,
		Fallback:   true,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
