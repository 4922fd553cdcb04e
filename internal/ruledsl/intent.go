package ruledsl

import (
	"strings"

	"apidelta/internal/change"
	"apidelta/internal/surface"
)

// IntentResult is the outcome of lowering an intent expression to a
// dimensional rule
type IntentResult struct {
	Success    bool             `json:"success"`
	Rule       *DimensionalRule `json:"rule,omitempty"`
	Confidence float64          `json:"confidence"`
	// Unmatched lists expression words that carried no recognizable signal
	Unmatched []string `json:"unmatched,omitempty"`
}

// keyword tables for intent parsing. Word stems, matched against lowercased
// expression tokens by prefix.
var (
	actionStems = map[string]change.Action{
		"add":      change.ActionAdded,
		"introduc": change.ActionAdded,
		"new":      change.ActionAdded,
		"remov":    change.ActionRemoved,
		"delet":    change.ActionRemoved,
		"drop":     change.ActionRemoved,
		"modif":    change.ActionModified,
		"chang":    change.ActionModified,
		"alter":    change.ActionModified,
		"renam":    change.ActionRenamed,
		"reorder":  change.ActionReordered,
	}

	aspectStems = map[string]change.Aspect{
		"type":       change.AspectType,
		"optional":   change.AspectOptionality,
		"readonly":   change.AspectReadonly,
		"visib":      change.AspectVisibility,
		"abstract":   change.AspectAbstractness,
		"static":     change.AspectStaticness,
		"deprecat":   change.AspectDeprecation,
		"default":    change.AspectDefaultValue,
		"constraint": change.AspectConstraint,
	}

	impactStems = map[string]change.Impact{
		"narrow":   change.ImpactNarrowing,
		"strict":   change.ImpactNarrowing,
		"break":    change.ImpactNarrowing,
		"widen":    change.ImpactWidening,
		"loosen":   change.ImpactWidening,
		"relax":    change.ImpactWidening,
		"equival":  change.ImpactEquivalent,
		"unrelat":  change.ImpactUnrelated,
		"undeterm": change.ImpactUndetermined,
	}

	targetStems = map[string]change.Target{
		"export":   change.TargetExport,
		"member":   change.TargetMember,
		"param":    change.TargetParameter,
		"propert":  change.TargetProperty,
		"method":   change.TargetMethod,
		"signatur": change.TargetSignature,
	}

	kindStems = map[string]surface.NodeKind{
		"function":  surface.KindFunction,
		"class":     surface.KindClass,
		"interface": surface.KindInterface,
		"alias":     surface.KindTypeAlias,
		"enum":      surface.KindEnum,
		"namespace": surface.KindNamespace,
		"variable":  surface.KindVariable,
	}

	// stopwords carry no dimension signal and do not count against confidence
	stopwords = map[string]bool{
		"a": true, "an": true, "the": true, "any": true, "of": true,
		"to": true, "is": true, "was": true, "are": true, "when": true,
		"that": true, "which": true, "or": true, "and": true, "in": true,
		"on": true, "public": true, "api": true,
	}
)

// ParseIntent lowers a free-text intent rule to dimensional form by keyword
// heuristics. Confidence is the share of signal-bearing words the parser
// understood; an expression with no recognizable signal fails.
func ParseIntent(rule *IntentRule) IntentResult {
	if rule == nil || strings.TrimSpace(rule.Expression) == "" ||
		!change.ValidReleaseType(string(rule.Returns)) {
		return IntentResult{Success: false, Confidence: 0}
	}

	dim := &DimensionalRule{
		Returns:     rule.Returns,
		Description: rule.Description,
	}
	if dim.Description == "" {
		dim.Description = rule.Expression
	}

	words := strings.Fields(strings.ToLower(rule.Expression))
	matched, signal := 0, 0
	var unmatched []string

	for _, raw := range words {
		word := strings.Trim(raw, ".,;:!?'\"()")
		if word == "" || stopwords[word] {
			continue
		}
		signal++
		if matchWord(dim, word) {
			matched++
		} else {
			unmatched = append(unmatched, word)
		}
	}

	if matched == 0 {
		return IntentResult{Success: false, Confidence: 0, Unmatched: unmatched}
	}

	confidence := clamp01(float64(matched) / float64(signal))
	return IntentResult{Success: true, Rule: dim, Confidence: confidence, Unmatched: unmatched}
}

func matchWord(dim *DimensionalRule, word string) bool {
	hit := false
	if word == "nested" {
		nested := true
		dim.Nested = &nested
		return true
	}
	for stem, action := range actionStems {
		if strings.HasPrefix(word, stem) && !containsAction(dim.Actions, action) {
			dim.Actions = append(dim.Actions, action)
			hit = true
		}
	}
	for stem, aspect := range aspectStems {
		if strings.HasPrefix(word, stem) && !containsAspect(dim.Aspects, aspect) {
			dim.Aspects = append(dim.Aspects, aspect)
			hit = true
		}
	}
	for stem, impact := range impactStems {
		if strings.HasPrefix(word, stem) && !containsImpact(dim.Impacts, impact) {
			dim.Impacts = append(dim.Impacts, impact)
			hit = true
		}
	}
	for stem, target := range targetStems {
		if strings.HasPrefix(word, stem) && !containsTarget(dim.Targets, target) {
			dim.Targets = append(dim.Targets, target)
			hit = true
		}
	}
	for stem, kind := range kindStems {
		if strings.HasPrefix(word, stem) && !containsKind(dim.NodeKinds, kind) {
			dim.NodeKinds = append(dim.NodeKinds, kind)
			hit = true
		}
	}
	return hit
}

// DescribeRule raises a dimensional rule back to an intent expression.
// It is lossy in the same way ParseIntent is: only dimension values are
// expressed, and the round trip is judged by confidence, not equality.
func DescribeRule(rule *DimensionalRule) *IntentRule {
	if rule == nil {
		return nil
	}

	var parts []string
	for _, a := range rule.Actions {
		parts = append(parts, string(a))
	}
	for _, a := range rule.Aspects {
		parts = append(parts, string(a))
	}
	for _, i := range rule.Impacts {
		parts = append(parts, string(i))
	}
	for _, t := range rule.Targets {
		parts = append(parts, string(t))
	}
	for _, k := range rule.NodeKinds {
		parts = append(parts, string(k))
	}
	if rule.Nested != nil && *rule.Nested {
		parts = append(parts, "nested")
	}
	if len(parts) == 0 {
		parts = append(parts, "any change")
	}

	return &IntentRule{
		Expression:  strings.Join(parts, " "),
		Returns:     rule.Returns,
		Description: rule.Description,
	}
}
