package ruledsl

import (
	"math"
	"testing"

	"apidelta/internal/change"
)

const scoreEps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < scoreEps
}

func TestDecompileAddedNarrowingPrefersRequiredTemplate(t *testing.T) {
	rule := &DimensionalRule{
		Actions: []change.Action{change.ActionAdded},
		Impacts: []change.Impact{change.ImpactNarrowing},
		Returns: change.ReleaseMajor,
	}

	result := DecompileToPattern(rule)
	if !result.Success || result.Fallback {
		t.Fatalf("expected non-fallback success, got %+v", result)
	}
	if result.Pattern.Template != "added required {target}" {
		t.Fatalf("template = %q, want 'added required {target}'", result.Pattern.Template)
	}
	if !approx(result.Confidence, 0.8) {
		t.Errorf("confidence = %v, want 0.8", result.Confidence)
	}

	// The specific template must beat the bare action template on the
	// same rule.
	var bare mapping
	for _, m := range catalog {
		if m.Template == "{action} {target}" {
			bare = m
		}
	}
	if bare.Template == "" {
		t.Fatal("catalog lost the bare action template")
	}
	if bareScore := scoreMapping(bare, rule); result.Confidence <= bareScore {
		t.Errorf("winner confidence %v not above bare template score %v", result.Confidence, bareScore)
	}
}

func TestDecompileNestedRulePrefersConditionTemplate(t *testing.T) {
	nested := true
	rule := &DimensionalRule{
		Actions: []change.Action{change.ActionModified},
		Nested:  &nested,
		Returns: change.ReleasePatch,
	}

	result := DecompileToPattern(rule)
	if !result.Success || result.Fallback {
		t.Fatalf("expected non-fallback success, got %+v", result)
	}
	if result.Pattern.Template != "{action} {target} when {condition}" {
		t.Fatalf("template = %q, want the condition template", result.Pattern.Template)
	}
	if result.Pattern.Variable("condition") != "nested" {
		t.Errorf("condition variable = %q, want 'nested'", result.Pattern.Variable("condition"))
	}
	if !approx(result.Confidence, 0.64) {
		t.Errorf("confidence = %v, want 0.64", result.Confidence)
	}

	if len(result.Alternatives) == 0 || len(result.Alternatives) > maxAlternatives {
		t.Fatalf("alternatives count = %d", len(result.Alternatives))
	}
	prev := result.Confidence
	for _, alt := range result.Alternatives {
		if alt.Confidence > prev {
			t.Errorf("alternatives not ordered by confidence: %v after %v", alt.Confidence, prev)
		}
		if alt.Confidence <= alternativeCutoff {
			t.Errorf("alternative %q below cutoff: %v", alt.Pattern.Template, alt.Confidence)
		}
		prev = alt.Confidence
	}
}

func TestDecompileFallsBackWhenCatalogCannotExpress(t *testing.T) {
	rule := &DimensionalRule{
		Tags:    []string{"experimental"},
		Returns: change.ReleaseMinor,
	}

	result := DecompileToPattern(rule)
	if !result.Success || !result.Fallback {
		t.Fatalf("expected fallback success, got %+v", result)
	}
	if result.Pattern.Template != fallbackGenericTemplate {
		t.Errorf("template = %q, want %q", result.Pattern.Template, fallbackGenericTemplate)
	}
	if !approx(result.Confidence, fallbackGenericConfidence) {
		t.Errorf("confidence = %v, want %v", result.Confidence, fallbackGenericConfidence)
	}
	if len(result.Alternatives) != 0 {
		t.Errorf("fallback carries alternatives: %+v", result.Alternatives)
	}
}

func TestDecompileRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		rule *DimensionalRule
	}{
		{"nil rule", nil},
		{"missing returns", &DimensionalRule{Actions: []change.Action{change.ActionAdded}}},
		{"unknown returns", &DimensionalRule{
			Actions: []change.Action{change.ActionAdded},
			Returns: change.ReleaseType("huge"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := DecompileToPattern(tc.rule)
			if result.Success {
				t.Errorf("expected failure, got %+v", result)
			}
			if result.Confidence != 0 {
				t.Errorf("confidence = %v, want exactly 0", result.Confidence)
			}
		})
	}
}

func TestDecompileRuleDiscriminatesKind(t *testing.T) {
	if r := DecompileRule(&IntentRule{Expression: "anything", Returns: change.ReleaseMajor}); r.Success {
		t.Errorf("intent rule decompiled directly: %+v", r)
	}
	if r := DecompileRule(&PatternRule{Template: "{action} {target}", Returns: change.ReleaseMajor}); r.Success {
		t.Errorf("pattern rule decompiled directly: %+v", r)
	}

	dim := &DimensionalRule{
		Actions: []change.Action{change.ActionRemoved},
		Returns: change.ReleaseMajor,
	}
	if r := DecompileRule(dim); !r.Success {
		t.Errorf("dimensional rule failed: %+v", r)
	}
}

func TestFindBestPatternAgreesWithDecompile(t *testing.T) {
	nested := true
	rules := []*DimensionalRule{
		nil,
		{Returns: change.ReleaseType("huge")},
		{Actions: []change.Action{change.ActionAdded}, Impacts: []change.Impact{change.ImpactNarrowing}, Returns: change.ReleaseMajor},
		{Actions: []change.Action{change.ActionModified}, Aspects: []change.Aspect{change.AspectType}, Impacts: []change.Impact{change.ImpactWidening}, Returns: change.ReleaseMinor},
		{Actions: []change.Action{change.ActionRenamed}, Targets: []change.Target{change.TargetExport}, Returns: change.ReleaseMajor},
		{Actions: []change.Action{change.ActionModified}, Nested: &nested, Returns: change.ReleasePatch},
		{Tags: []string{"experimental"}, Returns: change.ReleaseNone},
	}

	for i, rule := range rules {
		result := DecompileToPattern(rule)
		want := ""
		if result.Pattern != nil {
			want = result.Pattern.Template
		}
		if got := FindBestPattern(rule); got != want {
			t.Errorf("rule %d: FindBestPattern = %q, DecompileToPattern template = %q", i, got, want)
		}
	}
}

func TestPatternConfidenceBounds(t *testing.T) {
	if got := CalculatePatternConfidence(nil, nil); got != 0 {
		t.Errorf("nil inputs: confidence = %v, want exactly 0", got)
	}
	if got := CalculatePatternConfidence(&DimensionalRule{Returns: change.ReleaseMajor}, nil); got != 0 {
		t.Errorf("nil pattern: confidence = %v, want exactly 0", got)
	}

	nested := true
	rules := []*DimensionalRule{
		{Actions: []change.Action{change.ActionAdded}, Impacts: []change.Impact{change.ImpactNarrowing}, Returns: change.ReleaseMajor},
		{Actions: []change.Action{change.ActionModified}, Aspects: []change.Aspect{change.AspectOptionality}, Impacts: []change.Impact{change.ImpactNarrowing}, Targets: []change.Target{change.TargetProperty}, Returns: change.ReleaseMajor},
		{Actions: []change.Action{change.ActionModified}, Nested: &nested, Returns: change.ReleasePatch},
		{Actions: []change.Action{change.ActionReordered}, Targets: []change.Target{change.TargetParameter}, Returns: change.ReleaseMajor},
		{Tags: []string{"experimental"}, Returns: change.ReleaseMinor},
	}

	for i, rule := range rules {
		result := DecompileToPattern(rule)
		conf := CalculatePatternConfidence(rule, result.Pattern)
		if conf < 0 || conf > 1 {
			t.Errorf("rule %d: confidence %v out of [0,1]", i, conf)
		}
		if !result.Fallback && conf <= 0.5 {
			t.Errorf("rule %d: non-fallback round trip confidence %v, want > 0.5", i, conf)
		}
	}
}

func TestPatternConfidenceRewardsExactRoundTrip(t *testing.T) {
	rule := &DimensionalRule{
		Actions: []change.Action{change.ActionAdded},
		Impacts: []change.Impact{change.ImpactNarrowing},
		Returns: change.ReleaseMajor,
	}
	pattern := DecompileToPattern(rule).Pattern
	if conf := CalculatePatternConfidence(rule, pattern); !approx(conf, 1.0) {
		t.Errorf("exact round trip confidence = %v, want 1.0", conf)
	}

	// A wrong release type loses half the returns credit relative to exact.
	wrong := *pattern
	wrong.Returns = change.ReleasePatch
	if conf := CalculatePatternConfidence(rule, &wrong); conf >= 1.0 {
		t.Errorf("mismatched returns still scored %v", conf)
	}
}
