package policy

import (
	"testing"

	"apidelta/internal/change"
	"apidelta/internal/ruledsl"
	"apidelta/internal/surface"
)

func removedExport(path string) *change.APIChange {
	return &change.APIChange{
		Descriptor: change.Removed(change.TargetExport),
		Path:       path,
		NodeKind:   surface.KindFunction,
	}
}

func addedExport(path string) *change.APIChange {
	return &change.APIChange{
		Descriptor: change.Added(change.TargetExport),
		Path:       path,
		NodeKind:   surface.KindFunction,
	}
}

func testPolicy(t *testing.T) *Engine {
	t.Helper()
	p := &Policy{
		Name:    "test",
		Default: change.ReleaseNone,
		Rules: []ruledsl.Rule{
			&ruledsl.DimensionalRule{
				Name:    "removed-export",
				Actions: []change.Action{change.ActionRemoved},
				Targets: []change.Target{change.TargetExport},
				Returns: change.ReleaseMajor,
			},
			&ruledsl.DimensionalRule{
				Name:    "added-export",
				Actions: []change.Action{change.ActionAdded},
				Targets: []change.Target{change.TargetExport},
				Returns: change.ReleaseMinor,
			},
		},
	}
	eng, ruleErrs, err := NewEngine(p, nil)
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	if len(ruleErrs) != 0 {
		t.Fatalf("unexpected rule errors: %+v", ruleErrs)
	}
	return eng
}

func TestClassifyFirstMatchWins(t *testing.T) {
	p := &Policy{
		Name:    "ordered",
		Default: change.ReleaseNone,
		Rules: []ruledsl.Rule{
			&ruledsl.DimensionalRule{
				Name:    "any-modification",
				Actions: []change.Action{change.ActionModified},
				Returns: change.ReleasePatch,
			},
			&ruledsl.DimensionalRule{
				Name:    "narrowing",
				Actions: []change.Action{change.ActionModified},
				Impacts: []change.Impact{change.ImpactNarrowing},
				Returns: change.ReleaseMajor,
			},
		},
	}
	eng, _, err := NewEngine(p, nil)
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	c := &change.APIChange{
		Descriptor: change.Modified(change.TargetExport, change.AspectType, change.ImpactNarrowing),
		Path:       "widen",
	}
	got := eng.Classify(c)
	// Declared order decides, not specificity: the broad rule comes first.
	if got.ReleaseType != change.ReleasePatch {
		t.Errorf("release = %v, want patch from the first matching rule", got.ReleaseType)
	}
	if got.MatchedRule == nil || got.MatchedRule.Name != "any-modification" {
		t.Errorf("matched rule = %+v, want any-modification", got.MatchedRule)
	}
}

func TestClassifyFallsBackToDefault(t *testing.T) {
	eng := testPolicy(t)

	// A removed member is not a removed export; no rule matches.
	c := &change.APIChange{
		Descriptor: change.Removed(change.TargetMember),
		Path:       "Widget.helper",
		NodeKind:   surface.KindMethod,
	}
	got := eng.Classify(c)
	if got.ReleaseType != change.ReleaseNone {
		t.Errorf("release = %v, want the none default", got.ReleaseType)
	}
	if got.MatchedRule != nil {
		t.Errorf("unmatched change recorded rule %+v", got.MatchedRule)
	}
}

func TestClassifyAllAggregates(t *testing.T) {
	eng := testPolicy(t)

	classified, verdict := eng.ClassifyAll([]*change.APIChange{
		addedExport("a"),
		removedExport("b"),
	})
	if len(classified) != 2 {
		t.Fatalf("classified %d changes", len(classified))
	}
	if classified[0].ReleaseType != change.ReleaseMinor {
		t.Errorf("added export = %v, want minor", classified[0].ReleaseType)
	}
	if classified[1].ReleaseType != change.ReleaseMajor {
		t.Errorf("removed export = %v, want major", classified[1].ReleaseType)
	}
	if verdict != change.ReleaseMajor {
		t.Errorf("verdict = %v, want major", verdict)
	}

	if _, verdict := eng.ClassifyAll(nil); verdict != change.ReleaseNone {
		t.Errorf("empty batch verdict = %v, want none", verdict)
	}
}

func TestNewEngineSkipsInvalidRules(t *testing.T) {
	p := &Policy{
		Name:    "partial",
		Default: change.ReleaseNone,
		Rules: []ruledsl.Rule{
			&ruledsl.IntentRule{Expression: "lorem ipsum dolor", Returns: change.ReleaseMajor},
			&ruledsl.DimensionalRule{
				Actions: []change.Action{change.ActionRemoved},
				Returns: change.ReleaseMajor,
			},
		},
	}
	eng, ruleErrs, err := NewEngine(p, nil)
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	if len(ruleErrs) != 1 || ruleErrs[0].Index != 0 {
		t.Fatalf("rule errors = %+v, want one failure at index 0", ruleErrs)
	}
	if eng.RuleCount() != 1 {
		t.Errorf("rule count = %d, want 1", eng.RuleCount())
	}

	// The surviving rule still classifies.
	got := eng.Classify(removedExport("x"))
	if got.ReleaseType != change.ReleaseMajor {
		t.Errorf("release = %v, want major", got.ReleaseType)
	}
}

func TestNewEngineRejectsBrokenPolicies(t *testing.T) {
	if _, _, err := NewEngine(nil, nil); err == nil {
		t.Error("nil policy accepted")
	}
	if _, _, err := NewEngine(&Policy{Default: "huge"}, nil); err == nil {
		t.Error("unknown default release type accepted")
	}
}

func TestBuiltinSemverPolicy(t *testing.T) {
	p, err := DefaultPolicy()
	if err != nil {
		t.Fatalf("builtin policy failed to load: %v", err)
	}
	eng, ruleErrs, err := NewEngine(p, nil)
	if err != nil {
		t.Fatalf("builtin policy failed to compile: %v", err)
	}
	if len(ruleErrs) != 0 {
		t.Fatalf("builtin policy has invalid rules: %+v", ruleErrs)
	}

	cases := []struct {
		name string
		c    *change.APIChange
		want change.ReleaseType
	}{
		{"removed export", removedExport("f"), change.ReleaseMajor},
		{"added export", addedExport("f"), change.ReleaseMinor},
		{
			"added required parameter",
			&change.APIChange{Descriptor: change.Added(change.TargetParameter, "required"), Path: "f.p"},
			change.ReleaseMajor,
		},
		{
			"added optional parameter",
			&change.APIChange{Descriptor: change.Added(change.TargetParameter, "optional"), Path: "f.p"},
			change.ReleaseMinor,
		},
		{
			"narrowed type",
			&change.APIChange{Descriptor: change.Modified(change.TargetExport, change.AspectType, change.ImpactNarrowing), Path: "f"},
			change.ReleaseMajor,
		},
		{
			"widened type",
			&change.APIChange{Descriptor: change.Modified(change.TargetExport, change.AspectType, change.ImpactWidening), Path: "f"},
			change.ReleaseMinor,
		},
		{
			"deprecation",
			&change.APIChange{Descriptor: change.Modified(change.TargetExport, change.AspectDeprecation, change.ImpactEquivalent), Path: "f"},
			change.ReleasePatch,
		},
		{
			"reordered parameters",
			&change.APIChange{Descriptor: change.Reordered(change.TargetParameter), Path: "f"},
			change.ReleaseMajor,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := eng.Classify(tc.c)
			if got.ReleaseType != tc.want {
				t.Errorf("release = %v, want %v", got.ReleaseType, tc.want)
			}
		})
	}

	if names := BuiltinPolicyNames(); len(names) == 0 || names[0] != "semver" {
		t.Errorf("builtin policy names = %v", names)
	}
}

func TestReport(t *testing.T) {
	eng := testPolicy(t)
	report := NewReport(eng, []*change.APIChange{
		removedExport("a"),
		addedExport("b"),
	}, "v1.0.0", "v2.0.0")

	if report.ID == "" {
		t.Error("report has no id")
	}
	if report.Verdict != change.ReleaseMajor || !report.Breaking() {
		t.Errorf("verdict = %v, breaking = %v", report.Verdict, report.Breaking())
	}
	if report.Counts[change.ReleaseMajor] != 1 || report.Counts[change.ReleaseMinor] != 1 {
		t.Errorf("counts = %v", report.Counts)
	}
	if report.OldRef != "v1.0.0" || report.NewRef != "v2.0.0" {
		t.Errorf("refs = %q %q", report.OldRef, report.NewRef)
	}
	if len(report.Changes) != 2 {
		t.Errorf("changes = %d", len(report.Changes))
	}
}
