package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"apidelta/internal/change"
	"apidelta/internal/policy"
	"apidelta/internal/store"
)

func sampleChange() change.APIChange {
	return change.APIChange{
		Descriptor:  change.Removed(change.TargetExport),
		Path:        "connect",
		NodeKind:    "function",
		Explanation: "export 'connect' was removed",
	}
}

func TestFormatResponseJSON(t *testing.T) {
	resp := &DiffResponseCLI{
		OldRef:  "old.d.ts",
		NewRef:  "new.d.ts",
		Changes: []change.APIChange{sampleChange()},
	}

	output, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}

	var decoded DiffResponseCLI
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.OldRef != "old.d.ts" || len(decoded.Changes) != 1 {
		t.Errorf("Round trip lost data: %+v", decoded)
	}
}

func TestFormatDiffHuman(t *testing.T) {
	resp := &DiffResponseCLI{
		OldRef:  "old.d.ts",
		NewRef:  "new.d.ts",
		Changes: []change.APIChange{sampleChange()},
	}

	output, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	for _, want := range []string{"old.d.ts -> new.d.ts", "connect", "removed export"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatDiffHumanEmpty(t *testing.T) {
	output, err := FormatResponse(&DiffResponseCLI{OldRef: "a", NewRef: "b"}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	if !strings.Contains(output, "No API changes detected") {
		t.Errorf("Empty diff output = %q", output)
	}
}

func TestFormatReportHuman(t *testing.T) {
	c := sampleChange()
	report := &policy.Report{
		Policy:  "semver",
		OldRef:  "v1",
		NewRef:  "v2",
		Verdict: change.ReleaseMajor,
		Counts: map[change.ReleaseType]int{
			change.ReleaseMajor: 1,
			change.ReleaseMinor: 0,
			change.ReleasePatch: 0,
			change.ReleaseNone:  0,
		},
		Changes: []change.ClassifiedChange{
			{
				APIChange:   c,
				ReleaseType: change.ReleaseMajor,
				MatchedRule: &change.MatchedRule{Name: "removed-declaration"},
			},
		},
	}

	output, err := FormatResponse(report, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	for _, want := range []string{
		"Policy: semver",
		"[major] connect",
		"rule: removed-declaration",
		"1 major, 0 minor",
		"Verdict: MAJOR",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatBaselinesHuman(t *testing.T) {
	resp := &BaselineListResponseCLI{
		Baselines: []store.Baseline{
			{
				Label:       "v1.2.0",
				Source:      "api.d.ts",
				NodeCount:   42,
				ExportCount: 7,
				CreatedAt:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
			},
		},
	}

	output, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	for _, want := range []string{"v1.2.0", "api.d.ts", "42", "2026-03-01"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}

	empty, err := FormatResponse(&BaselineListResponseCLI{}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	if !strings.Contains(empty, "No baselines") {
		t.Errorf("Empty listing = %q", empty)
	}
}

func TestFormatRulesCheckHuman(t *testing.T) {
	resp := &RulesCheckResponseCLI{
		Policy: "internal",
		Valid:  3,
		Issues: []RuleIssueCLI{{Index: 1, Error: "no dimension constrained"}},
	}

	output, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	for _, want := range []string{"3 valid, 1 invalid", "rule 1: no dimension constrained"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatRulesDecompileHuman(t *testing.T) {
	resp := &RulesDecompileResponseCLI{
		Policy: "internal",
		Results: []DecompileEntryCLI{
			{
				Index:      0,
				Success:    true,
				Template:   "added required {target}",
				Returns:    change.ReleaseMajor,
				Confidence: 0.8,
				Alternatives: []DecompileAlternCLI{
					{Template: "{action} {target}", Confidence: 0.45},
				},
			},
			{Index: 1, Success: false},
		},
	}

	output, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	for _, want := range []string{
		`"added required {target}" -> major (confidence 0.80)`,
		`alt: "{action} {target}" (confidence 0.45)`,
		"rule 1: cannot decompile",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatResponseRejectsUnknownFormat(t *testing.T) {
	if _, err := FormatResponse(&DiffResponseCLI{}, OutputFormat("xml")); err == nil {
		t.Error("Unknown format accepted")
	}
}
