package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"apidelta/internal/change"
	"apidelta/internal/policy"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *DiffResponseCLI:
		return formatDiffHuman(v)
	case *policy.Report:
		return formatReportHuman(v)
	case *BaselineListResponseCLI:
		return formatBaselinesHuman(v)
	case *ReportListResponseCLI:
		return formatReportListHuman(v)
	case *RulesCheckResponseCLI:
		return formatRulesCheckHuman(v)
	case *RulesDecompileResponseCLI:
		return formatRulesDecompileHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatDiffHuman(resp *DiffResponseCLI) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Comparing %s -> %s\n", resp.OldRef, resp.NewRef)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Changes) == 0 {
		b.WriteString("No API changes detected.\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "%d change(s):\n\n", len(resp.Changes))
	for i := range resp.Changes {
		writeChangeHuman(&b, &resp.Changes[i], "", nil, 1)
	}
	return b.String(), nil
}

func formatReportHuman(r *policy.Report) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Policy: %s\n", r.Policy)
	if r.OldRef != "" || r.NewRef != "" {
		fmt.Fprintf(&b, "Comparing %s -> %s\n", r.OldRef, r.NewRef)
	}
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, c := range r.Changes {
		writeChangeHuman(&b, &c.APIChange, c.ReleaseType, c.MatchedRule, 1)
	}
	if len(r.Changes) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %d major, %d minor, %d patch, %d none\n",
		r.Counts[change.ReleaseMajor],
		r.Counts[change.ReleaseMinor],
		r.Counts[change.ReleasePatch],
		r.Counts[change.ReleaseNone])
	fmt.Fprintf(&b, "Verdict: %s\n", strings.ToUpper(string(r.Verdict)))
	return b.String(), nil
}

// writeChangeHuman renders one change line plus its nested changes.
// A zero release type means the change was never classified (plain diff).
func writeChangeHuman(b *strings.Builder, c *change.APIChange, rt change.ReleaseType, rule *change.MatchedRule, depth int) {
	indent := strings.Repeat("  ", depth)

	marker := "-"
	if rt != "" {
		marker = fmt.Sprintf("[%s]", rt)
	}
	fmt.Fprintf(b, "%s%s %s: %s", indent, marker, c.Path, c.Descriptor.String())
	if rule != nil {
		fmt.Fprintf(b, " (rule: %s)", rule.Name)
	}
	b.WriteString("\n")
	if c.Explanation != "" {
		fmt.Fprintf(b, "%s  %s\n", indent, c.Explanation)
	}

	for i := range c.NestedChanges {
		writeChangeHuman(b, &c.NestedChanges[i], "", nil, depth+1)
	}
}

func formatBaselinesHuman(resp *BaselineListResponseCLI) (string, error) {
	if len(resp.Baselines) == 0 {
		return "No baselines recorded.\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-24s %8s %8s  %s\n", "LABEL", "CREATED", "NODES", "EXPORTS", "SOURCE")
	for _, baseline := range resp.Baselines {
		fmt.Fprintf(&b, "%-20s %-24s %8d %8d  %s\n",
			baseline.Label,
			baseline.CreatedAt.Format("2006-01-02 15:04:05"),
			baseline.NodeCount,
			baseline.ExportCount,
			baseline.Source)
	}
	return b.String(), nil
}

func formatReportListHuman(resp *ReportListResponseCLI) (string, error) {
	if len(resp.Reports) == 0 {
		return "No reports recorded.\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-36s %-24s %-8s %7s  %s\n", "ID", "GENERATED", "VERDICT", "CHANGES", "POLICY")
	for _, r := range resp.Reports {
		fmt.Fprintf(&b, "%-36s %-24s %-8s %7d  %s\n",
			r.ID,
			r.GeneratedAt.Format("2006-01-02 15:04:05"),
			string(r.Verdict),
			r.ChangeCount,
			r.Policy)
	}
	return b.String(), nil
}

func formatRulesCheckHuman(resp *RulesCheckResponseCLI) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Policy: %s\n", resp.Policy)
	fmt.Fprintf(&b, "Rules: %d valid, %d invalid\n", resp.Valid, len(resp.Issues))
	for _, issue := range resp.Issues {
		fmt.Fprintf(&b, "  rule %d: %s\n", issue.Index, issue.Error)
	}
	return b.String(), nil
}

func formatRulesDecompileHuman(resp *RulesDecompileResponseCLI) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Policy: %s\n\n", resp.Policy)
	for _, entry := range resp.Results {
		if !entry.Success {
			fmt.Fprintf(&b, "rule %d: cannot decompile\n", entry.Index)
			continue
		}
		fmt.Fprintf(&b, "rule %d: %q -> %s (confidence %.2f)",
			entry.Index, entry.Template, entry.Returns, entry.Confidence)
		if entry.Fallback {
			b.WriteString(" [fallback]")
		}
		b.WriteString("\n")
		for _, alt := range entry.Alternatives {
			fmt.Fprintf(&b, "  alt: %q (confidence %.2f)\n", alt.Template, alt.Confidence)
		}
	}
	return b.String(), nil
}
