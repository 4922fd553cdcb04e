package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apidelta/internal/change"
	"apidelta/internal/policy"
	"apidelta/internal/ruledsl"
)

var (
	rulesCheckFormat     string
	rulesDecompileFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate policy rule files",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <policy-file>",
	Short: "Validate a policy file",
	Long: `Load a policy file and compile every rule to its dimensional form,
reporting each rule that does not compile. Exits non-zero when any rule
is invalid.

Examples:
  apidelta rules check policies/internal.yaml
  apidelta rules check release.toml --format=json`,
	Args: cobra.ExactArgs(1),
	Run:  runRulesCheck,
}

var rulesDecompileCmd = &cobra.Command{
	Use:   "decompile <policy-file>",
	Short: "Render policy rules as human-readable pattern templates",
	Long: `Lower every rule of a policy file to the closest pattern template,
with a confidence score for how well the template expresses the rule.
Useful for reviewing what a dimensional rule actually matches.

Examples:
  apidelta rules decompile policies/internal.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runRulesDecompile,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List builtin policies",
	Args:  cobra.NoArgs,
	Run:   runRulesList,
}

func init() {
	rulesCheckCmd.Flags().StringVar(&rulesCheckFormat, "format", "", "Output format (json, human)")
	rulesDecompileCmd.Flags().StringVar(&rulesDecompileFormat, "format", "", "Output format (json, human)")

	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.AddCommand(rulesDecompileCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rootCmd.AddCommand(rulesCmd)
}

// RuleIssueCLI is one invalid rule in a check response
type RuleIssueCLI struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// RulesCheckResponseCLI is the CLI response format for rules check
type RulesCheckResponseCLI struct {
	Policy string         `json:"policy"`
	Valid  int            `json:"valid"`
	Issues []RuleIssueCLI `json:"issues,omitempty"`
}

// DecompileEntryCLI is one rule's decompilation in a decompile response
type DecompileEntryCLI struct {
	Index        int                  `json:"index"`
	Success      bool                 `json:"success"`
	Template     string               `json:"template,omitempty"`
	Returns      change.ReleaseType   `json:"returns,omitempty"`
	Confidence   float64              `json:"confidence"`
	Fallback     bool                 `json:"fallback,omitempty"`
	Alternatives []DecompileAlternCLI `json:"alternatives,omitempty"`
}

// DecompileAlternCLI is one alternative template for a decompiled rule
type DecompileAlternCLI struct {
	Template   string  `json:"template"`
	Confidence float64 `json:"confidence"`
}

// RulesDecompileResponseCLI is the CLI response format for rules decompile
type RulesDecompileResponseCLI struct {
	Policy  string              `json:"policy"`
	Results []DecompileEntryCLI `json:"results"`
}

func runRulesCheck(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	builder, name, err := policyRules(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading policy: %v\n", err)
		os.Exit(1)
	}

	compiled, ruleErrs := builder.Normalize()

	resp := &RulesCheckResponseCLI{
		Policy: name,
		Valid:  len(compiled),
	}
	for _, re := range ruleErrs {
		resp.Issues = append(resp.Issues, RuleIssueCLI{Index: re.Index, Error: re.Err.Error()})
	}

	output, err := FormatResponse(resp, outputFormat(rulesCheckFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(output)

	if len(resp.Issues) > 0 {
		os.Exit(1)
	}
}

func runRulesDecompile(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	builder, name, err := policyRules(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading policy: %v\n", err)
		os.Exit(1)
	}

	resp := &RulesDecompileResponseCLI{Policy: name}
	for i, rule := range builder.Rules() {
		entry := DecompileEntryCLI{Index: i}

		dim, err := ruledsl.Normalize(rule)
		if err == nil {
			result := ruledsl.DecompileToPattern(dim)
			entry.Success = result.Success
			entry.Confidence = result.Confidence
			entry.Fallback = result.Fallback
			if result.Pattern != nil {
				entry.Template = result.Pattern.Template
				entry.Returns = result.Pattern.Returns
			}
			for _, alt := range result.Alternatives {
				entry.Alternatives = append(entry.Alternatives, DecompileAlternCLI{
					Template:   alt.Pattern.Template,
					Confidence: alt.Confidence,
				})
			}
		}
		resp.Results = append(resp.Results, entry)
	}

	output, err := FormatResponse(resp, outputFormat(rulesDecompileFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(output)
}

func runRulesList(cmd *cobra.Command, args []string) {
	for _, name := range policy.BuiltinPolicyNames() {
		marker := " "
		if name == policy.DefaultPolicyName {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
}
