package ruledsl

import (
	"fmt"

	"apidelta/internal/change"
	"apidelta/internal/errors"
	"apidelta/internal/surface"
)

// CompilePattern lowers a pattern rule to dimensional form by reading the
// dimensions back out of its template text and variable bindings. The result
// matches at least every change the pattern's catalog entry was built for.
func CompilePattern(rule *PatternRule) (*DimensionalRule, error) {
	if rule == nil {
		return nil, errors.New(errors.RuleInvalid, "pattern rule is nil", nil)
	}
	if rule.Template == "" {
		return nil, errors.New(errors.RuleInvalid, "pattern rule has no template", nil)
	}
	if !change.ValidReleaseType(string(rule.Returns)) {
		return nil, errors.New(errors.RuleInvalid,
			fmt.Sprintf("pattern rule returns unknown release type %q", rule.Returns), nil)
	}

	inf := inferFromPattern(rule)

	dim := &DimensionalRule{
		Name:        rule.Template,
		Returns:     rule.Returns,
		Description: rule.Description,
	}
	if inf.action != "" {
		dim.Actions = []change.Action{inf.action}
	}
	if inf.aspect != "" {
		dim.Aspects = []change.Aspect{inf.aspect}
	}
	if inf.impact != "" {
		// Only modified changes carry an impact on their descriptor. For the
		// other actions the differ expresses the same distinction as tags,
		// so the compiled rule constrains tags instead.
		switch {
		case inf.action == "" || inf.action == change.ActionModified:
			dim.Impacts = []change.Impact{inf.impact}
		case inf.impact == change.ImpactNarrowing:
			dim.Tags = []string{"required"}
		case inf.impact == change.ImpactWidening:
			dim.Tags = []string{"optional", "rest"}
		}
	}
	if inf.target != "" {
		dim.Targets = []change.Target{change.Target(inf.target)}
	}
	if inf.nodeKind != "" {
		dim.NodeKinds = []surface.NodeKind{surface.NodeKind(inf.nodeKind)}
	}
	if inf.nested {
		nested := true
		dim.Nested = &nested
	}

	if len(dim.Actions) == 0 && len(dim.Aspects) == 0 && len(dim.Impacts) == 0 &&
		len(dim.Targets) == 0 && len(dim.NodeKinds) == 0 && len(dim.Tags) == 0 &&
		dim.Nested == nil {
		return nil, errors.New(errors.RuleInvalid,
			fmt.Sprintf("template %q constrains no dimension", rule.Template), nil)
	}
	return dim, nil
}

// Normalize lowers any rule representation to dimensional form. Dimensional
// rules pass through after release-type validation.
func Normalize(r Rule) (*DimensionalRule, error) {
	switch rule := r.(type) {
	case *DimensionalRule:
		if rule == nil {
			return nil, errors.New(errors.RuleInvalid, "dimensional rule is nil", nil)
		}
		if !change.ValidReleaseType(string(rule.Returns)) {
			return nil, errors.New(errors.RuleInvalid,
				fmt.Sprintf("rule %q returns unknown release type %q", rule.Name, rule.Returns), nil)
		}
		return rule, nil
	case *PatternRule:
		return CompilePattern(rule)
	case *IntentRule:
		result := ParseIntent(rule)
		if !result.Success {
			return nil, errors.New(errors.RuleInvalid,
				fmt.Sprintf("intent expression %q carries no recognizable signal", rule.Expression), nil).
				WithDetails(result.Unmatched)
		}
		return result.Rule, nil
	case nil:
		return nil, errors.New(errors.RuleInvalid, "rule is nil", nil)
	default:
		return nil, errors.New(errors.RuleInvalid,
			fmt.Sprintf("unknown rule kind %q", r.Kind()), nil)
	}
}

// RuleError records one rule that failed a batch transformation, by its
// position in the builder's declared order.
type RuleError struct {
	Index int   `json:"index"`
	Err   error `json:"error"`
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e RuleError) Unwrap() error { return e.Err }

// Builder accumulates rules of any representation level and transforms them
// as a batch, preserving declared order. A failing rule is skipped and
// reported, never aborting the batch.
type Builder struct {
	rules []Rule
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends rules in declared order
func (b *Builder) Add(rules ...Rule) *Builder {
	b.rules = append(b.rules, rules...)
	return b
}

// Intent appends a natural-language rule
func (b *Builder) Intent(expression string, returns change.ReleaseType) *Builder {
	return b.Add(&IntentRule{Expression: expression, Returns: returns})
}

// Pattern appends a template rule
func (b *Builder) Pattern(template string, returns change.ReleaseType, vars ...Variable) *Builder {
	return b.Add(&PatternRule{Template: template, Variables: vars, Returns: returns})
}

// Dimensional appends an explicit-arrays rule
func (b *Builder) Dimensional(rule *DimensionalRule) *Builder {
	return b.Add(rule)
}

// Len reports how many rules the builder holds
func (b *Builder) Len() int { return len(b.rules) }

// Rules returns the accumulated rules in declared order
func (b *Builder) Rules() []Rule {
	out := make([]Rule, len(b.rules))
	copy(out, b.rules)
	return out
}

// Normalize lowers every accumulated rule to dimensional form. Output order
// follows declared order with failed rules omitted; each failure is reported
// with its original index.
func (b *Builder) Normalize() ([]*DimensionalRule, []RuleError) {
	var (
		out  []*DimensionalRule
		errs []RuleError
	)
	for i, r := range b.rules {
		dim, err := Normalize(r)
		if err != nil {
			errs = append(errs, RuleError{Index: i, Err: err})
			continue
		}
		out = append(out, dim)
	}
	return out, errs
}

// Decompile lowers every accumulated rule to pattern form, normalizing
// through dimensional as needed. Failed rules are omitted and reported.
func (b *Builder) Decompile() ([]DecompileResult, []RuleError) {
	var (
		out  []DecompileResult
		errs []RuleError
	)
	for i, r := range b.rules {
		dim, err := Normalize(r)
		if err != nil {
			errs = append(errs, RuleError{Index: i, Err: err})
			continue
		}
		out = append(out, DecompileToPattern(dim))
	}
	return out, errs
}
