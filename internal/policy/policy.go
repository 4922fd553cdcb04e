// Package policy assigns release types to detected API changes. A policy is
// an ordered rule list plus a default release type; classification is
// first-match-wins over the declared order, so rule authors fully control
// precedence. Rules written at the intent or pattern level are compiled to
// dimensional form once, when the engine is built, never per change.
package policy

import (
	"fmt"

	"apidelta/internal/change"
	"apidelta/internal/errors"
	"apidelta/internal/logging"
	"apidelta/internal/ruledsl"
)

// Policy is the declared form of a rule set, before compilation
type Policy struct {
	Name    string             `json:"name,omitempty"`
	Default change.ReleaseType `json:"default"`
	Rules   []ruledsl.Rule     `json:"rules"`
}

// compiledRule pairs a normalized rule with a display name for verdicts
type compiledRule struct {
	dim  *ruledsl.DimensionalRule
	name string
}

// Engine is a compiled policy ready to classify changes. Building the
// engine is the only place rules are normalized; classification itself is
// pure matching over precompiled dimensional forms.
type Engine struct {
	name     string
	fallback change.ReleaseType
	rules    []compiledRule
	logger   *logging.Logger
}

// NewEngine compiles a policy. Rules that fail to normalize are skipped and
// reported; the remaining rules still compile, in declared order. A missing
// default release type or an empty policy is a hard error.
func NewEngine(p *Policy, logger *logging.Logger) (*Engine, []ruledsl.RuleError, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if p == nil {
		return nil, nil, errors.New(errors.PolicyInvalid, "policy is nil", nil)
	}
	if !change.ValidReleaseType(string(p.Default)) {
		return nil, nil, errors.New(errors.PolicyInvalid,
			fmt.Sprintf("policy %q has unknown default release type %q", p.Name, p.Default), nil)
	}

	eng := &Engine{name: p.Name, fallback: p.Default, logger: logger}

	var ruleErrs []ruledsl.RuleError
	for i, r := range p.Rules {
		dim, err := ruledsl.Normalize(r)
		if err != nil {
			ruleErrs = append(ruleErrs, ruledsl.RuleError{Index: i, Err: err})
			logger.Warn("skipping invalid policy rule", map[string]interface{}{
				"policy": p.Name,
				"index":  i,
				"error":  err.Error(),
			})
			continue
		}
		eng.rules = append(eng.rules, compiledRule{dim: dim, name: ruleName(r, dim, i)})
	}

	logger.Debug("policy compiled", map[string]interface{}{
		"policy":  p.Name,
		"rules":   len(eng.rules),
		"skipped": len(ruleErrs),
	})
	return eng, ruleErrs, nil
}

// ruleName picks the most descriptive available identifier for verdicts
func ruleName(r ruledsl.Rule, dim *ruledsl.DimensionalRule, index int) string {
	if dim.Name != "" {
		return dim.Name
	}
	switch rule := r.(type) {
	case *ruledsl.PatternRule:
		return rule.Template
	case *ruledsl.IntentRule:
		return rule.Expression
	}
	return fmt.Sprintf("rule-%d", index)
}

// Name returns the compiled policy's declared name
func (e *Engine) Name() string { return e.name }

// Default returns the release type assigned when no rule matches
func (e *Engine) Default() change.ReleaseType { return e.fallback }

// RuleCount reports how many rules survived compilation
func (e *Engine) RuleCount() int { return len(e.rules) }

// Classify assigns a release type to one change. Rules are tried in
// declared order and the first match wins; no match falls back to the
// policy default with no matched rule recorded.
func (e *Engine) Classify(c *change.APIChange) change.ClassifiedChange {
	out := change.ClassifiedChange{APIChange: *c, ReleaseType: e.fallback}
	for _, cr := range e.rules {
		if cr.dim.MatchesChange(c) {
			out.ReleaseType = cr.dim.Returns
			out.MatchedRule = &change.MatchedRule{
				Name:        cr.name,
				Description: cr.dim.Description,
			}
			break
		}
	}
	return out
}

// ClassifyAll classifies a batch and aggregates to one verdict, the most
// severe release type observed. An empty batch is none.
func (e *Engine) ClassifyAll(changes []*change.APIChange) ([]change.ClassifiedChange, change.ReleaseType) {
	classified := make([]change.ClassifiedChange, 0, len(changes))
	for _, c := range changes {
		classified = append(classified, e.Classify(c))
	}
	verdict := change.MostSevere(classified)
	e.logger.Debug("classification completed", map[string]interface{}{
		"policy":  e.name,
		"changes": len(classified),
		"verdict": string(verdict),
	})
	return classified, verdict
}
