package ruledsl

import (
	"testing"

	"apidelta/internal/change"
	"apidelta/internal/surface"
)

func TestDimensionalRuleMatchesChange(t *testing.T) {
	nested := true
	notNested := false

	modifiedType := &change.APIChange{
		Descriptor: change.Modified(change.TargetExport, change.AspectType, change.ImpactNarrowing),
		NodeKind:   surface.KindFunction,
	}
	addedOptional := &change.APIChange{
		Descriptor: change.Added(change.TargetParameter, "optional"),
		NodeKind:   surface.KindParameter,
		Context:    change.Context{IsNested: true},
	}

	cases := []struct {
		name string
		rule DimensionalRule
		c    *change.APIChange
		want bool
	}{
		{
			name: "empty rule is a wildcard",
			rule: DimensionalRule{Returns: change.ReleaseNone},
			c:    modifiedType,
			want: true,
		},
		{
			name: "action list must include the change",
			rule: DimensionalRule{
				Actions: []change.Action{change.ActionAdded, change.ActionRemoved},
				Returns: change.ReleaseMajor,
			},
			c:    modifiedType,
			want: false,
		},
		{
			name: "any listed action suffices",
			rule: DimensionalRule{
				Actions: []change.Action{change.ActionAdded, change.ActionModified},
				Returns: change.ReleaseMajor,
			},
			c:    modifiedType,
			want: true,
		},
		{
			name: "all constrained dimensions must hold",
			rule: DimensionalRule{
				Actions: []change.Action{change.ActionModified},
				Aspects: []change.Aspect{change.AspectType},
				Impacts: []change.Impact{change.ImpactWidening},
				Returns: change.ReleaseMajor,
			},
			c:    modifiedType,
			want: false,
		},
		{
			name: "node kind constraint",
			rule: DimensionalRule{
				NodeKinds: []surface.NodeKind{surface.KindClass},
				Returns:   change.ReleaseMajor,
			},
			c:    modifiedType,
			want: false,
		},
		{
			name: "tags match on any overlap",
			rule: DimensionalRule{
				Tags:    []string{"rest", "optional"},
				Returns: change.ReleaseMinor,
			},
			c:    addedOptional,
			want: true,
		},
		{
			name: "tag constraint with no overlap",
			rule: DimensionalRule{
				Tags:    []string{"required"},
				Returns: change.ReleaseMajor,
			},
			c:    addedOptional,
			want: false,
		},
		{
			name: "nested flag must agree when set",
			rule: DimensionalRule{Nested: &notNested, Returns: change.ReleaseMajor},
			c:    addedOptional,
			want: false,
		},
		{
			name: "nested flag agreeing",
			rule: DimensionalRule{Nested: &nested, Returns: change.ReleaseMinor},
			c:    addedOptional,
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.MatchesChange(tc.c); got != tc.want {
				t.Errorf("MatchesChange = %v, want %v", got, tc.want)
			}
			classified := &change.ClassifiedChange{APIChange: *tc.c}
			if got := tc.rule.Matches(classified); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}
