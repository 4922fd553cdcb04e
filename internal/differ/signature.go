package differ

import (
	"fmt"
	"sort"

	"apidelta/internal/change"
	"apidelta/internal/reorder"
	"apidelta/internal/surface"
)

// paramComparison is the outcome of comparing one parameter list pair:
// the per-parameter changes, the impact contributed by the first differing
// position, and any standalone reorder/rename findings
type paramComparison struct {
	nested      []change.APIChange
	firstImpact change.Impact
	standalone  []change.APIChange
}

// compareCallable compares a callable declaration: its direct parameter
// list, its call/construct signatures, and its return type. Parameter and
// return differences roll up into one signature-level modified change whose
// impact comes from the first differing position, with the individual
// parameter changes nested beneath it.
func (d *Differ) compareCallable(oldN, newN *surface.Node, st walkState) []change.APIChange {
	oldInfo, newInfo := oldN.TypeInfo, newN.TypeInfo

	var changes []change.APIChange
	var nested []change.APIChange
	var firstImpact change.Impact

	record := func(pc paramComparison) {
		nested = append(nested, pc.nested...)
		changes = append(changes, pc.standalone...)
		if firstImpact == "" {
			firstImpact = pc.firstImpact
		}
	}

	record(d.compareParamLists(oldN, oldInfo.Parameters, newInfo.Parameters, st))

	// Call and construct signatures are compared position by position. The
	// reorder detector runs on each pair even when the normalized signature
	// text is unchanged: an identity permutation of same-typed parameters is
	// textually invisible yet semantically breaking.
	record(d.compareSignatureLists(oldN, oldInfo.CallSignatures, newInfo.CallSignatures, "call signature", st))
	record(d.compareSignatureLists(oldN, oldInfo.ConstructSignatures, newInfo.ConstructSignatures, "construct signature", st))

	if oldInfo.ReturnType != newInfo.ReturnType {
		impact := d.typeImpact(oldInfo.ReturnType, newInfo.ReturnType)
		c := d.newChange(
			change.Modified(change.TargetSignature, change.AspectType, impact),
			oldN, st, fmt.Sprintf("'%s': return type changed from '%s' to '%s'", oldN.Name, oldInfo.ReturnType, newInfo.ReturnType))
		c.Context.OldType = oldInfo.ReturnType
		c.Context.NewType = newInfo.ReturnType
		nested = append(nested, c)
		if firstImpact == "" {
			firstImpact = impact
		}
	}

	if firstImpact != "" {
		parent := d.newChange(
			change.Modified(targetFor(oldN.Kind, st.depth), change.AspectType, firstImpact),
			oldN, st, fmt.Sprintf("'%s': signature changed", oldN.Name))
		parent.Context.OldType = oldInfo.Raw
		parent.Context.NewType = newInfo.Raw
		parent.NestedChanges = nested
		return append([]change.APIChange{parent}, changes...)
	}

	// No compatibility-affecting difference; renames and reorders stand on
	// their own.
	return append(changes, nested...)
}

// compareParamLists compares two parameter lists position by position.
// Removed parameters always contribute narrowing; added parameters
// contribute narrowing when required, widening when optional or rest.
func (d *Differ) compareParamLists(owner *surface.Node, oldPs, newPs []surface.Parameter, st walkState) paramComparison {
	var pc paramComparison

	reordered := false
	if d.opts.DetectParameterReordering {
		if v := reorder.DetectReordering(oldPs, newPs); v.HasReordering {
			reordered = true
			c := d.newChange(
				change.Reordered(change.TargetParameter, "reorder-confidence:"+string(v.Confidence)),
				owner, st, v.Summary)
			pc.standalone = append(pc.standalone, c)
		}
	}

	setImpact := func(impact change.Impact) {
		if pc.firstImpact == "" {
			pc.firstImpact = impact
		}
	}
	paramSt := walkState{
		depth:     st.depth + 1,
		ancestors: append(append([]string(nil), st.ancestors...), owner.Path),
		visited:   st.visited,
	}
	paramChange := func(desc change.Descriptor, p surface.Parameter, expl string) change.APIChange {
		return change.APIChange{
			Descriptor:  desc,
			Path:        owner.Path + "." + p.Name,
			NodeKind:    surface.KindParameter,
			Explanation: expl,
			Context: change.Context{
				IsNested:      true,
				Depth:         paramSt.depth,
				AncestorPaths: paramSt.ancestors,
			},
		}
	}

	minLen := len(oldPs)
	if len(newPs) < minLen {
		minLen = len(newPs)
	}

	for i := 0; i < minLen; i++ {
		o, n := oldPs[i], newPs[i]

		if o.Type != n.Type {
			impact := d.typeImpact(o.Type, n.Type)
			c := paramChange(
				change.Modified(change.TargetParameter, change.AspectType, impact),
				n, fmt.Sprintf("parameter '%s': type changed from '%s' to '%s'", n.Name, o.Type, n.Type))
			c.Context.OldType = o.Type
			c.Context.NewType = n.Type
			pc.nested = append(pc.nested, c)
			setImpact(impact)
		}

		if o.Optional != n.Optional {
			impact := change.ImpactWidening
			expl := fmt.Sprintf("parameter '%s' became optional", n.Name)
			if o.Optional {
				impact = change.ImpactNarrowing
				expl = fmt.Sprintf("parameter '%s' became required", n.Name)
			}
			pc.nested = append(pc.nested, paramChange(
				change.Modified(change.TargetParameter, change.AspectOptionality, impact), n, expl))
			setImpact(impact)
		}

		if !reordered && o.Name != n.Name && o.Type == n.Type {
			c := paramChange(change.Renamed(change.TargetParameter), n,
				fmt.Sprintf("parameter '%s' was renamed to '%s'", o.Name, n.Name))
			c.Context.RenameConfidence = reorder.Similarity(o.Name, n.Name)
			pc.nested = append(pc.nested, c)
		}
	}

	for i := minLen; i < len(oldPs); i++ {
		p := oldPs[i]
		pc.nested = append(pc.nested, paramChange(
			change.Removed(change.TargetParameter), p,
			fmt.Sprintf("parameter '%s' was removed", p.Name)))
		setImpact(change.ImpactNarrowing)
	}

	for i := minLen; i < len(newPs); i++ {
		p := newPs[i]
		var tags []string
		impact := change.ImpactNarrowing
		if p.Optional {
			tags = append(tags, "optional")
			impact = change.ImpactWidening
		}
		if p.Rest {
			tags = append(tags, "rest")
			impact = change.ImpactWidening
		}
		if impact == change.ImpactNarrowing {
			tags = append(tags, "required")
		}
		pc.nested = append(pc.nested, paramChange(
			change.Added(change.TargetParameter, tags...), p,
			fmt.Sprintf("parameter '%s' was added", p.Name)))
		setImpact(impact)
	}

	return pc
}

// compareSignatureLists pairs signatures by index; an uneven count shows up
// as added/removed signature changes
func (d *Differ) compareSignatureLists(owner *surface.Node, oldSigs, newSigs []surface.CallableSignature, label string, st walkState) paramComparison {
	var pc paramComparison

	minLen := len(oldSigs)
	if len(newSigs) < minLen {
		minLen = len(newSigs)
	}

	for i := 0; i < minLen; i++ {
		sub := d.compareParamLists(owner, oldSigs[i].Parameters, newSigs[i].Parameters, st)
		pc.nested = append(pc.nested, sub.nested...)
		pc.standalone = append(pc.standalone, sub.standalone...)
		if pc.firstImpact == "" {
			pc.firstImpact = sub.firstImpact
		}

		if oldSigs[i].ReturnType != newSigs[i].ReturnType {
			impact := d.typeImpact(oldSigs[i].ReturnType, newSigs[i].ReturnType)
			c := d.newChange(
				change.Modified(change.TargetSignature, change.AspectType, impact),
				owner, st, fmt.Sprintf("'%s': %s %d return type changed", owner.Name, label, i))
			c.Context.OldType = oldSigs[i].ReturnType
			c.Context.NewType = newSigs[i].ReturnType
			pc.nested = append(pc.nested, c)
			if pc.firstImpact == "" {
				pc.firstImpact = impact
			}
		}
	}

	for i := minLen; i < len(oldSigs); i++ {
		pc.nested = append(pc.nested, d.newChange(
			change.Removed(change.TargetSignature), owner, st,
			fmt.Sprintf("'%s': %s %d was removed", owner.Name, label, i)))
		if pc.firstImpact == "" {
			pc.firstImpact = change.ImpactNarrowing
		}
	}
	for i := minLen; i < len(newSigs); i++ {
		pc.nested = append(pc.nested, d.newChange(
			change.Added(change.TargetSignature), owner, st,
			fmt.Sprintf("'%s': %s %d was added", owner.Name, label, i)))
		if pc.firstImpact == "" {
			pc.firstImpact = change.ImpactWidening
		}
	}

	return pc
}

// compareProperties set-differences the structural properties of an object
// type by name, treating a required addition or any removal as narrowing
// and an optional addition as widening
func (d *Differ) compareProperties(oldN, newN *surface.Node, st walkState) []change.APIChange {
	oldProps := propMap(oldN.TypeInfo.Properties)
	newProps := propMap(newN.TypeInfo.Properties)

	var nested []change.APIChange
	var firstImpact change.Impact
	setImpact := func(impact change.Impact) {
		if firstImpact == "" {
			firstImpact = impact
		}
	}

	propSt := walkState{
		depth:     st.depth + 1,
		ancestors: append(append([]string(nil), st.ancestors...), oldN.Path),
		visited:   st.visited,
	}
	propChange := func(desc change.Descriptor, name, expl string) change.APIChange {
		return change.APIChange{
			Descriptor:  desc,
			Path:        oldN.Path + "." + name,
			NodeKind:    surface.KindProperty,
			Explanation: expl,
			Context: change.Context{
				IsNested:      true,
				Depth:         propSt.depth,
				AncestorPaths: propSt.ancestors,
			},
		}
	}

	for _, name := range sortedPropNames(oldN.TypeInfo.Properties) {
		o := oldProps[name]
		n, ok := newProps[name]
		if !ok {
			nested = append(nested, propChange(
				change.Removed(change.TargetProperty), name,
				fmt.Sprintf("property '%s' was removed", name)))
			setImpact(change.ImpactNarrowing)
			continue
		}
		if o.Type != n.Type {
			impact := d.typeImpact(o.Type, n.Type)
			c := propChange(
				change.Modified(change.TargetProperty, change.AspectType, impact),
				name, fmt.Sprintf("property '%s': type changed from '%s' to '%s'", name, o.Type, n.Type))
			c.Context.OldType = o.Type
			c.Context.NewType = n.Type
			nested = append(nested, c)
			setImpact(impact)
		}
		if o.Optional != n.Optional {
			impact := change.ImpactWidening
			if o.Optional {
				impact = change.ImpactNarrowing
			}
			nested = append(nested, propChange(
				change.Modified(change.TargetProperty, change.AspectOptionality, impact),
				name, fmt.Sprintf("property '%s': optionality changed", name)))
			setImpact(impact)
		}
		if o.Readonly != n.Readonly {
			impact := change.ImpactNarrowing
			if o.Readonly {
				impact = change.ImpactWidening
			}
			nested = append(nested, propChange(
				change.Modified(change.TargetProperty, change.AspectReadonly, impact),
				name, fmt.Sprintf("property '%s': readonly changed", name)))
			setImpact(impact)
		}
	}

	for _, name := range sortedPropNames(newN.TypeInfo.Properties) {
		if _, ok := oldProps[name]; ok {
			continue
		}
		p := newProps[name]
		impact := change.ImpactNarrowing
		var tags []string
		if p.Optional {
			impact = change.ImpactWidening
			tags = append(tags, "optional")
		} else {
			tags = append(tags, "required")
		}
		nested = append(nested, propChange(
			change.Added(change.TargetProperty, tags...), name,
			fmt.Sprintf("property '%s' was added", name)))
		setImpact(impact)
	}

	if len(nested) == 0 {
		return nil
	}

	parent := d.newChange(
		change.Modified(targetFor(oldN.Kind, st.depth), change.AspectType, firstImpact),
		oldN, st, fmt.Sprintf("'%s': object shape changed", oldN.Name))
	parent.Context.OldType = oldN.TypeInfo.Raw
	parent.Context.NewType = newN.TypeInfo.Raw
	parent.NestedChanges = nested
	return []change.APIChange{parent}
}

func propMap(props []surface.Property) map[string]surface.Property {
	m := make(map[string]surface.Property, len(props))
	for _, p := range props {
		m[p.Name] = p
	}
	return m
}

func sortedPropNames(props []surface.Property) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
