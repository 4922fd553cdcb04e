package differ

import (
	"fmt"

	"apidelta/internal/change"
	"apidelta/internal/surface"
)

// compareFacets compares every facet of one matched node pair: kind,
// modifiers, documentation metadata, heritage clauses, and finally the type
// itself.
func (d *Differ) compareFacets(oldN, newN *surface.Node, st walkState) []change.APIChange {
	if oldN.Kind != newN.Kind {
		c := d.newChange(
			change.Modified(targetFor(oldN.Kind, st.depth), change.AspectType, change.ImpactUnrelated),
			oldN, st,
			fmt.Sprintf("declaration kind changed from %s to %s", oldN.Kind, newN.Kind))
		c.NewNode = newN
		c.NewLocation = newN.Location
		return []change.APIChange{c}
	}

	var changes []change.APIChange
	add := func(c change.APIChange) {
		c.NewNode = newN
		c.NewLocation = newN.Location
		changes = append(changes, c)
	}

	for _, c := range d.compareModifiers(oldN, newN, st) {
		add(c)
	}
	for _, c := range d.compareMetadata(oldN, newN, st) {
		add(c)
	}
	for _, c := range d.compareClauses(oldN, newN, st) {
		add(c)
	}
	for _, c := range d.compareType(oldN, newN, st) {
		add(c)
	}
	return changes
}

// modifierFacet maps one modifier to its aspect and the impact direction of
// gaining or losing it
type modifierFacet struct {
	mod      surface.Modifier
	aspect   change.Aspect
	onAdd    change.Impact
	onRemove change.Impact
}

var modifierFacets = []modifierFacet{
	{surface.ModReadonly, change.AspectReadonly, change.ImpactNarrowing, change.ImpactWidening},
	{surface.ModOptional, change.AspectOptionality, change.ImpactWidening, change.ImpactNarrowing},
	{surface.ModAbstract, change.AspectAbstractness, change.ImpactNarrowing, change.ImpactWidening},
	{surface.ModStatic, change.AspectStaticness, change.ImpactUnrelated, change.ImpactUnrelated},
}

var visibilityRank = map[surface.Modifier]int{
	surface.ModPublic:    0,
	surface.ModProtected: 1,
	surface.ModPrivate:   2,
}

func visibilityOf(n *surface.Node) (surface.Modifier, int) {
	for _, mod := range []surface.Modifier{surface.ModPrivate, surface.ModProtected, surface.ModPublic} {
		if n.Modifiers.Has(mod) {
			return mod, visibilityRank[mod]
		}
	}
	return surface.ModPublic, 0
}

func (d *Differ) compareModifiers(oldN, newN *surface.Node, st walkState) []change.APIChange {
	var changes []change.APIChange
	target := targetFor(oldN.Kind, st.depth)

	for _, f := range modifierFacets {
		had, has := oldN.Modifiers.Has(f.mod), newN.Modifiers.Has(f.mod)
		if had == has {
			continue
		}
		impact, verb := f.onAdd, "added"
		if had {
			impact, verb = f.onRemove, "removed"
		}
		c := d.newChange(change.Modified(target, f.aspect, impact), oldN, st,
			fmt.Sprintf("'%s': %s modifier %s", oldN.Name, f.mod, verb))
		c.Context.ModifierChange = fmt.Sprintf("%s %s", f.mod, verb)
		changes = append(changes, c)
	}

	oldVis, oldRank := visibilityOf(oldN)
	newVis, newRank := visibilityOf(newN)
	if oldRank != newRank {
		impact := change.ImpactWidening
		if newRank > oldRank {
			impact = change.ImpactNarrowing
		}
		c := d.newChange(change.Modified(target, change.AspectVisibility, impact), oldN, st,
			fmt.Sprintf("'%s': visibility changed from %s to %s", oldN.Name, oldVis, newVis))
		c.Context.ModifierChange = fmt.Sprintf("visibility %s -> %s", oldVis, newVis)
		changes = append(changes, c)
	}

	return changes
}

func (d *Differ) compareMetadata(oldN, newN *surface.Node, st walkState) []change.APIChange {
	oldMeta, newMeta := oldN.Metadata, newN.Metadata
	if oldMeta == nil {
		oldMeta = &surface.Metadata{}
	}
	if newMeta == nil {
		newMeta = &surface.Metadata{}
	}

	var changes []change.APIChange
	target := targetFor(oldN.Kind, st.depth)

	if oldMeta.Deprecated != newMeta.Deprecated {
		tag, expl := "deprecated", fmt.Sprintf("'%s' is now deprecated", oldN.Name)
		if oldMeta.Deprecated {
			tag, expl = "undeprecated", fmt.Sprintf("'%s' is no longer deprecated", oldN.Name)
		}
		changes = append(changes, d.newChange(
			change.Modified(target, change.AspectDeprecation, change.ImpactEquivalent, tag),
			oldN, st, expl))
	}

	if oldMeta.DefaultValue != newMeta.DefaultValue && oldN.Kind != surface.KindTypeParameter {
		changes = append(changes, d.newChange(
			change.Modified(target, change.AspectDefaultValue, change.ImpactEquivalent),
			oldN, st,
			fmt.Sprintf("'%s': default value changed from %q to %q", oldN.Name, oldMeta.DefaultValue, newMeta.DefaultValue)))
	}

	return changes
}

func (d *Differ) compareClauses(oldN, newN *surface.Node, st walkState) []change.APIChange {
	var changes []change.APIChange
	target := targetFor(oldN.Kind, st.depth)

	if !sameStringSet(oldN.Extends, newN.Extends) {
		changes = append(changes, d.newChange(
			change.Modified(target, change.AspectExtendsClause, change.ImpactUndetermined),
			oldN, st,
			fmt.Sprintf("'%s': extends clause changed", oldN.Name)))
	}
	if !sameStringSet(oldN.Implements, newN.Implements) {
		changes = append(changes, d.newChange(
			change.Modified(target, change.AspectImplementsClause, change.ImpactUndetermined),
			oldN, st,
			fmt.Sprintf("'%s': implements clause changed", oldN.Name)))
	}
	return changes
}

// compareType dispatches on node kind: enum members and type parameters have
// bespoke aspects, callables go through signature comparison, anything else
// is a plain type-string comparison.
func (d *Differ) compareType(oldN, newN *surface.Node, st walkState) []change.APIChange {
	switch oldN.Kind {
	case surface.KindEnumMember:
		return d.comparePlainType(oldN, newN, st, change.AspectEnumValue)
	case surface.KindTypeParameter:
		return d.compareTypeParameter(oldN, newN, st)
	}

	oldInfo, newInfo := oldN.TypeInfo, newN.TypeInfo
	if oldInfo == nil || newInfo == nil {
		// Missing type info: fall back to raw-text equality on whatever
		// exists, degrading the impact to undetermined.
		oldRaw, newRaw := rawType(oldN), rawType(newN)
		if oldRaw == newRaw {
			return nil
		}
		c := d.newChange(
			change.Modified(targetFor(oldN.Kind, st.depth), change.AspectType, change.ImpactUndetermined),
			oldN, st, fmt.Sprintf("'%s': type text changed", oldN.Name))
		c.Context.OldType = oldRaw
		c.Context.NewType = newRaw
		return []change.APIChange{c}
	}

	if oldN.IsCallable() || len(oldInfo.CallSignatures) > 0 || len(oldInfo.ConstructSignatures) > 0 ||
		len(newInfo.CallSignatures) > 0 || len(newInfo.ConstructSignatures) > 0 {
		return d.compareCallable(oldN, newN, st)
	}

	if len(oldInfo.Properties) > 0 || len(newInfo.Properties) > 0 {
		return d.compareProperties(oldN, newN, st)
	}

	return d.comparePlainType(oldN, newN, st, change.AspectType)
}

func (d *Differ) comparePlainType(oldN, newN *surface.Node, st walkState, aspect change.Aspect) []change.APIChange {
	oldRaw, newRaw := rawType(oldN), rawType(newN)
	if oldRaw == newRaw {
		return nil
	}
	impact := d.typeImpact(oldRaw, newRaw)
	c := d.newChange(
		change.Modified(targetFor(oldN.Kind, st.depth), aspect, impact),
		oldN, st, fmt.Sprintf("'%s': type changed from '%s' to '%s'", oldN.Name, oldRaw, newRaw))
	c.Context.OldType = oldRaw
	c.Context.NewType = newRaw
	return []change.APIChange{c}
}

// compareTypeParameter compares the constraint (TypeInfo.Raw) and default
// type (Metadata.DefaultValue) of one type parameter
func (d *Differ) compareTypeParameter(oldN, newN *surface.Node, st walkState) []change.APIChange {
	var changes []change.APIChange

	oldRaw, newRaw := rawType(oldN), rawType(newN)
	if oldRaw != newRaw {
		c := d.newChange(
			change.Modified(change.TargetTypeParameter, change.AspectConstraint, d.typeImpact(oldRaw, newRaw)),
			oldN, st, fmt.Sprintf("'%s': constraint changed from '%s' to '%s'", oldN.Name, oldRaw, newRaw))
		c.Context.OldType = oldRaw
		c.Context.NewType = newRaw
		changes = append(changes, c)
	}

	oldDef, newDef := defaultType(oldN), defaultType(newN)
	if oldDef != newDef {
		changes = append(changes, d.newChange(
			change.Modified(change.TargetTypeParameter, change.AspectDefaultType, d.typeImpact(oldDef, newDef)),
			oldN, st, fmt.Sprintf("'%s': default type changed from '%s' to '%s'", oldN.Name, oldDef, newDef)))
	}
	return changes
}

// typeImpact consults the oracle unless type resolution is disabled
func (d *Differ) typeImpact(oldType, newType string) change.Impact {
	if !d.opts.ResolveTypeRelationships || d.oracle == nil {
		return change.ImpactUndetermined
	}
	return d.oracle.Compare(oldType, newType)
}

func rawType(n *surface.Node) string {
	if n.TypeInfo == nil {
		return ""
	}
	return n.TypeInfo.Raw
}

func defaultType(n *surface.Node) string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata.DefaultValue
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, s := range a {
		set[s]++
	}
	for _, s := range b {
		if set[s] == 0 {
			return false
		}
		set[s]--
	}
	return true
}
