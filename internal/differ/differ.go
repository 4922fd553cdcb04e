// Package differ walks two declaration surfaces in lock step and emits a
// multi-dimensional description of every detected change. It consults the
// reorder detector for parameter permutations and a TypeOracle collaborator
// for the direction of type edits. Diff never fails on malformed input:
// anomalies live on the module's error list, not in the change stream.
package differ

import (
	"fmt"
	"sort"

	"apidelta/internal/change"
	"apidelta/internal/logging"
	"apidelta/internal/reorder"
	"apidelta/internal/surface"
)

// Differ compares two module surfaces
type Differ struct {
	oracle TypeOracle
	opts   Options
	logger *logging.Logger
}

// New creates a differ. A nil logger is replaced with a silent one. The zero
// Options value means DefaultOptions; callers overriding individual fields
// must start from DefaultOptions, since a partially populated Options is
// taken literally apart from the numeric back-fills below.
func New(oracle TypeOracle, opts Options, logger *logging.Logger) *Differ {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	if opts.MaxNestingDepth <= 0 {
		opts.MaxNestingDepth = DefaultOptions().MaxNestingDepth
	}
	if opts.RenameThreshold <= 0 {
		opts.RenameThreshold = DefaultOptions().RenameThreshold
	}
	return &Differ{oracle: oracle, opts: opts, logger: logger}
}

// walkState tracks one recursive-descent chain through the two trees
type walkState struct {
	depth     int
	ancestors []string
	visited   map[string]bool
}

// Diff compares the export surfaces of two module versions and returns every
// detected change, identical trees yielding an empty result.
func (d *Differ) Diff(oldMod, newMod *surface.Module) []change.APIChange {
	if oldMod == nil || newMod == nil {
		return nil
	}

	st := walkState{visited: make(map[string]bool)}
	changes := d.compareMaps(oldMod.Exports, newMod.Exports, st)

	d.logger.Debug("surface comparison completed", map[string]interface{}{
		"oldExports": len(oldMod.Exports),
		"newExports": len(newMod.Exports),
		"changes":    len(changes),
	})
	return changes
}

// compareMaps set-differences two sibling node maps by key: old-only keys are
// removals, new-only keys additions, shared keys are compared recursively.
// Removed/added pairs of the same kind may collapse into a single rename.
func (d *Differ) compareMaps(oldM, newM map[string]*surface.Node, st walkState) []change.APIChange {
	var removed, added []*surface.Node
	var matchedOld, matchedNew []*surface.Node

	for _, key := range sortedKeys(oldM) {
		if newN, ok := newM[key]; ok {
			matchedOld = append(matchedOld, oldM[key])
			matchedNew = append(matchedNew, newN)
		} else {
			removed = append(removed, oldM[key])
		}
	}
	for _, key := range sortedKeys(newM) {
		if _, ok := oldM[key]; !ok {
			added = append(added, newM[key])
		}
	}

	var changes []change.APIChange

	renames, removed, added := d.detectRenames(removed, added)
	for _, r := range renames {
		c := d.newChange(change.Renamed(targetFor(r.oldNode.Kind, st.depth)), r.oldNode, st,
			fmt.Sprintf("'%s' was renamed to '%s'", r.oldNode.Name, r.newNode.Name))
		c.NewNode = r.newNode
		if r.newNode.Location != nil {
			c.NewLocation = r.newNode.Location
		}
		c.Context.RenameConfidence = r.score
		changes = append(changes, c)
	}

	for _, n := range removed {
		changes = append(changes, d.newChange(change.Removed(targetFor(n.Kind, st.depth)), n, st,
			fmt.Sprintf("'%s' was removed", n.Name)))
	}
	for _, n := range added {
		c := d.newChange(change.Added(targetFor(n.Kind, st.depth), addedTags(n)...), n, st,
			fmt.Sprintf("'%s' was added", n.Name))
		c.OldNode = nil
		c.OldLocation = nil
		c.NewNode = n
		c.NewLocation = n.Location
		changes = append(changes, c)
	}

	for i := range matchedOld {
		changes = append(changes, d.compareNodes(matchedOld[i], matchedNew[i], st)...)
	}

	return changes
}

// compareNodes emits the changes for one matched pair, with child changes
// rolled under the pair's own primary change when one exists
func (d *Differ) compareNodes(oldN, newN *surface.Node, st walkState) []change.APIChange {
	if st.depth >= d.opts.MaxNestingDepth {
		return nil
	}
	// A repeated path in one descent chain means a self-referential
	// declaration graph; treat it like hitting the depth limit.
	if st.visited[oldN.Path] {
		return nil
	}
	st.visited[oldN.Path] = true
	defer delete(st.visited, oldN.Path)

	own := d.compareFacets(oldN, newN, st)

	var childChanges []change.APIChange
	if d.opts.IncludeNestedChanges && (len(oldN.Children) > 0 || len(newN.Children) > 0) {
		childSt := walkState{
			depth:     st.depth + 1,
			ancestors: append(append([]string(nil), st.ancestors...), oldN.Path),
			visited:   st.visited,
		}
		childChanges = d.compareMaps(oldN.Children, newN.Children, childSt)
	}

	if len(childChanges) > 0 {
		if len(own) > 0 {
			own[0].NestedChanges = append(own[0].NestedChanges, childChanges...)
		} else {
			own = append(own, childChanges...)
		}
	}
	return own
}

type renameCandidate struct {
	oldNode *surface.Node
	newNode *surface.Node
	score   float64
}

// detectRenames pairs removed and added nodes of equal kind whose names are
// similar enough, returning the pairs and the leftovers. Candidates are
// scanned in sorted order and ties keep the earliest-encountered pair, so
// the result is deterministic.
func (d *Differ) detectRenames(removed, added []*surface.Node) ([]renameCandidate, []*surface.Node, []*surface.Node) {
	var pairs []renameCandidate
	usedAdded := make(map[int]bool)
	usedRemoved := make(map[int]bool)

	for ri, oldN := range removed {
		bestScore := 0.0
		bestIdx := -1
		for ai, newN := range added {
			if usedAdded[ai] || newN.Kind != oldN.Kind {
				continue
			}
			if score := reorder.Similarity(oldN.Name, newN.Name); score > bestScore {
				bestScore = score
				bestIdx = ai
			}
		}
		if bestIdx >= 0 && bestScore >= d.opts.RenameThreshold {
			pairs = append(pairs, renameCandidate{oldNode: oldN, newNode: added[bestIdx], score: bestScore})
			usedAdded[bestIdx] = true
			usedRemoved[ri] = true
		}
	}

	var restRemoved, restAdded []*surface.Node
	for i, n := range removed {
		if !usedRemoved[i] {
			restRemoved = append(restRemoved, n)
		}
	}
	for i, n := range added {
		if !usedAdded[i] {
			restAdded = append(restAdded, n)
		}
	}
	return pairs, restRemoved, restAdded
}

// newChange builds a change record anchored on the old-side node
func (d *Differ) newChange(desc change.Descriptor, node *surface.Node, st walkState, explanation string) change.APIChange {
	c := change.APIChange{
		Descriptor:  desc,
		Path:        node.Path,
		NodeKind:    node.Kind,
		OldNode:     node,
		OldLocation: node.Location,
		Explanation: explanation,
		Context: change.Context{
			IsNested:      st.depth > 0,
			Depth:         st.depth,
			AncestorPaths: st.ancestors,
		},
	}
	return c
}

func addedTags(n *surface.Node) []string {
	var tags []string
	if n.Modifiers.Has(surface.ModOptional) {
		tags = append(tags, "optional")
	}
	if n.Metadata != nil && n.Metadata.Deprecated {
		tags = append(tags, "deprecated")
	}
	return tags
}

func targetFor(kind surface.NodeKind, depth int) change.Target {
	switch kind {
	case surface.KindParameter:
		return change.TargetParameter
	case surface.KindProperty, surface.KindGetter, surface.KindSetter:
		return change.TargetProperty
	case surface.KindMethod:
		return change.TargetMethod
	case surface.KindTypeParameter:
		return change.TargetTypeParameter
	case surface.KindEnumMember:
		return change.TargetEnumMember
	case surface.KindCallSignature, surface.KindConstructSignature, surface.KindIndexSignature:
		return change.TargetSignature
	default:
		if depth == 0 {
			return change.TargetExport
		}
		return change.TargetMember
	}
}

func sortedKeys(m map[string]*surface.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
