// Package reorder distinguishes parameter reordering from parameter
// renaming. It never judges type changes: a positive verdict requires equal
// parameter counts and pairwise-identical types, leaving only the question
// of whether the names moved or merely changed.
package reorder

import (
	"fmt"

	"apidelta/internal/surface"
)

// Confidence expresses how certain a reordering verdict is
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Detection thresholds. Exact-identity evidence always outranks the
// probabilistic cross-position match.
const (
	// benignThreshold: pairs at or above this are explainable as renames
	benignThreshold = 0.6
	// crossMatchThreshold: a new name this close to an old name at a
	// different position suggests the parameter moved
	crossMatchThreshold = 0.7
)

// PositionChange describes what happened at one parameter position
type PositionChange struct {
	Position       int     `json:"position"`
	OldName        string  `json:"oldName"`
	NewName        string  `json:"newName"`
	Similarity     float64 `json:"similarity"`
	Interpretation string  `json:"interpretation"`
}

// Verdict is the detector's answer for one parameter list pair
type Verdict struct {
	HasReordering    bool             `json:"hasReordering"`
	Confidence       Confidence       `json:"confidence"`
	Summary          string           `json:"summary"`
	PositionAnalysis []PositionChange `json:"positionAnalysis,omitempty"`
}

// DetectReordering decides whether the difference between two same-shaped
// parameter lists is a reorder or a set of renames.
//
// Priority order: an exact identity permutation (two or more names present
// in both lists at different positions) is high confidence; two or more
// positions whose names changed beyond recognition while strongly resembling
// an old name somewhere else is medium; if every differing pair is still
// recognizably the same name, it is a benign rename; anything else is
// reported as unresolved with no reordering asserted.
func DetectReordering(old, new []surface.Parameter) Verdict {
	if len(old) != len(new) || len(old) < 2 {
		return Verdict{
			HasReordering: false,
			Confidence:    High,
			Summary:       "parameter counts differ or too few parameters to reorder",
		}
	}

	for i := range old {
		if old[i].Type != new[i].Type {
			return Verdict{
				HasReordering: false,
				Confidence:    High,
				Summary:       fmt.Sprintf("parameter types differ at position %d; not a pure reorder", i),
			}
		}
	}

	analysis := analyzePositions(old, new)

	// Exact identity permutation: the same names, different positions.
	if moved := countExactMoves(old, new); moved >= 2 {
		return Verdict{
			HasReordering:    true,
			Confidence:       High,
			Summary:          fmt.Sprintf("%d parameters moved to different positions", moved),
			PositionAnalysis: analysis,
		}
	}

	// Probabilistic evidence: positions whose in-place similarity is below
	// the benign threshold, with the new name strongly resembling an old
	// name from a different position.
	dissimilar := 0
	crossMatches := 0
	for i := range analysis {
		if analysis[i].Similarity >= benignThreshold {
			continue
		}
		dissimilar++
		if bestCrossScore(new[i].Name, i, old) >= crossMatchThreshold {
			crossMatches++
		}
	}
	if dissimilar >= 2 && crossMatches >= 1 {
		return Verdict{
			HasReordering:    true,
			Confidence:       Medium,
			Summary:          fmt.Sprintf("%d positions changed beyond renaming; %d resemble parameters from other positions", dissimilar, crossMatches),
			PositionAnalysis: analysis,
		}
	}

	if dissimilar == 0 {
		changed := 0
		for i := range analysis {
			if analysis[i].Similarity < 1.0 {
				changed++
			}
		}
		summary := "parameter names unchanged"
		if changed > 0 {
			summary = fmt.Sprintf("%d parameters renamed in place", changed)
		}
		return Verdict{
			HasReordering:    false,
			Confidence:       High,
			Summary:          summary,
			PositionAnalysis: analysis,
		}
	}

	return Verdict{
		HasReordering:    false,
		Confidence:       Low,
		Summary:          fmt.Sprintf("%d parameters changed without clear reorder evidence", dissimilar),
		PositionAnalysis: analysis,
	}
}

func analyzePositions(old, new []surface.Parameter) []PositionChange {
	analysis := make([]PositionChange, len(old))
	for i := range old {
		score := Similarity(old[i].Name, new[i].Name)
		interp := Interpret(score)
		if old[i].Name == new[i].Name {
			interp = "unchanged"
		}
		analysis[i] = PositionChange{
			Position:       i,
			OldName:        old[i].Name,
			NewName:        new[i].Name,
			Similarity:     score,
			Interpretation: interp,
		}
	}
	return analysis
}

// countExactMoves counts names present in both lists at different positions
func countExactMoves(old, new []surface.Parameter) int {
	oldPos := make(map[string]int, len(old))
	for i, p := range old {
		oldPos[p.Name] = i
	}

	moved := 0
	for i, p := range new {
		if j, ok := oldPos[p.Name]; ok && j != i {
			moved++
		}
	}
	return moved
}

// bestCrossScore finds the strongest resemblance between name and any old
// parameter at a position other than exclude
func bestCrossScore(name string, exclude int, old []surface.Parameter) float64 {
	best := 0.0
	for j, p := range old {
		if j == exclude {
			continue
		}
		if s := Similarity(name, p.Name); s > best {
			best = s
		}
	}
	return best
}
