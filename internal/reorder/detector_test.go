package reorder

import (
	"math"
	"testing"

	"apidelta/internal/surface"
)

func params(pairs ...[2]string) []surface.Parameter {
	out := make([]surface.Parameter, len(pairs))
	for i, p := range pairs {
		out[i] = surface.Parameter{Name: p[0], Type: p[1]}
	}
	return out
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "source", "source", 1.0},
		{"case change", "Source", "source", 0.95},
		{"prefix", "dest", "destination", 0.85},
		{"suffix", "name", "fileName", 0.85},
		{"one edit in four", "dest", "dst", 0.75},
		{"unrelated", "alpha", "zzz", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""}, {"a", ""}, {"", "b"}, {"x", "completely different"},
		{"param", "PARAM"}, {"count", "counter"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.97, "case change only"},
		{0.85, "abbreviation or spelling variation"},
		{0.7, "moderate change"},
		{0.5, "significant change"},
		{0.1, "completely different"},
	}
	for _, tt := range tests {
		if got := Interpret(tt.score); got != tt.want {
			t.Errorf("Interpret(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDetectReordering_ExactSwap(t *testing.T) {
	old := params([2]string{"source", "string"}, [2]string{"dest", "string"})
	new := params([2]string{"dest", "string"}, [2]string{"source", "string"})

	v := DetectReordering(old, new)
	if !v.HasReordering {
		t.Fatal("HasReordering = false, want true for exact swap")
	}
	if v.Confidence != High {
		t.Errorf("Confidence = %v, want high", v.Confidence)
	}
}

func TestDetectReordering_CrossPositionResemblance(t *testing.T) {
	// Names were both rewritten, but the new first name is clearly the old
	// second name spelled out. Medium-or-higher evidence of a reorder.
	old := params([2]string{"source", "string"}, [2]string{"dest", "string"})
	new := params([2]string{"destination", "string"}, [2]string{"src", "string"})

	v := DetectReordering(old, new)
	if !v.HasReordering {
		t.Fatal("HasReordering = false, want true")
	}
	if v.Confidence != High && v.Confidence != Medium {
		t.Errorf("Confidence = %v, want medium or high", v.Confidence)
	}
}

func TestDetectReordering_AbbreviationIsRename(t *testing.T) {
	// Same order, names abbreviated in place. Not a reorder.
	old := params([2]string{"source", "string"}, [2]string{"dest", "string"})
	new := params([2]string{"src", "string"}, [2]string{"dst", "string"})

	v := DetectReordering(old, new)
	if v.HasReordering {
		t.Errorf("HasReordering = true, want false for in-place abbreviation")
	}
}

func TestDetectReordering_BenignRenames(t *testing.T) {
	old := params([2]string{"count", "number"}, [2]string{"label", "string"})
	new := params([2]string{"counter", "number"}, [2]string{"labels", "string"})

	v := DetectReordering(old, new)
	if v.HasReordering {
		t.Errorf("HasReordering = true, want false")
	}
	if v.Confidence != High {
		t.Errorf("Confidence = %v, want high for benign renames", v.Confidence)
	}
}

func TestDetectReordering_Preconditions(t *testing.T) {
	t.Run("count mismatch", func(t *testing.T) {
		old := params([2]string{"a", "number"}, [2]string{"b", "number"})
		new := params([2]string{"b", "number"})
		if v := DetectReordering(old, new); v.HasReordering {
			t.Error("HasReordering = true, want false on count mismatch")
		}
	})

	t.Run("single parameter", func(t *testing.T) {
		old := params([2]string{"a", "number"})
		new := params([2]string{"b", "number"})
		if v := DetectReordering(old, new); v.HasReordering {
			t.Error("HasReordering = true, want false for one parameter")
		}
	})

	t.Run("type change", func(t *testing.T) {
		old := params([2]string{"a", "number"}, [2]string{"b", "string"})
		new := params([2]string{"b", "string"}, [2]string{"a", "number"})
		if v := DetectReordering(old, new); v.HasReordering {
			t.Error("HasReordering = true, want false when types moved too")
		}
	})
}

func TestDetectReordering_IdentityPermutationOnIdenticalTypes(t *testing.T) {
	// All parameters share one type, so the swap is invisible in the
	// normalized signature text. The detector must still see it.
	old := params([2]string{"x", "number"}, [2]string{"y", "number"}, [2]string{"z", "number"})
	new := params([2]string{"y", "number"}, [2]string{"x", "number"}, [2]string{"z", "number"})

	v := DetectReordering(old, new)
	if !v.HasReordering || v.Confidence != High {
		t.Errorf("got (%v, %v), want reordering at high confidence", v.HasReordering, v.Confidence)
	}
	if len(v.PositionAnalysis) != 3 {
		t.Errorf("len(PositionAnalysis) = %d, want 3", len(v.PositionAnalysis))
	}
}
