package policy

import (
	"time"

	"github.com/google/uuid"

	"apidelta/internal/change"
)

// Report is the serializable outcome of one classification run
type Report struct {
	ID          string                     `json:"id"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Policy      string                     `json:"policy"`
	OldRef      string                     `json:"oldRef,omitempty"`
	NewRef      string                     `json:"newRef,omitempty"`
	Verdict     change.ReleaseType         `json:"verdict"`
	Counts      map[change.ReleaseType]int `json:"counts"`
	Changes     []change.ClassifiedChange  `json:"changes"`
}

// NewReport classifies a batch of changes against the engine and wraps the
// result with run metadata
func NewReport(e *Engine, changes []*change.APIChange, oldRef, newRef string) *Report {
	classified, verdict := e.ClassifyAll(changes)

	counts := map[change.ReleaseType]int{
		change.ReleaseMajor: 0,
		change.ReleaseMinor: 0,
		change.ReleasePatch: 0,
		change.ReleaseNone:  0,
	}
	for _, c := range classified {
		counts[c.ReleaseType]++
	}

	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Policy:      e.Name(),
		OldRef:      oldRef,
		NewRef:      newRef,
		Verdict:     verdict,
		Counts:      counts,
		Changes:     classified,
	}
}

// Breaking reports whether the verdict requires a major release
func (r *Report) Breaking() bool {
	return r.Verdict == change.ReleaseMajor
}
