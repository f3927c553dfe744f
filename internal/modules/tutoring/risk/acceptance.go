package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// acceptanceDetector flags assistant responses that were never followed by
// a learner critique.
type acceptanceDetector struct {
	cfg Config
}

func (d *acceptanceDetector) Name() string { return "acceptance" }

// UncriticalResponses returns the assistant responses with no critique
// strictly after them, and how many responses were examined. Critique
// times are sorted once and each response costs one binary search.
func UncriticalResponses(seq types.TraceSequence) (uncritical []uuid.UUID, responses int) {
	critiques := make([]time.Time, 0, len(seq))
	for _, t := range seq {
		if t != nil && t.Type == types.InteractionCritique {
			critiques = append(critiques, t.Timestamp)
		}
	}
	sort.Slice(critiques, func(i, j int) bool { return critiques[i].Before(critiques[j]) })

	for _, t := range seq {
		if t == nil || t.Type != types.InteractionAIResponse {
			continue
		}
		responses++
		if firstAfter(critiques, t.Timestamp) == len(critiques) {
			uncritical = append(uncritical, t.ID)
		}
	}
	return uncritical, responses
}

// firstAfter returns the index of the first element strictly after at, or
// len(sorted) when none is.
func firstAfter(sorted []time.Time, at time.Time) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i].After(at) })
}

func (d *acceptanceDetector) Detect(seq types.TraceSequence) ([]types.Risk, error) {
	ids, responses := UncriticalResponses(seq)
	if responses == 0 || len(ids) < d.cfg.UncriticalThreshold {
		return nil, nil
	}
	ratio := float64(len(ids)) / float64(responses)
	sev := types.SeverityMedium
	if ratio > d.cfg.UncriticalHighRatio {
		sev = types.SeverityHigh
	}
	return []types.Risk{newRisk(seq, types.RiskUncriticalAcceptance, sev, types.DimensionEpistemic,
		ids,
		[]string{fmt.Sprintf("%d of %d assistant responses were never critiqued", len(ids), responses)},
		"Assistant output was accepted without the learner questioning or verifying it.",
		"Require a short critique or test of each assistant suggestion before it is used.",
	)}, nil
}
