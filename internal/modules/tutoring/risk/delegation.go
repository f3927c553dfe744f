package risk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
)

// delegationDetector flags sessions where the learner keeps handing the
// work to the assistant, either verbatim or by self-reported involvement.
type delegationDetector struct {
	cfg     Config
	phrases *signals.PhraseSet
}

func (d *delegationDetector) Name() string { return "delegation" }

func (d *delegationDetector) Detect(seq types.TraceSequence) ([]types.Risk, error) {
	var (
		hitIDs   []uuid.UUID
		seen     = map[string]bool{}
		matched  []string
		declared []uuid.UUID
		sumAI    float64
	)
	for _, t := range seq {
		if t == nil {
			return nil, fmt.Errorf("nil trace in sequence")
		}
		if t.AIInvolvement != nil {
			sumAI += *t.AIInvolvement
			declared = append(declared, t.ID)
		}
		m := d.phrases.Matches(signals.DelegationText(t))
		if len(m) == 0 {
			continue
		}
		hitIDs = append(hitIDs, t.ID)
		for _, p := range m {
			if !seen[p] {
				seen[p] = true
				matched = append(matched, p)
			}
		}
	}

	var out []types.Risk
	if len(hitIDs) >= d.cfg.DelegationHitThreshold {
		out = append(out, newRisk(seq, types.RiskCognitiveDelegation, types.SeverityHigh, types.DimensionCognitive,
			hitIDs,
			[]string{
				fmt.Sprintf("%d interactions contained delegation phrases", len(hitIDs)),
				"phrases: " + strings.Join(matched, ", "),
			},
			"The learner repeatedly asked the assistant to produce the work instead of reasoning through it.",
			"Switch the tutor to question-first guidance for the remaining activity.",
			"Ask the learner to explain the approach before any code is accepted.",
		))
	}
	if len(declared) > 0 {
		mean := sumAI / float64(len(declared))
		if mean > d.cfg.DependencyRatio {
			sev := types.SeverityMedium
			if mean >= d.cfg.DependencyHighRatio {
				sev = types.SeverityHigh
			}
			out = append(out, newRisk(seq, types.RiskAIDependency, sev, types.DimensionCognitive,
				declared,
				[]string{fmt.Sprintf("mean declared AI involvement %.2f over %d interactions", mean, len(declared))},
				"Most of the session's output was attributed to the assistant.",
				"Set an explicit goal for unassisted work in the next session.",
				"Review which steps the learner can complete alone.",
			))
		}
	}
	return out, nil
}
