package risk

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// speedDetector pairs every code submission with the trace immediately
// before it and flags long submissions produced implausibly fast.
type speedDetector struct {
	cfg Config
}

func (d *speedDetector) Name() string { return "speed" }

func (d *speedDetector) Detect(seq types.TraceSequence) ([]types.Risk, error) {
	var out []types.Risk
	for i := 1; i < len(seq); i++ {
		cur, prev := seq[i], seq[i-1]
		if cur == nil || prev == nil {
			return nil, fmt.Errorf("nil trace at %d", i)
		}
		if cur.Type != types.InteractionCodeSubmission {
			continue
		}
		if cur.Content.Code == nil {
			return nil, fmt.Errorf("code submission %s has no code content", cur.ID)
		}
		length := utf8.RuneCountInString(cur.Content.Code.Source)
		elapsed := cur.Timestamp.Sub(prev.Timestamp)
		if length <= d.cfg.SpeedMinLength || elapsed >= d.cfg.SpeedMaxElapsed {
			continue
		}
		out = append(out, newRisk(seq, types.RiskSuspiciousSpeed, types.SeverityHigh, types.DimensionEthical,
			[]uuid.UUID{prev.ID, cur.ID},
			[]string{
				fmt.Sprintf("%d characters submitted %s after the previous interaction", length, elapsed),
				fmt.Sprintf("preceding interaction type: %s", prev.Type),
			},
			"The submission appeared faster than it could plausibly have been written.",
			"Ask the learner to walk through the submitted code line by line.",
		))
	}
	return out, nil
}
