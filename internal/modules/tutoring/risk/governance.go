package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// governanceDetector looks at session shape: how long it ran and whether
// learner input arrives with machine-like regularity.
type governanceDetector struct {
	cfg Config
}

func (d *governanceDetector) Name() string { return "governance" }

func (d *governanceDetector) Detect(seq types.TraceSequence) ([]types.Risk, error) {
	if len(seq) == 0 {
		return nil, nil
	}
	for i, t := range seq {
		if t == nil {
			return nil, fmt.Errorf("nil trace at %d", i)
		}
	}
	var out []types.Risk

	first, last := seq[0], seq[len(seq)-1]
	if dur := last.Timestamp.Sub(first.Timestamp); dur > d.cfg.MaxSessionDuration {
		out = append(out, newRisk(seq, types.RiskSessionOverlong, types.SeverityMedium, types.DimensionGovernance,
			[]uuid.UUID{first.ID, last.ID},
			[]string{fmt.Sprintf("session spanned %s (limit %s)", dur.Round(time.Minute), d.cfg.MaxSessionDuration)},
			"The session ran well past a sustainable length.",
			"Suggest a break and split the remaining work into a new session.",
		))
	}

	var learner []*types.InteractionTrace
	for _, t := range seq {
		if t.Type.LearnerAuthored() {
			learner = append(learner, t)
		}
	}
	intervals := make([]float64, 0, len(learner))
	for i := 1; i < len(learner); i++ {
		intervals = append(intervals, learner[i].Timestamp.Sub(learner[i-1].Timestamp).Seconds())
	}
	if len(intervals) >= d.cfg.CadenceMinSamples {
		mean, sd := meanStdDev(intervals)
		if mean < d.cfg.CadenceMaxMean.Seconds() && sd < d.cfg.CadenceMaxStdDev.Seconds() {
			ids := make([]uuid.UUID, 0, len(learner))
			for _, t := range learner {
				ids = append(ids, t.ID)
			}
			out = append(out, newRisk(seq, types.RiskScriptedCadence, types.SeverityHigh, types.DimensionGovernance,
				ids,
				[]string{fmt.Sprintf("%d learner intervals, mean %.2fs, stddev %.2fs", len(intervals), mean, sd)},
				"Learner input arrived at a regular, machine-like rate.",
				"Verify the session is being driven by the learner and not an automated client.",
			))
		}
	}
	return out, nil
}

func meanStdDev(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
