package pathrecon

import (
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
)

// Path is the reconstructed cognitive trajectory of one session.
type Path struct {
	Phases      []types.CognitivePhase  `json:"phases"`
	Transitions []types.PhaseTransition `json:"transitions"`
	Trend       types.Trend             `json:"trend"`

	FirstHalfDelegationRate  float64 `json:"first_half_delegation_rate"`
	SecondHalfDelegationRate float64 `json:"second_half_delegation_rate"`
}

type Reconstructor struct {
	cfg     Config
	phrases *signals.PhraseSet
}

func New(cfg Config, phrases *signals.PhraseSet) *Reconstructor {
	if phrases == nil {
		phrases = signals.NewPhraseSet(signals.DefaultDelegationPhrases)
	}
	return &Reconstructor{cfg: cfg.normalized(), phrases: phrases}
}

// Reconstruct collapses consecutive equal states into phases, records each
// state change and compares delegation frequency across the session halves.
// Entries without a trace are ignored.
func (r *Reconstructor) Reconstruct(classified []types.Classified) Path {
	items := make([]types.Classified, 0, len(classified))
	for _, c := range classified {
		if c.Trace != nil {
			items = append(items, c)
		}
	}

	p := Path{Trend: types.TrendStable}
	var cur *phaseAcc
	for i, c := range items {
		if cur != nil && cur.state == c.State {
			cur.add(c.Trace)
			continue
		}
		if cur != nil {
			p.Phases = append(p.Phases, cur.phase())
			p.Transitions = append(p.Transitions, types.PhaseTransition{
				From:    items[i-1].State,
				To:      c.State,
				At:      c.Trace.Timestamp,
				TraceID: c.Trace.ID,
			})
		}
		cur = &phaseAcc{state: c.State}
		cur.add(c.Trace)
	}
	if cur != nil {
		p.Phases = append(p.Phases, cur.phase())
	}

	p.FirstHalfDelegationRate, p.SecondHalfDelegationRate, p.Trend = r.trend(items)
	return p
}

func (r *Reconstructor) trend(items []types.Classified) (float64, float64, types.Trend) {
	if len(items) < 2 {
		return 0, 0, types.TrendStable
	}
	mid := len(items) / 2
	first := r.rate(items[:mid])
	second := r.rate(items[mid:])
	return first, second, Classify(first, second, r.cfg.TrendThreshold)
}

func (r *Reconstructor) rate(items []types.Classified) float64 {
	hits := 0
	for _, c := range items {
		if r.phrases.IsDelegationSignal(c.Trace) {
			hits++
		}
	}
	return float64(hits) / float64(len(items))
}

// trendEpsilon keeps the threshold boundary inclusive under float rounding.
const trendEpsilon = 1e-9

// Classify compares two delegation frequencies. A zero baseline stays
// stable when nothing changed and worsens on any increase.
func Classify(first, second, threshold float64) types.Trend {
	if first == 0 {
		if second > 0 {
			return types.TrendWorsening
		}
		return types.TrendStable
	}
	change := (second - first) / first
	switch {
	case change <= -threshold+trendEpsilon:
		return types.TrendImproving
	case change >= threshold-trendEpsilon:
		return types.TrendWorsening
	default:
		return types.TrendStable
	}
}

type phaseAcc struct {
	state    types.CognitiveState
	traces   []*types.InteractionTrace
	sumAI    float64
	declared int
}

func (a *phaseAcc) add(t *types.InteractionTrace) {
	a.traces = append(a.traces, t)
	if t.AIInvolvement != nil {
		a.sumAI += *t.AIInvolvement
		a.declared++
	}
}

func (a *phaseAcc) phase() types.CognitivePhase {
	ids := make([]uuid.UUID, 0, len(a.traces))
	for _, t := range a.traces {
		ids = append(ids, t.ID)
	}
	ph := types.CognitivePhase{
		State:            a.state,
		Start:            a.traces[0].Timestamp,
		End:              a.traces[len(a.traces)-1].Timestamp,
		InteractionCount: len(a.traces),
		TraceIDs:         ids,
	}
	if a.declared > 0 {
		m := a.sumAI / float64(a.declared)
		ph.MeanAIInvolvement = &m
	}
	return ph
}
