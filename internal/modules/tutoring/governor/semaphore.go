package governor

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
)

var ErrInvalidTrace = errors.New("governor: invalid trace")

const (
	ReasonDelegationHits = "delegation_hits"
	ReasonAIDependency   = "ai_dependency"
	ReasonLowJustified   = "low_justified_ratio"
	ReasonCleanStreak    = "clean_streak"
	ReasonFailSafe       = "fail_safe"
)

// Transition describes the semaphore evaluation for one trace.
type Transition struct {
	TraceID uuid.UUID            `json:"trace_id"`
	From    types.SemaphoreState `json:"from"`
	To      types.SemaphoreState `json:"to"`
	Reasons []string             `json:"reasons,omitempty"`
}

func (t Transition) Changed() bool { return t.From != t.To }

type SemaphoreSnapshot struct {
	State             types.SemaphoreState `json:"state"`
	HitsInWindow      int                  `json:"hits_in_window"`
	MeanAIInvolvement *float64             `json:"mean_ai_involvement,omitempty"`
	JustifiedRatio    *float64             `json:"justified_ratio,omitempty"`
	Interactions      int                  `json:"interactions"`
	CleanStreak       int                  `json:"clean_streak"`
}

// Semaphore is the per-session GREEN/YELLOW/RED escalation state. It is
// mutated once per observed trace by the session's single writer.
type Semaphore struct {
	cfg     Config
	phrases *signals.PhraseSet

	state types.SemaphoreState

	hits    []bool
	hitPos  int
	hitFill int
	hitSum  int

	aiSum   float64
	aiCount int

	decisions    int
	justified    int
	interactions int
	cleanStreak  int
}

func NewSemaphore(cfg Config, phrases *signals.PhraseSet) *Semaphore {
	cfg = cfg.normalized()
	return &Semaphore{
		cfg:     cfg,
		phrases: phrases,
		state:   types.SemaphoreGreen,
		hits:    make([]bool, cfg.Window),
	}
}

func (s *Semaphore) State() types.SemaphoreState { return s.state }

// Reset returns the semaphore to its session-start state.
func (s *Semaphore) Reset() {
	*s = *NewSemaphore(s.cfg, s.phrases)
}

// Observe folds one trace into the rolling statistics and applies the
// transition rules. On invalid input the semaphore fails safe to RED.
func (s *Semaphore) Observe(t *types.InteractionTrace) (Transition, error) {
	from := s.state
	if t == nil {
		return s.failSafe(uuid.Nil, from, fmt.Errorf("%w: nil trace", ErrInvalidTrace))
	}
	if t.AIInvolvement != nil {
		v := *t.AIInvolvement
		if math.IsNaN(v) || v < 0 || v > 1 {
			return s.failSafe(t.ID, from, fmt.Errorf("%w: ai involvement %v out of range", ErrInvalidTrace, v))
		}
	}

	s.interactions++
	s.pushHit(s.phrases.IsDelegationSignal(t))
	if t.AIInvolvement != nil {
		s.aiSum += *t.AIInvolvement
		s.aiCount++
	}
	if t.Type.IsDecision() {
		s.decisions++
		if t.Justified() {
			s.justified++
		}
	}

	var reasons []string
	red := s.hitSum >= s.cfg.RedHitThreshold
	if red {
		reasons = append(reasons, ReasonDelegationHits)
	}
	if s.aiCount > 0 && s.aiSum/float64(s.aiCount) > s.cfg.DependencyRatio {
		reasons = append(reasons, ReasonAIDependency)
	}
	if s.interactions >= s.cfg.MinInteractions && s.decisions > 0 &&
		float64(s.justified)/float64(s.decisions) < s.cfg.MinJustifiedRatio {
		reasons = append(reasons, ReasonLowJustified)
	}

	switch {
	case red:
		s.state = types.SemaphoreRed
		s.cleanStreak = 0
	case len(reasons) > 0:
		if s.state.Level() < types.SemaphoreYellow.Level() {
			s.state = types.SemaphoreYellow
		}
		s.cleanStreak = 0
	default:
		s.cleanStreak++
		if s.cleanStreak >= s.cfg.CleanStreak && s.state != types.SemaphoreGreen {
			s.state = types.SemaphoreFromLevel(s.state.Level() - 1)
			s.cleanStreak = 0
			reasons = append(reasons, ReasonCleanStreak)
		}
	}
	return Transition{TraceID: t.ID, From: from, To: s.state, Reasons: reasons}, nil
}

func (s *Semaphore) failSafe(traceID uuid.UUID, from types.SemaphoreState, err error) (Transition, error) {
	s.state = types.SemaphoreRed
	s.cleanStreak = 0
	return Transition{TraceID: traceID, From: from, To: s.state, Reasons: []string{ReasonFailSafe}}, err
}

func (s *Semaphore) pushHit(hit bool) {
	if s.hitFill == len(s.hits) && s.hits[s.hitPos] {
		s.hitSum--
	}
	s.hits[s.hitPos] = hit
	if hit {
		s.hitSum++
	}
	s.hitPos = (s.hitPos + 1) % len(s.hits)
	if s.hitFill < len(s.hits) {
		s.hitFill++
	}
}

func (s *Semaphore) Snapshot() SemaphoreSnapshot {
	snap := SemaphoreSnapshot{
		State:        s.state,
		HitsInWindow: s.hitSum,
		Interactions: s.interactions,
		CleanStreak:  s.cleanStreak,
	}
	if s.aiCount > 0 {
		m := s.aiSum / float64(s.aiCount)
		snap.MeanAIInvolvement = &m
	}
	if s.decisions > 0 {
		r := float64(s.justified) / float64(s.decisions)
		snap.JustifiedRatio = &r
	}
	return snap
}
