package tutoring

import (
	"time"

	"github.com/google/uuid"
)

type CognitiveState string

const (
	StateExploring    CognitiveState = "exploring"
	StateStuck        CognitiveState = "stuck"
	StateImplementing CognitiveState = "implementing"
	StateDebugging    CognitiveState = "debugging"
	StateValidating   CognitiveState = "validating"
	StateConfused     CognitiveState = "confused"
)

func (s CognitiveState) Valid() bool {
	switch s {
	case StateExploring, StateStuck, StateImplementing, StateDebugging, StateValidating, StateConfused:
		return true
	}
	return false
}

// NeedsSupport reports whether the learner is blocked and assistance should
// lean explicit.
func (s CognitiveState) NeedsSupport() bool {
	return s == StateStuck || s == StateConfused
}

type SemaphoreState string

const (
	SemaphoreGreen  SemaphoreState = "GREEN"
	SemaphoreYellow SemaphoreState = "YELLOW"
	SemaphoreRed    SemaphoreState = "RED"
)

func (s SemaphoreState) Level() int {
	switch s {
	case SemaphoreGreen:
		return 0
	case SemaphoreYellow:
		return 1
	default:
		// unknown is treated as the most restrictive level
		return 2
	}
}

func SemaphoreFromLevel(level int) SemaphoreState {
	switch {
	case level <= 0:
		return SemaphoreGreen
	case level == 1:
		return SemaphoreYellow
	default:
		return SemaphoreRed
	}
}

type ModeName string

const (
	ModeSocratic      ModeName = "SOCRATIC"
	ModeExplicative   ModeName = "EXPLICATIVE"
	ModeGuided        ModeName = "GUIDED"
	ModeMetacognitive ModeName = "METACOGNITIVE"
)

func (m ModeName) Valid() bool {
	switch m {
	case ModeSocratic, ModeExplicative, ModeGuided, ModeMetacognitive:
		return true
	}
	return false
}

// Classified pairs a trace with the label assigned on the interactive path.
type Classified struct {
	Trace *InteractionTrace `json:"trace"`
	State CognitiveState    `json:"state"`
}

type CognitivePhase struct {
	State             CognitiveState `json:"state"`
	Start             time.Time      `json:"start"`
	End               time.Time      `json:"end"`
	InteractionCount  int            `json:"interaction_count"`
	MeanAIInvolvement *float64       `json:"mean_ai_involvement,omitempty"`
	TraceIDs          []uuid.UUID    `json:"trace_ids"`
}

type PhaseTransition struct {
	From    CognitiveState `json:"from"`
	To      CognitiveState `json:"to"`
	At      time.Time      `json:"at"`
	TraceID uuid.UUID      `json:"trace_id"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// GovernanceEvent announces a semaphore change to downstream collaborators.
type GovernanceEvent struct {
	SessionID uuid.UUID      `json:"session_id"`
	TraceID   uuid.UUID      `json:"trace_id"`
	From      SemaphoreState `json:"from"`
	To        SemaphoreState `json:"to"`
	Reasons   []string       `json:"reasons,omitempty"`
	At        time.Time      `json:"at"`
}
