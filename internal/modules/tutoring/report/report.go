package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/pathrecon"
)

type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

const MaxScore = 10.0

type Config struct {
	Weights     map[types.Severity]float64
	YellowBump  float64
	RedBump     float64
	SupportBump float64

	ModerateAt float64
	HighAt     float64
	CriticalAt float64
}

func DefaultConfig() Config {
	return Config{
		Weights: map[types.Severity]float64{
			types.SeverityLow:      1,
			types.SeverityMedium:   2.5,
			types.SeverityHigh:     5,
			types.SeverityCritical: 8,
		},
		YellowBump:  1.5,
		RedBump:     3,
		SupportBump: 1,
		ModerateAt:  3,
		HighAt:      6,
		CriticalAt:  8.5,
	}
}

type Input struct {
	SessionID  uuid.UUID
	StudentID  uuid.UUID
	Risks      []types.Risk
	Path       pathrecon.Path
	Semaphore  types.SemaphoreState
	FinalState types.CognitiveState
	At         time.Time
}

type DimensionScore struct {
	Dimension types.Dimension `json:"dimension"`
	Score     float64         `json:"score"`
	Risks     int             `json:"risks"`
}

type Report struct {
	SessionID   uuid.UUID              `json:"session_id"`
	StudentID   uuid.UUID              `json:"student_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Semaphore   types.SemaphoreState   `json:"semaphore"`
	FinalState  types.CognitiveState   `json:"final_state,omitempty"`
	Scores      []DimensionScore       `json:"scores"`
	MaxScore    float64                `json:"max_score"`
	Level       Level                  `json:"level"`
	BySeverity  map[types.Severity]int `json:"by_severity"`
	ByType      map[types.RiskType]int `json:"by_type"`
	Unresolved  int                    `json:"unresolved"`
	Trend       types.Trend            `json:"trend"`
	Phases      []types.CognitivePhase `json:"phases"`
	Transitions int                    `json:"transitions"`
	Risks       []types.Risk           `json:"risks"`
}

// Assemble merges the batch results and the interactive end state into a
// report. It is pure; the same input always yields the same report.
func Assemble(cfg Config, in Input) Report {
	if cfg.Weights == nil {
		cfg = DefaultConfig()
	}
	raw := make(map[types.Dimension]float64, len(types.Dimensions))
	counts := make(map[types.Dimension]int, len(types.Dimensions))
	rep := Report{
		SessionID:   in.SessionID,
		StudentID:   in.StudentID,
		GeneratedAt: in.At,
		Semaphore:   types.SemaphoreFromLevel(in.Semaphore.Level()),
		FinalState:  in.FinalState,
		BySeverity:  map[types.Severity]int{},
		ByType:      map[types.RiskType]int{},
		Trend:       in.Path.Trend,
		Phases:      in.Path.Phases,
		Transitions: len(in.Path.Transitions),
		Risks:       in.Risks,
	}
	if rep.Trend == "" {
		rep.Trend = types.TrendStable
	}
	for _, r := range in.Risks {
		raw[r.Dimension] += cfg.Weights[r.Severity]
		counts[r.Dimension]++
		rep.BySeverity[r.Severity]++
		rep.ByType[r.Type]++
		if !r.Resolved {
			rep.Unresolved++
		}
	}

	// an unknown semaphore scores as RED
	switch rep.Semaphore {
	case types.SemaphoreYellow:
		raw[types.DimensionGovernance] += cfg.YellowBump
	case types.SemaphoreRed:
		raw[types.DimensionGovernance] += cfg.RedBump
	}
	if in.FinalState.NeedsSupport() {
		raw[types.DimensionCognitive] += cfg.SupportBump
	}

	for _, d := range types.Dimensions {
		s := math.Min(raw[d], MaxScore)
		rep.Scores = append(rep.Scores, DimensionScore{Dimension: d, Score: s, Risks: counts[d]})
		if s > rep.MaxScore {
			rep.MaxScore = s
		}
	}
	rep.Level = cfg.level(rep.MaxScore)
	return rep
}

func (c Config) level(score float64) Level {
	switch {
	case score < c.ModerateAt:
		return LevelLow
	case score < c.HighAt:
		return LevelModerate
	case score < c.CriticalAt:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Score returns the score for one dimension, or 0 when absent.
func (r Report) Score(d types.Dimension) float64 {
	for _, s := range r.Scores {
		if s.Dimension == d {
			return s.Score
		}
	}
	return 0
}
