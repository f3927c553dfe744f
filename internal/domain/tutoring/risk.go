package tutoring

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

type Dimension string

const (
	DimensionCognitive  Dimension = "cognitive"
	DimensionEthical    Dimension = "ethical"
	DimensionEpistemic  Dimension = "epistemic"
	DimensionTechnical  Dimension = "technical"
	DimensionGovernance Dimension = "governance"
)

var Dimensions = []Dimension{
	DimensionCognitive,
	DimensionEthical,
	DimensionEpistemic,
	DimensionTechnical,
	DimensionGovernance,
}

type RiskType string

const (
	RiskCognitiveDelegation  RiskType = "cognitive_delegation"
	RiskAIDependency         RiskType = "ai_dependency"
	RiskSuspiciousSpeed      RiskType = "suspicious_submission_speed"
	RiskUncriticalAcceptance RiskType = "uncritical_acceptance"
	RiskCodeDuplication      RiskType = "code_duplication"
	RiskUnsafeCode           RiskType = "unsafe_code"
	RiskMissingErrorHandling RiskType = "missing_error_handling"
	RiskSessionOverlong      RiskType = "session_overlong"
	RiskScriptedCadence      RiskType = "scripted_cadence"
)

// Risk is a finding of a batch run. Only the resolution fields may change
// after creation, and only through an external resolution workflow.
type Risk struct {
	ID              uuid.UUID   `json:"id"`
	SessionID       uuid.UUID   `json:"session_id"`
	Type            RiskType    `json:"type"`
	Severity        Severity    `json:"severity"`
	Dimension       Dimension   `json:"dimension"`
	Evidence        []string    `json:"evidence"`
	TraceIDs        []uuid.UUID `json:"trace_ids"`
	RootCause       string      `json:"root_cause"`
	Recommendations []string    `json:"recommendations"`
	Resolved        bool        `json:"resolved"`
	ResolutionNotes string      `json:"resolution_notes,omitempty"`
}

var riskNamespace = uuid.MustParse("6f1c1c55-8f6a-4c4e-9d0b-2a9b3f0e7c11")

// RiskID derives a stable identifier so repeated runs over the same input
// produce identical risk sets.
func RiskID(sessionID uuid.UUID, typ RiskType, traceIDs []uuid.UUID) uuid.UUID {
	ids := make([]string, 0, len(traceIDs))
	for _, id := range traceIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return uuid.NewSHA1(riskNamespace, []byte(sessionID.String()+"|"+string(typ)+"|"+strings.Join(ids, ",")))
}
