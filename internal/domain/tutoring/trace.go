package tutoring

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionPrompt         InteractionType = "prompt"
	InteractionAIResponse     InteractionType = "ai_response"
	InteractionCodeSubmission InteractionType = "code_submission"
	InteractionCritique       InteractionType = "critique"
	InteractionStrategyChange InteractionType = "strategy_change"
	InteractionReflection     InteractionType = "reflection"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionPrompt, InteractionAIResponse, InteractionCodeSubmission,
		InteractionCritique, InteractionStrategyChange, InteractionReflection:
		return true
	}
	return false
}

// LearnerAuthored reports whether the learner (not the assistant) produced the trace.
func (t InteractionType) LearnerAuthored() bool {
	return t != InteractionAIResponse
}

// IsDecision reports whether the trace records a learner decision that may
// carry a justification.
func (t InteractionType) IsDecision() bool {
	return t == InteractionCodeSubmission || t == InteractionStrategyChange
}

type ContentKind string

const (
	ContentText ContentKind = "text"
	ContentCode ContentKind = "code"
)

// SubmissionOutcome is the caller-provided result of running a code
// submission. The core never executes code itself.
type SubmissionOutcome struct {
	Failed         bool   `json:"failed"`
	ErrorSignature string `json:"error_signature,omitempty"`
	ErrorCount     int    `json:"error_count"`
}

type CodeContent struct {
	Language string             `json:"language,omitempty"`
	Source   string             `json:"source"`
	Outcome  *SubmissionOutcome `json:"outcome,omitempty"`
}

// Content is a tagged union; Kind selects which of Text or Code is meaningful.
type Content struct {
	Kind ContentKind  `json:"kind"`
	Text string       `json:"text,omitempty"`
	Code *CodeContent `json:"code,omitempty"`
}

func TextContent(s string) Content { return Content{Kind: ContentText, Text: s} }

func CodeSubmission(language, source string, outcome *SubmissionOutcome) Content {
	return Content{Kind: ContentCode, Code: &CodeContent{Language: language, Source: source, Outcome: outcome}}
}

// Body returns the raw authored content regardless of kind.
func (c Content) Body() string {
	switch c.Kind {
	case ContentCode:
		if c.Code == nil {
			return ""
		}
		return c.Code.Source
	default:
		return c.Text
	}
}

// InteractionTrace is one immutable event in a learning session.
type InteractionTrace struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	StudentID  uuid.UUID `json:"student_id"`
	ActivityID uuid.UUID `json:"activity_id"`

	// Timestamp is the committed, ordering-safe time. ClientTimestamp keeps
	// what the producer sent.
	Timestamp       time.Time `json:"timestamp"`
	ClientTimestamp time.Time `json:"client_timestamp"`

	Type          InteractionType   `json:"type"`
	Content       Content           `json:"content"`
	AIInvolvement *float64          `json:"ai_involvement,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
	ParentID      *uuid.UUID        `json:"parent_id,omitempty"`
}

const ContextJustification = "justification"

func (t *InteractionTrace) Outcome() *SubmissionOutcome {
	if t == nil || t.Type != InteractionCodeSubmission || t.Content.Kind != ContentCode || t.Content.Code == nil {
		return nil
	}
	return t.Content.Code.Outcome
}

func (t *InteractionTrace) Failed() bool {
	o := t.Outcome()
	return o != nil && o.Failed
}

func (t *InteractionTrace) Justified() bool {
	if t == nil || t.Context == nil {
		return false
	}
	return strings.TrimSpace(t.Context[ContextJustification]) != ""
}

// TraceSequence is an ordered, non-decreasing-by-timestamp session log.
type TraceSequence []*InteractionTrace

func (s TraceSequence) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for _, t := range s {
		out = append(out, t.ID)
	}
	return out
}

func (s TraceSequence) Ordered() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Before(s[i-1].Timestamp) {
			return false
		}
	}
	return true
}
