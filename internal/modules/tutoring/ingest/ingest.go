package ingest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/observability"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// RawCode is the wire shape of a code submission.
type RawCode struct {
	Language       string `json:"language"`
	Source         string `json:"source" validate:"required"`
	Failed         bool   `json:"failed"`
	ErrorSignature string `json:"error_signature"`
	ErrorCount     int    `json:"error_count" validate:"gte=0"`
	HasOutcome     bool   `json:"has_outcome"`
}

// RawEvent is an interaction event as handed over by the session-management
// collaborator.
type RawEvent struct {
	ID            string            `json:"id" validate:"omitempty,uuid"`
	SessionID     string            `json:"session_id" validate:"required,uuid"`
	StudentID     string            `json:"student_id" validate:"required,uuid"`
	ActivityID    string            `json:"activity_id" validate:"required,uuid"`
	Timestamp     time.Time         `json:"timestamp"`
	Type          string            `json:"type" validate:"required,oneof=prompt ai_response code_submission critique strategy_change reflection"`
	ContentKind   string            `json:"content_kind" validate:"required,oneof=text code"`
	Text          string            `json:"text"`
	Code          *RawCode          `json:"code" validate:"omitempty"`
	AIInvolvement *float64          `json:"ai_involvement" validate:"omitempty,gte=0,lte=1"`
	Context       map[string]string `json:"context"`
	ParentID      string            `json:"parent_id" validate:"omitempty,uuid"`
}

type Ingestor struct {
	cfg      Config
	log      *logger.Logger
	metrics  *observability.Metrics
	validate *validator.Validate

	mu   sync.RWMutex
	logs map[uuid.UUID]*Log
}

func New(cfg Config, log *logger.Logger, metrics *observability.Metrics) *Ingestor {
	if log == nil {
		log = logger.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Ingestor{
		cfg:      cfg.normalized(),
		log:      log.With("component", "TraceIngest"),
		metrics:  metrics,
		validate: v,
		logs:     map[uuid.UUID]*Log{},
	}
}

// StartSession creates (or resets) the log for a session.
func (i *Ingestor) StartSession(sessionID uuid.UUID) *Log {
	l := NewLog(sessionID)
	i.mu.Lock()
	i.logs[sessionID] = l
	i.mu.Unlock()
	return l
}

// Session returns the log for a session, if one exists.
func (i *Ingestor) Session(sessionID uuid.UUID) (*Log, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	l, ok := i.logs[sessionID]
	return l, ok
}

func (i *Ingestor) DeleteSession(sessionID uuid.UUID) {
	i.mu.Lock()
	delete(i.logs, sessionID)
	i.mu.Unlock()
}

func (i *Ingestor) sessionLog(sessionID uuid.UUID) *Log {
	if l, ok := i.Session(sessionID); ok {
		return l
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if l, ok := i.logs[sessionID]; ok {
		return l
	}
	l := NewLog(sessionID)
	i.logs[sessionID] = l
	return l
}

// Accept validates raw, orders it against the session's log and appends it,
// opening the log on first contact. Every failure is a *errors.ValidationError.
func (i *Ingestor) Accept(raw RawEvent) (*types.InteractionTrace, error) {
	return i.accept(raw, true)
}

// AcceptExisting is Accept for sessions opened with StartSession. An event
// for a session without a log fails with ErrSessionNotFound and opens nothing.
func (i *Ingestor) AcceptExisting(raw RawEvent) (*types.InteractionTrace, error) {
	return i.accept(raw, false)
}

func (i *Ingestor) accept(raw RawEvent, open bool) (*types.InteractionTrace, error) {
	trace, err := i.build(raw)
	if err != nil {
		i.reject("invalid", err)
		return nil, err
	}

	var l *Log
	if open {
		l = i.sessionLog(trace.SessionID)
	} else {
		var ok bool
		if l, ok = i.Session(trace.SessionID); !ok {
			err := fmt.Errorf("session %s has no open log: %w", trace.SessionID, apperr.ErrSessionNotFound)
			i.reject("unknown_session", err)
			return nil, err
		}
	}
	if trace.ParentID != nil && *trace.ParentID == trace.ID {
		err := apperr.NewValidationError(nil, apperr.FieldError{Field: "parent_id", Reason: "trace cannot reference itself"})
		i.reject("invalid", err)
		return nil, err
	}
	if l.has(trace.ID) {
		err := apperr.NewValidationError(nil, apperr.FieldError{Field: "id", Reason: "duplicate trace id in session"})
		i.reject("duplicate", err)
		return nil, err
	}
	if last, ok := l.lastTimestamp(); ok && trace.Timestamp.Before(last) {
		lag := last.Sub(trace.Timestamp)
		if lag > i.cfg.TimestampTolerance {
			err := apperr.NewValidationError(apperr.ErrOutOfOrder, apperr.FieldError{
				Field:  "timestamp",
				Reason: fmt.Sprintf("precedes last committed trace by %s (tolerance %s)", lag, i.cfg.TimestampTolerance),
			})
			i.reject("out_of_order", err)
			return nil, err
		}
		trace.Timestamp = last
	}

	l.append(trace)
	i.log.Debug("trace accepted", "session_id", trace.SessionID, "trace_id", trace.ID.String(), "type", string(trace.Type))
	return trace, nil
}

func (i *Ingestor) reject(reason string, err error) {
	i.metrics.IncIngestRejected(reason)
	i.log.Debug("trace rejected", "reason", reason, "error", err.Error())
}

func (i *Ingestor) build(raw RawEvent) (*types.InteractionTrace, error) {
	var fields []apperr.FieldError
	if err := i.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, apperr.NewValidationError(err)
		}
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Reason: describeTag(fe)})
		}
	}
	if raw.Timestamp.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "timestamp", Reason: "is required"})
	}

	typ := types.InteractionType(raw.Type)
	kind := types.ContentKind(raw.ContentKind)
	switch {
	case typ == types.InteractionCodeSubmission && kind != types.ContentCode:
		fields = append(fields, apperr.FieldError{Field: "content_kind", Reason: "code_submission requires code content"})
	case typ != types.InteractionCodeSubmission && kind == types.ContentCode && typ.Valid():
		fields = append(fields, apperr.FieldError{Field: "content_kind", Reason: "only code_submission carries code content"})
	}
	if kind == types.ContentCode && raw.Code == nil {
		fields = append(fields, apperr.FieldError{Field: "code", Reason: "is required for code content"})
	}
	if kind == types.ContentText && strings.TrimSpace(raw.Text) == "" {
		fields = append(fields, apperr.FieldError{Field: "text", Reason: "is required for text content"})
	}
	if n := len(raw.Text); n > i.cfg.MaxContentBytes {
		fields = append(fields, apperr.FieldError{Field: "text", Reason: fmt.Sprintf("exceeds %d bytes", i.cfg.MaxContentBytes)})
	}
	if raw.Code != nil && len(raw.Code.Source) > i.cfg.MaxContentBytes {
		fields = append(fields, apperr.FieldError{Field: "code.source", Reason: fmt.Sprintf("exceeds %d bytes", i.cfg.MaxContentBytes)})
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidationError(nil, fields...)
	}

	id := uuid.New()
	if raw.ID != "" {
		id = uuid.MustParse(raw.ID)
	}
	trace := &types.InteractionTrace{
		ID:              id,
		SessionID:       uuid.MustParse(raw.SessionID),
		StudentID:       uuid.MustParse(raw.StudentID),
		ActivityID:      uuid.MustParse(raw.ActivityID),
		Timestamp:       raw.Timestamp.UTC(),
		ClientTimestamp: raw.Timestamp.UTC(),
		Type:            typ,
		Context:         copyContext(raw.Context),
	}
	if raw.AIInvolvement != nil {
		v := *raw.AIInvolvement
		trace.AIInvolvement = &v
	}
	if raw.ParentID != "" {
		pid := uuid.MustParse(raw.ParentID)
		trace.ParentID = &pid
	}
	if kind == types.ContentCode {
		var outcome *types.SubmissionOutcome
		if raw.Code.HasOutcome || raw.Code.Failed || raw.Code.ErrorSignature != "" || raw.Code.ErrorCount > 0 {
			outcome = &types.SubmissionOutcome{
				Failed:         raw.Code.Failed,
				ErrorSignature: strings.TrimSpace(raw.Code.ErrorSignature),
				ErrorCount:     raw.Code.ErrorCount,
			}
		}
		trace.Content = types.CodeSubmission(strings.TrimSpace(raw.Code.Language), raw.Code.Source, outcome)
	} else {
		trace.Content = types.TextContent(raw.Text)
	}
	return trace, nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a uuid"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func copyContext(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
