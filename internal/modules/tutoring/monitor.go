package tutoring

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/classifier"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/governor"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/ingest"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
	"github.com/yungbote/neurobridge-governor/internal/observability"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// ContextAttempt names the trace context key carrying the exercise attempt
// number used to key GUIDED hint ladders.
const ContextAttempt = "attempt"

type MonitorDeps struct {
	Log      *logger.Logger
	Metrics  *observability.Metrics
	Notifier governor.Notifier
	// Store is optional; when set every accepted trace is persisted.
	Store Store
}

// Decision is what the response generator waits on for each trace.
type Decision struct {
	Trace      *types.InteractionTrace `json:"trace"`
	State      types.CognitiveState    `json:"state"`
	Semaphore  types.SemaphoreState    `json:"semaphore"`
	Transition governor.Transition     `json:"transition"`
	Mode       types.ModeName          `json:"mode"`
	Directive  governor.Directive      `json:"directive"`
}

// SessionSnapshot is an immutable copy of a session for batch analysis.
type SessionSnapshot struct {
	SessionID  uuid.UUID            `json:"session_id"`
	StudentID  uuid.UUID            `json:"student_id"`
	Traces     types.TraceSequence  `json:"traces"`
	Classified []types.Classified   `json:"classified"`
	Semaphore  types.SemaphoreState `json:"semaphore"`
	FinalState types.CognitiveState `json:"final_state,omitempty"`
}

type session struct {
	mu         sync.Mutex
	id         uuid.UUID
	studentID  uuid.UUID
	gov        *governor.Governor
	policy     governor.ActivityPolicy
	classified []types.Classified
	// deleted is set under mu once the session is dropped from the registry.
	deleted bool
}

// Monitor runs the interactive path: ingest, classify, govern. Work for one
// session is serialized; different sessions proceed in parallel.
type Monitor struct {
	cfg        Config
	ingestor   *ingest.Ingestor
	classifier classifier.Classifier
	phrases    *signals.PhraseSet

	log      *logger.Logger
	metrics  *observability.Metrics
	notifier governor.Notifier
	store    Store

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	deleted  map[uuid.UUID]time.Time
}

func NewMonitor(cfg Config, deps MonitorDeps) *Monitor {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Monitor{
		cfg:        cfg,
		ingestor:   ingest.New(cfg.Ingest, log, deps.Metrics),
		classifier: classifier.New(cfg.Classifier),
		phrases:    signals.NewPhraseSet(cfg.Risk.DelegationPhrases),
		log:        log.With("component", "Monitor"),
		metrics:    deps.Metrics,
		notifier:   deps.Notifier,
		store:      deps.Store,
		sessions:   map[uuid.UUID]*session{},
		deleted:    map[uuid.UUID]time.Time{},
	}
}

// StartSession creates a session, or resets an existing one, under policy.
// A previously deleted id may be started again.
func (m *Monitor) StartSession(sessionID uuid.UUID, policy governor.ActivityPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deleted, sessionID)
	m.sessions[sessionID] = m.newSession(sessionID, policy)
	m.ingestor.StartSession(sessionID)
}

func (m *Monitor) newSession(id uuid.UUID, policy governor.ActivityPolicy) *session {
	return &session{
		id:     id,
		policy: policy,
		gov: governor.New(id, m.cfg.Governor, m.phrases, governor.Deps{
			Log:      m.log,
			Metrics:  m.metrics,
			Notifier: m.notifier,
		}),
	}
}

// ResetSession clears traces, labels and governance state of a live session.
func (m *Monitor) ResetSession(sessionID uuid.UUID) error {
	s, err := m.lookup(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return fmt.Errorf("session %s was deleted: %w", sessionID, apperr.ErrSessionNotFound)
	}
	s.gov.Reset()
	s.classified = nil
	m.ingestor.StartSession(sessionID)
	return nil
}

// DeleteSession drops a session and tombstones its id so no batch run can
// start for it. An Observe already holding the session finishes first;
// later ones see the tombstone.
func (m *Monitor) DeleteSession(sessionID uuid.UUID) {
	m.mu.Lock()
	s := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.deleted[sessionID] = time.Now()
	m.ingestor.DeleteSession(sessionID)
	m.mu.Unlock()

	if s != nil {
		s.mu.Lock()
		s.deleted = true
		s.mu.Unlock()
	}
}

// Deleted reports whether sessionID is tombstoned.
func (m *Monitor) Deleted(sessionID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, gone := m.deleted[sessionID]
	return gone
}

func (m *Monitor) lookup(sessionID uuid.UUID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperr.ErrSessionNotFound)
	}
	return s, nil
}

// sessionFor returns the live session, creating it under the default policy
// on first contact. Deleted sessions stay deleted until restarted.
func (m *Monitor) sessionFor(sessionID uuid.UUID) (*session, error) {
	if s, err := m.lookup(sessionID); err == nil {
		return s, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, gone := m.deleted[sessionID]; gone {
		return nil, fmt.Errorf("session %s was deleted: %w", sessionID, apperr.ErrSessionNotFound)
	}
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	s := m.newSession(sessionID, m.cfg.DefaultPolicy)
	m.sessions[sessionID] = s
	m.ingestor.StartSession(sessionID)
	return s, nil
}

// Observe ingests one raw event and returns the governance decision for it.
// Validation errors are returned as-is; classifier and semaphore problems
// fail safe instead of failing the call.
func (m *Monitor) Observe(ctx context.Context, raw ingest.RawEvent, requested types.ModeName) (Decision, error) {
	ctx, span := observability.Tracer().Start(ctx, "tutoring.Observe")
	defer span.End()
	start := time.Now()
	defer func() { m.metrics.ObserveInteractive(time.Since(start)) }()

	sessionID, err := uuid.Parse(raw.SessionID)
	if err != nil {
		// let ingest produce the field-level validation error
		_, verr := m.ingestor.AcceptExisting(raw)
		return Decision{}, verr
	}
	s, err := m.sessionFor(sessionID)
	if err != nil {
		return Decision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return Decision{}, fmt.Errorf("session %s was deleted: %w", sessionID, apperr.ErrSessionNotFound)
	}

	trace, err := m.ingestor.AcceptExisting(raw)
	if err != nil {
		return Decision{}, err
	}
	if s.studentID == uuid.Nil {
		s.studentID = trace.StudentID
	}
	span.SetAttributes(attribute.String("trace.type", string(trace.Type)))

	var history types.TraceSequence
	if l, ok := m.ingestor.Session(sessionID); ok {
		history = l.Tail(m.classifier.Lookback())
	}
	state := m.classifier.ClassifySafe(trace, history)
	s.classified = append(s.classified, types.Classified{Trace: trace, State: state})

	tr, _ := s.gov.Observe(ctx, trace)
	mode := s.gov.SelectMode(state, s.policy, requested)
	hint := governor.HintNone
	if mode.Name() == types.ModeGuided {
		hint = s.gov.Ladder(hintKey(trace)).Level()
	}

	if m.store != nil {
		if perr := m.store.AppendTrace(dbctx.Context{Ctx: ctx}, trace); perr != nil {
			m.log.Warn("persist trace failed", "session_id", sessionID.String(), "trace_id", trace.ID.String(), "error", perr.Error())
		}
	}

	return Decision{
		Trace:      trace,
		State:      state,
		Semaphore:  tr.To,
		Transition: tr,
		Mode:       mode.Name(),
		Directive:  mode.Directive(hint),
	}, nil
}

// DeliverHint records that the current GUIDED hint for an attempt was shown.
func (m *Monitor) DeliverHint(sessionID uuid.UUID, key governor.HintKey) (governor.HintLevel, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return governor.HintNone, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gov.Ladder(key).Deliver(), nil
}

// AdvanceHint moves the GUIDED ladder one level when the learner is still
// unable to proceed after the last delivered hint.
func (m *Monitor) AdvanceHint(sessionID uuid.UUID, key governor.HintKey, stillUnable bool) (governor.HintLevel, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return governor.HintNone, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gov.Ladder(key).Advance(stillUnable)
}

// Snapshot copies a session for batch analysis. Unknown and deleted sessions
// return ErrSessionNotFound.
func (m *Monitor) Snapshot(sessionID uuid.UUID) (SessionSnapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return SessionSnapshot{}, fmt.Errorf("session %s was deleted: %w", sessionID, apperr.ErrSessionNotFound)
	}
	snap := SessionSnapshot{
		SessionID:  sessionID,
		StudentID:  s.studentID,
		Classified: append([]types.Classified(nil), s.classified...),
		Semaphore:  s.gov.Semaphore(),
	}
	if l, ok := m.ingestor.Session(sessionID); ok {
		snap.Traces = l.Snapshot()
	}
	if n := len(s.classified); n > 0 {
		snap.FinalState = s.classified[n-1].State
	}
	return snap, nil
}

// Sessions lists the live session ids.
func (m *Monitor) Sessions() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

func hintKey(t *types.InteractionTrace) governor.HintKey {
	attempt := 1
	if t.Context != nil {
		if n, err := strconv.Atoi(t.Context[ContextAttempt]); err == nil && n > 0 {
			attempt = n
		}
	}
	return governor.HintKey{ExerciseID: t.ActivityID, Attempt: attempt}
}
