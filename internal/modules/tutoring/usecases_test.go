package tutoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/governor"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/ingest"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
)

var (
	base     = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	student  = uuid.MustParse("5d3f2b7a-1c9e-4e1b-8a0f-2f6e4c1d9b33")
	activity = uuid.MustParse("a2c4e6f8-0b1d-4f3a-9c5e-7d9f1b3a5c7e")
)

type memStore struct {
	mu     sync.Mutex
	traces map[uuid.UUID]types.TraceSequence
	risks  map[uuid.UUID][]types.Risk
}

func newMemStore() *memStore {
	return &memStore{traces: map[uuid.UUID]types.TraceSequence{}, risks: map[uuid.UUID][]types.Risk{}}
}

func (s *memStore) AppendTrace(_ dbctx.Context, t *types.InteractionTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[t.SessionID] = append(s.traces[t.SessionID], t)
	return nil
}

func (s *memStore) ListTracesBySession(_ dbctx.Context, id uuid.UUID) (types.TraceSequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(types.TraceSequence(nil), s.traces[id]...), nil
}

func (s *memStore) CreateRisks(_ dbctx.Context, risks []types.Risk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range risks {
		s.risks[r.SessionID] = append(s.risks[r.SessionID], r)
	}
	return nil
}

func (s *memStore) ListRisksBySession(_ dbctx.Context, id uuid.UUID) ([]types.Risk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Risk(nil), s.risks[id]...), nil
}

func codeEvent(session uuid.UUID, i int, src string) ingest.RawEvent {
	return ingest.RawEvent{
		SessionID:   session.String(),
		StudentID:   student.String(),
		ActivityID:  activity.String(),
		Timestamp:   base.Add(time.Duration(i) * time.Minute),
		Type:        string(types.InteractionCodeSubmission),
		ContentKind: string(types.ContentCode),
		Code:        &ingest.RawCode{Language: "python", Source: src, HasOutcome: true, Failed: true, ErrorSignature: "NameError", ErrorCount: 1},
		Context:     map[string]string{types.ContextJustification: "copying what the tutor said"},
	}
}

func textEvent(session uuid.UUID, i int, typ types.InteractionType, text string) ingest.RawEvent {
	return ingest.RawEvent{
		SessionID:   session.String(),
		StudentID:   student.String(),
		ActivityID:  activity.String(),
		Timestamp:   base.Add(time.Duration(i) * time.Minute),
		Type:        string(typ),
		ContentKind: string(types.ContentText),
		Text:        text,
	}
}

func TestMonitor_DelegatingSessionEndToEnd(t *testing.T) {
	store := newMemStore()
	cfg := DefaultConfig()
	m := NewMonitor(cfg, MonitorDeps{Store: store})
	a := NewAnalyzer(cfg, AnalyzerDeps{Monitor: m, Store: store})
	session := uuid.New()
	m.StartSession(session, governor.ActivityPolicy{DefaultMode: types.ModeExplicative, AllowedModes: []types.ModeName{types.ModeExplicative}})

	var last Decision
	for i := 0; i < 5; i++ {
		d, err := m.Observe(context.Background(), codeEvent(session, i, "# just give me the answer\nprint(x)"), types.ModeExplicative)
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		last = d
	}
	if last.Semaphore != types.SemaphoreRed {
		t.Fatalf("expected RED, got %s", last.Semaphore)
	}
	if last.Mode != types.ModeSocratic {
		t.Fatalf("RED must force SOCRATIC, got %s", last.Mode)
	}
	if last.State != types.StateStuck {
		t.Fatalf("repeated identical failures should read as stuck, got %s", last.State)
	}

	res, err := a.AnalyzeSession(context.Background(), session)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, r := range res.Risks {
		if r.Type == types.RiskCognitiveDelegation && r.Severity == types.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a HIGH cognitive delegation risk, got %+v", res.Risks)
	}
	if res.Report.Semaphore != types.SemaphoreRed {
		t.Fatalf("report must carry the final semaphore")
	}
	if stored, _ := store.ListRisksBySession(dbctx.Context{}, session); len(stored) != len(res.Risks) {
		t.Fatalf("expected %d persisted risks, got %d", len(res.Risks), len(stored))
	}
	if traces, _ := store.ListTracesBySession(dbctx.Context{}, session); len(traces) != 5 {
		t.Fatalf("expected 5 persisted traces, got %d", len(traces))
	}
}

func TestMonitor_ValidationErrorsSurface(t *testing.T) {
	m := NewMonitor(DefaultConfig(), MonitorDeps{})
	ev := textEvent(uuid.New(), 0, types.InteractionPrompt, "")
	if _, err := m.Observe(context.Background(), ev, ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	ev.SessionID = "not-a-uuid"
	ev.Text = "hi"
	if _, err := m.Observe(context.Background(), ev, ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for bad session id, got %v", err)
	}
}

func TestMonitor_DeletedSessionIsTombstoned(t *testing.T) {
	m := NewMonitor(DefaultConfig(), MonitorDeps{})
	a := NewAnalyzer(DefaultConfig(), AnalyzerDeps{Monitor: m})
	session := uuid.New()
	if _, err := m.Observe(context.Background(), textEvent(session, 0, types.InteractionPrompt, "hello"), ""); err != nil {
		t.Fatalf("observe: %v", err)
	}
	m.DeleteSession(session)
	if _, err := a.AnalyzeSession(context.Background(), session); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.Observe(context.Background(), textEvent(session, 1, types.InteractionPrompt, "again"), ""); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("traces for a deleted session must be refused, got %v", err)
	}
	m.StartSession(session, governor.ActivityPolicy{})
	if _, err := m.Observe(context.Background(), textEvent(session, 2, types.InteractionPrompt, "back"), ""); err != nil {
		t.Fatalf("restarted session must accept traces: %v", err)
	}
}

func TestMonitor_ResetSession(t *testing.T) {
	m := NewMonitor(DefaultConfig(), MonitorDeps{})
	session := uuid.New()
	for i := 0; i < 3; i++ {
		_, _ = m.Observe(context.Background(), textEvent(session, i, types.InteractionPrompt, "do it for me"), "")
	}
	if snap, _ := m.Snapshot(session); snap.Semaphore != types.SemaphoreRed {
		t.Fatalf("expected RED before reset, got %s", snap.Semaphore)
	}
	if err := m.ResetSession(session); err != nil {
		t.Fatalf("reset: %v", err)
	}
	snap, err := m.Snapshot(session)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Semaphore != types.SemaphoreGreen || len(snap.Traces) != 0 || len(snap.Classified) != 0 {
		t.Fatalf("expected a clean session, got %+v", snap)
	}
	if err := m.ResetSession(uuid.New()); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMonitor_GuidedHints(t *testing.T) {
	m := NewMonitor(DefaultConfig(), MonitorDeps{})
	session := uuid.New()
	m.StartSession(session, governor.ActivityPolicy{AllowedModes: []types.ModeName{types.ModeGuided}})
	d, err := m.Observe(context.Background(), textEvent(session, 0, types.InteractionPrompt, "I don't get recursion"), types.ModeGuided)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if d.Mode != types.ModeGuided || d.Directive.HintLevel != governor.HintConceptual {
		t.Fatalf("expected GUIDED at conceptual, got %+v", d)
	}
	key := governor.HintKey{ExerciseID: activity, Attempt: 1}
	if _, err := m.DeliverHint(session, key); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if lvl, err := m.AdvanceHint(session, key, true); err != nil || lvl != governor.HintStrategy {
		t.Fatalf("expected strategy, got %s (%v)", lvl, err)
	}
	d, _ = m.Observe(context.Background(), textEvent(session, 1, types.InteractionPrompt, "still lost"), types.ModeGuided)
	if d.Directive.HintLevel != governor.HintStrategy {
		t.Fatalf("directive must follow the ladder, got %+v", d.Directive)
	}
}

func TestAnalyzer_ReplayMatchesLiveSession(t *testing.T) {
	store := newMemStore()
	cfg := DefaultConfig()
	m := NewMonitor(cfg, MonitorDeps{Store: store})
	a := NewAnalyzer(cfg, AnalyzerDeps{Monitor: m, Store: store})
	a.now = func() time.Time { return base }
	session := uuid.New()

	events := []ingest.RawEvent{
		textEvent(session, 0, types.InteractionPrompt, "how do I reverse a list?"),
		textEvent(session, 1, types.InteractionAIResponse, "Think about two pointers."),
		codeEvent(session, 2, "a = [1,2]\na.reverse()"),
		textEvent(session, 3, types.InteractionCritique, "two pointers is overkill here"),
		textEvent(session, 4, types.InteractionPrompt, "give me the code"),
	}
	for _, ev := range events {
		if _, err := m.Observe(context.Background(), ev, ""); err != nil {
			t.Fatalf("observe: %v", err)
		}
	}
	live, err := a.AnalyzeSession(context.Background(), session)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	stored, err := a.AnalyzeStored(context.Background(), session)
	if err != nil {
		t.Fatalf("stored: %v", err)
	}
	if diff := cmp.Diff(live.Report, stored.Report); diff != "" {
		t.Fatalf("replayed report differs (-live +stored):\n%s", diff)
	}
	if _, err := a.AnalyzeStored(context.Background(), uuid.New()); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown stored session, got %v", err)
	}
}

func TestAnalyzer_AnalyzeManyConcurrently(t *testing.T) {
	m := NewMonitor(DefaultConfig(), MonitorDeps{})
	a := NewAnalyzer(DefaultConfig(), AnalyzerDeps{Monitor: m})

	var ids []uuid.UUID
	var wg sync.WaitGroup
	for s := 0; s < 8; s++ {
		id := uuid.New()
		ids = append(ids, id)
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 6; i++ {
				_, _ = m.Observe(context.Background(), textEvent(id, i, types.InteractionPrompt, "write the code"), "")
			}
		}(id)
	}
	wg.Wait()
	missing := uuid.New()
	results, errs := a.AnalyzeMany(context.Background(), append(ids, missing))
	if len(results) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(results))
	}
	if !errors.Is(errs[missing], apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for the unknown id, got %v", errs[missing])
	}
	for id, r := range results {
		if r.Report.Semaphore != types.SemaphoreRed {
			t.Fatalf("session %s: expected RED, got %s", id, r.Report.Semaphore)
		}
	}
}

func TestAnalyzer_AnalyzeStoredRefusesDeletedSession(t *testing.T) {
	store := newMemStore()
	cfg := DefaultConfig()
	m := NewMonitor(cfg, MonitorDeps{Store: store})
	a := NewAnalyzer(cfg, AnalyzerDeps{Monitor: m, Store: store})
	session := uuid.New()
	for i := 0; i < 5; i++ {
		if _, err := m.Observe(context.Background(), codeEvent(session, i, "# just give me the answer\nprint(x)"), ""); err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
	}
	m.DeleteSession(session)
	if !m.Deleted(session) {
		t.Fatalf("expected the session to be tombstoned")
	}
	if _, err := a.AnalyzeStored(context.Background(), session); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for a deleted stored session, got %v", err)
	}
	if risks, _ := store.ListRisksBySession(dbctx.Context{}, session); len(risks) != 0 {
		t.Fatalf("no risks may be persisted for a deleted session, got %d", len(risks))
	}

	m.StartSession(session, governor.ActivityPolicy{})
	if m.Deleted(session) {
		t.Fatalf("restarting a session must lift the tombstone")
	}
	if _, err := a.AnalyzeStored(context.Background(), session); err != nil {
		t.Fatalf("restarted session must be analyzable: %v", err)
	}
}

func TestAnalyzer_StoredReplayKeepsLiveLabels(t *testing.T) {
	store := newMemStore()
	cfg := DefaultConfig()
	m := NewMonitor(cfg, MonitorDeps{Store: store})
	a := NewAnalyzer(cfg, AnalyzerDeps{Monitor: m, Store: store})
	session := uuid.New()

	events := []ingest.RawEvent{
		textEvent(session, 0, types.InteractionPrompt, "how do I parse this file?"),
		codeEvent(session, 1, "open(f).read()"),
		codeEvent(session, 2, "open(f).read()"),
		codeEvent(session, 3, "open(f).read()"),
		textEvent(session, 4, types.InteractionAIResponse, "Check the path first."),
		textEvent(session, 5, types.InteractionPrompt, "just give me the code"),
	}
	for _, ev := range events {
		if _, err := m.Observe(context.Background(), ev, ""); err != nil {
			t.Fatalf("observe: %v", err)
		}
	}
	live, err := m.Snapshot(session)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	seq, err := store.ListTracesBySession(dbctx.Context{}, session)
	if err != nil {
		t.Fatalf("list traces: %v", err)
	}
	replayed := a.Replay(context.Background(), session, seq)

	labels := func(cs []types.Classified) []types.CognitiveState {
		out := make([]types.CognitiveState, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.State)
		}
		return out
	}
	if diff := cmp.Diff(labels(live.Classified), labels(replayed.Classified)); diff != "" {
		t.Fatalf("replayed labels differ (-live +stored):\n%s", diff)
	}
	if replayed.Semaphore != live.Semaphore || replayed.FinalState != live.FinalState || replayed.StudentID != student {
		t.Fatalf("replayed end state differs: live %s/%s stored %s/%s", live.Semaphore, live.FinalState, replayed.Semaphore, replayed.FinalState)
	}

	res, err := a.AnalyzeStored(context.Background(), session)
	if err != nil {
		t.Fatalf("analyze stored: %v", err)
	}
	persisted, _ := store.ListRisksBySession(dbctx.Context{}, session)
	if len(res.Risks) == 0 || len(persisted) != len(res.Risks) {
		t.Fatalf("expected every produced risk persisted, got %d produced %d persisted", len(res.Risks), len(persisted))
	}
}

func TestMonitor_DeleteDuringObserveDoesNotReopenSession(t *testing.T) {
	store := newMemStore()
	m := NewMonitor(DefaultConfig(), MonitorDeps{Store: store})
	session := uuid.New()
	if _, err := m.Observe(context.Background(), textEvent(session, 0, types.InteractionPrompt, "hello"), ""); err != nil {
		t.Fatalf("observe: %v", err)
	}

	// an Observe that resolved the session just before the delete landed
	s, err := m.sessionFor(session)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	m.DeleteSession(session)

	s.mu.Lock()
	deleted := s.deleted
	s.mu.Unlock()
	if !deleted {
		t.Fatalf("held session must be marked deleted")
	}
	if _, err := m.ingestor.AcceptExisting(textEvent(session, 1, types.InteractionPrompt, "late")); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from ingest, got %v", err)
	}
	if _, ok := m.ingestor.Session(session); ok {
		t.Fatalf("deleted session log must not be recreated")
	}
	if _, err := m.Observe(context.Background(), textEvent(session, 2, types.InteractionPrompt, "later"), ""); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := m.ResetSession(session); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("reset of a deleted session must fail, got %v", err)
	}
	if traces, _ := store.ListTracesBySession(dbctx.Context{}, session); len(traces) != 1 {
		t.Fatalf("only the trace observed before the delete may be persisted, got %d", len(traces))
	}
}
