package tutoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/classifier"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/governor"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/pathrecon"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/report"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/risk"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
	"github.com/yungbote/neurobridge-governor/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-governor/internal/pkg/errors"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

type AnalyzerDeps struct {
	Log     *logger.Logger
	Engine  *risk.Engine
	Monitor *Monitor
	// Store is optional; when set produced risks are persisted and stored
	// sessions can be analyzed.
	Store Store
}

// Analyzer runs the batch path over session snapshots.
type Analyzer struct {
	cfg        Config
	engine     *risk.Engine
	paths      *pathrecon.Reconstructor
	classifier classifier.Classifier
	phrases    *signals.PhraseSet
	monitor    *Monitor
	store      Store
	log        *logger.Logger
	now        func() time.Time
}

func NewAnalyzer(cfg Config, deps AnalyzerDeps) *Analyzer {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	engine := deps.Engine
	if engine == nil {
		engine = risk.NewEngine(cfg.Risk, risk.Deps{Log: log})
	}
	phrases := signals.NewPhraseSet(cfg.Risk.DelegationPhrases)
	return &Analyzer{
		cfg:        cfg,
		engine:     engine,
		paths:      pathrecon.New(cfg.Path, phrases),
		classifier: classifier.New(cfg.Classifier),
		phrases:    phrases,
		monitor:    deps.Monitor,
		store:      deps.Store,
		log:        log.With("component", "Analyzer"),
		now:        time.Now,
	}
}

// Result is one batch run.
type Result struct {
	SessionID uuid.UUID      `json:"session_id"`
	Risks     []types.Risk   `json:"risks"`
	Path      pathrecon.Path `json:"path"`
	Report    report.Report  `json:"report"`
}

// AnalyzeSnapshot runs the detectors and the path reconstruction over an
// immutable snapshot and assembles the report. Risks are persisted when a
// store is configured.
func (a *Analyzer) AnalyzeSnapshot(ctx context.Context, snap SessionSnapshot) (Result, error) {
	var risks []types.Risk
	if a.cfg.Enrich {
		risks = a.engine.AnalyzeEnriched(ctx, snap.Traces)
	} else {
		risks = a.engine.Analyze(ctx, snap.Traces)
	}
	path := a.paths.Reconstruct(snap.Classified)

	if a.store != nil && len(risks) > 0 {
		if err := a.store.CreateRisks(dbctx.Context{Ctx: ctx}, risks); err != nil {
			return Result{}, fmt.Errorf("persist risks for session %s: %w", snap.SessionID, err)
		}
	}

	rep := report.Assemble(a.cfg.Report, report.Input{
		SessionID:  snap.SessionID,
		StudentID:  snap.StudentID,
		Risks:      risks,
		Path:       path,
		Semaphore:  snap.Semaphore,
		FinalState: snap.FinalState,
		At:         a.now().UTC(),
	})
	a.log.Info("session analyzed",
		"session_id", snap.SessionID.String(),
		"traces", len(snap.Traces),
		"risks", len(risks),
		"level", string(rep.Level),
	)
	return Result{SessionID: snap.SessionID, Risks: risks, Path: path, Report: rep}, nil
}

// AnalyzeSession analyzes a live session held by the monitor.
func (a *Analyzer) AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (Result, error) {
	if a.monitor == nil {
		return Result{}, fmt.Errorf("no monitor configured: %w", apperr.ErrSessionNotFound)
	}
	snap, err := a.monitor.Snapshot(sessionID)
	if err != nil {
		return Result{}, err
	}
	return a.AnalyzeSnapshot(ctx, snap)
}

// AnalyzeStored loads a persisted session and replays it before analysis.
// Sessions the monitor has tombstoned are refused before anything is read.
func (a *Analyzer) AnalyzeStored(ctx context.Context, sessionID uuid.UUID) (Result, error) {
	if a.store == nil {
		return Result{}, fmt.Errorf("no store configured: %w", apperr.ErrSessionNotFound)
	}
	if a.monitor != nil && a.monitor.Deleted(sessionID) {
		return Result{}, fmt.Errorf("session %s was deleted: %w", sessionID, apperr.ErrSessionNotFound)
	}
	seq, err := a.store.ListTracesBySession(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if len(seq) == 0 {
		return Result{}, fmt.Errorf("session %s: %w", sessionID, apperr.ErrSessionNotFound)
	}
	return a.AnalyzeSnapshot(ctx, a.Replay(ctx, sessionID, seq))
}

// Replay rebuilds labels and the final semaphore for an ordered sequence
// with fresh per-session state, as the interactive path would have.
func (a *Analyzer) Replay(ctx context.Context, sessionID uuid.UUID, seq types.TraceSequence) SessionSnapshot {
	gov := governor.New(sessionID, a.cfg.Governor, a.phrases, governor.Deps{Log: a.log})
	k := a.classifier.Lookback()
	snap := SessionSnapshot{
		SessionID:  sessionID,
		Traces:     append(types.TraceSequence(nil), seq...),
		Classified: make([]types.Classified, 0, len(seq)),
	}
	for i, t := range seq {
		if t == nil {
			continue
		}
		if snap.StudentID == uuid.Nil {
			snap.StudentID = t.StudentID
		}
		lo := i - k
		if lo < 0 {
			lo = 0
		}
		state := a.classifier.ClassifySafe(t, seq[lo:i])
		snap.Classified = append(snap.Classified, types.Classified{Trace: t, State: state})
		_, _ = gov.Observe(ctx, t)
	}
	snap.Semaphore = gov.Semaphore()
	if n := len(snap.Classified); n > 0 {
		snap.FinalState = snap.Classified[n-1].State
	}
	return snap
}

// AnalyzeMany analyzes live sessions concurrently. A failing session does
// not stop the others; its error is reported in the returned map.
func (a *Analyzer) AnalyzeMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Result, map[uuid.UUID]error) {
	var (
		mu      sync.Mutex
		results = make(map[uuid.UUID]Result, len(ids))
		errs    = map[uuid.UUID]error{}
	)
	g, gctx := errgroup.WithContext(ctx)
	limit := a.cfg.AnalyzeConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			res, err := a.AnalyzeSession(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[id] = err
				return nil
			}
			results[id] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
