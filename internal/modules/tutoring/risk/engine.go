package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
	"github.com/yungbote/neurobridge-governor/internal/observability"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// Detector is one independent pipeline over a full ordered trace sequence.
type Detector interface {
	Name() string
	Detect(seq types.TraceSequence) ([]types.Risk, error)
}

type Deps struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	Enricher     Enricher
	Fingerprints Fingerprinter
}

// Engine runs the detectors in batch. Analyze is deterministic and has no
// side effects beyond logs and metrics.
type Engine struct {
	cfg       Config
	detectors []Detector
	enricher  Enricher
	log       *logger.Logger
	metrics   *observability.Metrics
}

func NewEngine(cfg Config, deps Deps) *Engine {
	cfg = cfg.normalized()
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	enricher := deps.Enricher
	if enricher == nil {
		enricher = NoopEnricher{}
	}
	fp := deps.Fingerprints
	if fp == nil {
		fp = Blake2bFingerprinter{}
	}
	phrases := signals.NewPhraseSet(cfg.DelegationPhrases)
	return &Engine{
		cfg: cfg,
		detectors: []Detector{
			&delegationDetector{cfg: cfg, phrases: phrases},
			&speedDetector{cfg: cfg},
			&acceptanceDetector{cfg: cfg},
			&qualityDetector{cfg: cfg, fingerprints: fp},
			&governanceDetector{cfg: cfg},
		},
		enricher: enricher,
		log:      log.With("component", "RiskEngine"),
		metrics:  deps.Metrics,
	}
}

// WithDetectors replaces the detector set; used to exercise failure isolation.
func (e *Engine) WithDetectors(ds ...Detector) *Engine {
	cp := *e
	cp.detectors = append([]Detector(nil), ds...)
	return &cp
}

func (e *Engine) Config() Config { return e.cfg }

// Analyze runs every detector over seq. A failing detector contributes no
// risks; it never aborts the others. Results keep detector order and are
// neither merged nor deduplicated.
func (e *Engine) Analyze(ctx context.Context, seq types.TraceSequence) []types.Risk {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := observability.Tracer().Start(ctx, "risk.Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("traces", len(seq)))

	start := time.Now()
	results := make([][]types.Risk, len(e.detectors))
	g, _ := errgroup.WithContext(ctx)
	for i, d := range e.detectors {
		i, d := i, d
		g.Go(func() error {
			risks, err := runIsolated(d, seq)
			if err != nil {
				e.metrics.IncDetectorFailure(d.Name())
				e.log.Warn("risk detector failed; continuing without it", "detector", d.Name(), "error", err.Error())
				return nil
			}
			results[i] = risks
			return nil
		})
	}
	_ = g.Wait()

	var out []types.Risk
	for _, rs := range results {
		out = append(out, rs...)
	}
	for _, r := range out {
		e.metrics.IncRisk(string(r.Type), string(r.Severity))
	}
	e.metrics.ObserveAnalyze(time.Since(start))
	span.SetAttributes(attribute.Int("risks", len(out)))
	return out
}

// AnalyzeEnriched runs Analyze and then the optional semantic enrichment,
// bounded by EnrichTimeout. Any enrichment failure falls back to the
// heuristic result.
func (e *Engine) AnalyzeEnriched(ctx context.Context, seq types.TraceSequence) []types.Risk {
	if ctx == nil {
		ctx = context.Background()
	}
	risks := e.Analyze(ctx, seq)
	if len(risks) == 0 {
		return risks
	}
	ectx, cancel := context.WithTimeout(ctx, e.cfg.EnrichTimeout)
	defer cancel()
	enriched, err := e.enricher.Enrich(ectx, seq, risks)
	if err != nil {
		e.metrics.IncEnrichment("fallback")
		e.log.Warn("semantic enrichment unavailable; using heuristic risks", "error", err.Error())
		return risks
	}
	e.metrics.IncEnrichment("ok")
	return enriched
}

func runIsolated(d Detector, seq types.TraceSequence) (risks []types.Risk, err error) {
	defer func() {
		if r := recover(); r != nil {
			risks = nil
			err = fmt.Errorf("detector %s panicked: %v", d.Name(), r)
		}
	}()
	return d.Detect(seq)
}

func newRisk(seq types.TraceSequence, typ types.RiskType, sev types.Severity, dim types.Dimension, traceIDs []uuid.UUID, evidence []string, rootCause string, recs ...string) types.Risk {
	sessionID := uuid.Nil
	if len(seq) > 0 {
		sessionID = seq[0].SessionID
	}
	return types.Risk{
		ID:              types.RiskID(sessionID, typ, traceIDs),
		SessionID:       sessionID,
		Type:            typ,
		Severity:        sev,
		Dimension:       dim,
		Evidence:        evidence,
		TraceIDs:        traceIDs,
		RootCause:       rootCause,
		Recommendations: recs,
	}
}
