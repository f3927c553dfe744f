package governor

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
	"github.com/yungbote/neurobridge-governor/internal/observability"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// Notifier receives semaphore changes, e.g. for the response generator.
type Notifier interface {
	PublishGovernance(ctx context.Context, ev types.GovernanceEvent) error
}

type NoopNotifier struct{}

func (NoopNotifier) PublishGovernance(context.Context, types.GovernanceEvent) error { return nil }

type Deps struct {
	Log      *logger.Logger
	Metrics  *observability.Metrics
	Notifier Notifier
}

// Governor owns the governance state of one session: the semaphore and the
// GUIDED hint ladders.
type Governor struct {
	sessionID uuid.UUID
	sem       *Semaphore
	ladders   map[HintKey]*HintLadder
	attempts  map[uuid.UUID]int

	log      *logger.Logger
	metrics  *observability.Metrics
	notifier Notifier
}

func New(sessionID uuid.UUID, cfg Config, phrases *signals.PhraseSet, deps Deps) *Governor {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Governor{
		sessionID: sessionID,
		sem:       NewSemaphore(cfg, phrases),
		ladders:   map[HintKey]*HintLadder{},
		attempts:  map[uuid.UUID]int{},
		log:       log.With("component", "TutorGovernor", "session_id", sessionID.String()),
		metrics:   deps.Metrics,
		notifier:  notifier,
	}
}

func (g *Governor) Semaphore() types.SemaphoreState { return g.sem.State() }

func (g *Governor) Snapshot() SemaphoreSnapshot { return g.sem.Snapshot() }

// Observe applies one trace to the semaphore. Notification failures are
// logged and never affect the returned state.
func (g *Governor) Observe(ctx context.Context, t *types.InteractionTrace) (Transition, error) {
	tr, err := g.sem.Observe(t)
	if err != nil {
		g.log.Warn("semaphore input invalid; failing safe to RED", "error", err.Error())
	}
	if tr.Changed() {
		g.metrics.IncSemaphoreTransition(string(tr.From), string(tr.To))
		g.log.Info("semaphore transition", "from", string(tr.From), "to", string(tr.To), "reasons", tr.Reasons)
		ev := types.GovernanceEvent{
			SessionID: g.sessionID,
			TraceID:   tr.TraceID,
			From:      tr.From,
			To:        tr.To,
			Reasons:   tr.Reasons,
		}
		if t != nil {
			ev.At = t.Timestamp
		}
		if perr := g.notifier.PublishGovernance(ctx, ev); perr != nil {
			g.log.Warn("governance notification failed", "error", perr.Error())
		}
	}
	return tr, err
}

// SelectMode picks the assistance mode under the current semaphore.
func (g *Governor) SelectMode(state types.CognitiveState, policy ActivityPolicy, requested types.ModeName) Mode {
	return SelectMode(ModeInput{
		Semaphore: g.sem.State(),
		State:     state,
		Activity:  policy,
		Requested: requested,
	})
}

// Ladder returns the hint ladder for an exercise attempt. Starting a newer
// attempt discards the ladder of the previous one; asking for an older
// attempt returns the current attempt's ladder.
func (g *Governor) Ladder(key HintKey) *HintLadder {
	cur, seen := g.attempts[key.ExerciseID]
	if seen && key.Attempt < cur {
		key.Attempt = cur
	}
	if seen && key.Attempt > cur {
		delete(g.ladders, HintKey{ExerciseID: key.ExerciseID, Attempt: cur})
	}
	g.attempts[key.ExerciseID] = key.Attempt
	l, ok := g.ladders[key]
	if !ok {
		l = NewHintLadder(key)
		g.ladders[key] = l
	}
	return l
}

// Reset restores session-start state.
func (g *Governor) Reset() {
	g.sem.Reset()
	g.ladders = map[HintKey]*HintLadder{}
	g.attempts = map[uuid.UUID]int{}
}
