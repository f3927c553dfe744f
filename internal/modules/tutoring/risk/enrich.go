package risk

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// Enricher optionally refines heuristic risks. It must not remove risks
// and must return the input untouched on error.
type Enricher interface {
	Enrich(ctx context.Context, seq types.TraceSequence, risks []types.Risk) ([]types.Risk, error)
}

type NoopEnricher struct{}

func (NoopEnricher) Enrich(_ context.Context, _ types.TraceSequence, risks []types.Risk) ([]types.Risk, error) {
	return risks, nil
}

// Completer is the narrow text-generation surface the enricher needs.
type Completer interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

const enrichSystemPrompt = `You review findings from a programming tutor. ` +
	`Given a finding and the learner's own words, reply with one short sentence ` +
	`stating whether the learner shows understanding of the work. Do not include code.`

// CompletionEnricher appends a reviewer note to the semantic risk types.
// The completion is treated as opaque text; only its length is checked.
type CompletionEnricher struct {
	Completer  Completer
	MaxCalls   int
	MaxExcerpt int
}

func NewCompletionEnricher(c Completer, maxCalls int) *CompletionEnricher {
	return &CompletionEnricher{Completer: c, MaxCalls: maxCalls, MaxExcerpt: 240}
}

func semantic(t types.RiskType) bool {
	return t == types.RiskCognitiveDelegation || t == types.RiskUncriticalAcceptance
}

func (e *CompletionEnricher) Enrich(ctx context.Context, seq types.TraceSequence, risks []types.Risk) ([]types.Risk, error) {
	if e == nil || e.Completer == nil {
		return risks, nil
	}
	pos := make(map[uuid.UUID]int, len(seq))
	for i, t := range seq {
		if t != nil {
			pos[t.ID] = i
		}
	}

	out := make([]types.Risk, len(risks))
	copy(out, risks)
	calls := 0
	for i := range out {
		if !semantic(out[i].Type) || calls >= e.MaxCalls {
			continue
		}
		if err := ctx.Err(); err != nil {
			return risks, err
		}
		calls++
		note, err := e.Completer.GenerateText(ctx, enrichSystemPrompt, e.prompt(out[i], seq, pos))
		if err != nil {
			return risks, fmt.Errorf("enrich %s: %w", out[i].Type, err)
		}
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		ev := make([]string, 0, len(out[i].Evidence)+1)
		ev = append(ev, out[i].Evidence...)
		ev = append(ev, "review: "+truncateRunes(note, e.MaxExcerpt))
		out[i].Evidence = ev
	}
	return out, nil
}

const maxPromptTraces = 5

func (e *CompletionEnricher) prompt(r types.Risk, seq types.TraceSequence, pos map[uuid.UUID]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Finding: %s (%s)\n", r.Type, r.Severity)
	for _, ev := range r.Evidence {
		fmt.Fprintf(&b, "- %s\n", ev)
	}
	b.WriteString("Learner interactions:\n")
	for _, t := range learnerContext(r, seq, pos) {
		fmt.Fprintf(&b, "[%s] %s\n", t.Type, truncateRunes(t.Content.Body(), e.MaxExcerpt))
	}
	return b.String()
}

// learnerContext returns the learner-authored traces behind a risk. A
// referenced assistant response is represented by the first learner trace
// after it, or by the prompt it answered when the session ends first.
func learnerContext(r types.Risk, seq types.TraceSequence, pos map[uuid.UUID]int) []*types.InteractionTrace {
	var out []*types.InteractionTrace
	seen := map[uuid.UUID]bool{}
	for _, id := range r.TraceIDs {
		i, ok := pos[id]
		if !ok {
			continue
		}
		t := learnerFrom(seq, i)
		if t == nil && seq[i].ParentID != nil {
			if p, ok := pos[*seq[i].ParentID]; ok && seq[p].Type.LearnerAuthored() {
				t = seq[p]
			}
		}
		if t == nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
		if len(out) >= maxPromptTraces {
			break
		}
	}
	return out
}

func learnerFrom(seq types.TraceSequence, i int) *types.InteractionTrace {
	for ; i < len(seq); i++ {
		if t := seq[i]; t != nil && t.Type.LearnerAuthored() {
			return t
		}
	}
	return nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
