package governor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// traceFor maps a generated code onto a small vocabulary of interactions.
func traceFor(i, code int) *types.InteractionTrace {
	switch code {
	case 0:
		return textTrace(i, types.InteractionPrompt, "give me the full solution")
	case 1:
		return textTrace(i, types.InteractionPrompt, "why does this loop end early?")
	case 2:
		v := 0.95
		tr := textTrace(i, types.InteractionReflection, "I mostly copied it")
		tr.AIInvolvement = &v
		return tr
	case 3:
		tr := textTrace(i, types.InteractionStrategyChange, "trying recursion")
		tr.Context = map[string]string{types.ContextJustification: "iteration blew the stack"}
		return tr
	case 4:
		return textTrace(i, types.InteractionStrategyChange, "trying something else")
	default:
		return textTrace(i, types.InteractionAIResponse, "Consider the base case.")
	}
}

func TestSemaphoreProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("state is always GREEN, YELLOW or RED and only steps down one level on a clean streak", prop.ForAll(
		func(codes []int) bool {
			s := NewSemaphore(DefaultConfig(), phrases())
			for i, code := range codes {
				tr, err := s.Observe(traceFor(i, code))
				if err != nil {
					return false
				}
				switch tr.To {
				case types.SemaphoreGreen, types.SemaphoreYellow, types.SemaphoreRed:
				default:
					return false
				}
				drop := tr.From.Level() - tr.To.Level()
				if drop > 1 {
					return false
				}
				if drop == 1 {
					found := false
					for _, r := range tr.Reasons {
						if r == ReasonCleanStreak {
							found = true
						}
					}
					if !found {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("RED is reached whenever the window holds enough delegation hits", prop.ForAll(
		func(prefix []int) bool {
			s := NewSemaphore(DefaultConfig(), phrases())
			for i, code := range prefix {
				_, _ = s.Observe(traceFor(i, code))
			}
			for i := 0; i < DefaultConfig().RedHitThreshold; i++ {
				_, _ = s.Observe(traceFor(len(prefix)+i, 0))
			}
			return s.State() == types.SemaphoreRed
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}

func TestHintLadderProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("hint level never decreases and never skips", prop.ForAll(
		func(ops []int) bool {
			l := NewHintLadder(HintKey{ExerciseID: uuid.New(), Attempt: 1})
			prev := l.Level()
			for _, op := range ops {
				switch op {
				case 0:
					l.Deliver()
				case 1:
					_, _ = l.Advance(true)
				default:
					_, _ = l.Advance(false)
				}
				cur := l.Level()
				if cur < prev || cur-prev > 1 || cur < HintConceptual || cur > MaxHintLevel {
					return false
				}
				prev = cur
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
