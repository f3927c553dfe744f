package governor

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

func TestSelectMode_RedForcesSocratic(t *testing.T) {
	policy := ActivityPolicy{
		DefaultMode:  types.ModeExplicative,
		StuckMode:    types.ModeExplicative,
		AllowedModes: []types.ModeName{types.ModeExplicative, types.ModeGuided, types.ModeMetacognitive},
	}
	for _, state := range []types.CognitiveState{types.StateStuck, types.StateConfused, types.StateImplementing} {
		for _, req := range []types.ModeName{types.ModeExplicative, types.ModeGuided, ""} {
			m := SelectMode(ModeInput{Semaphore: types.SemaphoreRed, State: state, Activity: policy, Requested: req})
			if m.Name() != types.ModeSocratic {
				t.Fatalf("RED must force SOCRATIC (state=%s requested=%s), got %s", state, req, m.Name())
			}
		}
	}
}

func TestSelectMode_UnknownSemaphoreIsTreatedAsRed(t *testing.T) {
	m := SelectMode(ModeInput{Semaphore: "PURPLE", State: types.StateDebugging})
	if m.Name() != types.ModeSocratic {
		t.Fatalf("expected SOCRATIC for unknown semaphore, got %s", m.Name())
	}
}

func TestSelectMode_StuckBiasFollowsActivity(t *testing.T) {
	explicative := ActivityPolicy{StuckMode: types.ModeExplicative}
	if m := SelectMode(ModeInput{Semaphore: types.SemaphoreYellow, State: types.StateStuck, Activity: explicative}); m.Name() != types.ModeExplicative {
		t.Fatalf("expected EXPLICATIVE, got %s", m.Name())
	}
	// invalid stuck mode falls back to GUIDED
	odd := ActivityPolicy{StuckMode: types.ModeMetacognitive}
	if m := SelectMode(ModeInput{Semaphore: types.SemaphoreGreen, State: types.StateConfused, Activity: odd}); m.Name() != types.ModeGuided {
		t.Fatalf("expected GUIDED, got %s", m.Name())
	}
}

func TestSelectMode_RequestedOnlyWhenAllowed(t *testing.T) {
	policy := ActivityPolicy{
		DefaultMode:  types.ModeMetacognitive,
		AllowedModes: []types.ModeName{types.ModeGuided},
	}
	if m := SelectMode(ModeInput{Semaphore: types.SemaphoreGreen, State: types.StateDebugging, Activity: policy, Requested: types.ModeGuided}); m.Name() != types.ModeGuided {
		t.Fatalf("expected requested GUIDED, got %s", m.Name())
	}
	if m := SelectMode(ModeInput{Semaphore: types.SemaphoreGreen, State: types.StateDebugging, Activity: policy, Requested: types.ModeExplicative}); m.Name() != types.ModeMetacognitive {
		t.Fatalf("expected default METACOGNITIVE, got %s", m.Name())
	}
	if m := SelectMode(ModeInput{Semaphore: types.SemaphoreGreen, State: types.StateExploring}); m.Name() != types.ModeSocratic {
		t.Fatalf("expected SOCRATIC as default default, got %s", m.Name())
	}
}

func TestDirectives(t *testing.T) {
	if d := ModeByName(types.ModeSocratic).Directive(HintNone); d.AllowFullSolutions || d.AllowCodeExamples || !d.QuestionFirst {
		t.Fatalf("socratic directive too permissive: %+v", d)
	}
	if d := ModeByName(types.ModeGuided).Directive(HintNone); d.HintLevel != HintConceptual || d.AllowCodeExamples {
		t.Fatalf("guided directive must start conceptual: %+v", d)
	}
	if d := ModeByName(types.ModeGuided).Directive(HintPartialExample); !d.AllowCodeExamples {
		t.Fatalf("last hint level allows a partial example: %+v", d)
	}
	if ModeByName("nope").Name() != types.ModeSocratic {
		t.Fatalf("unknown mode must fall back to SOCRATIC")
	}
}

func TestHintLadder_AdvancesOnlyOnSignalAfterDelivery(t *testing.T) {
	l := NewHintLadder(HintKey{ExerciseID: uuid.New(), Attempt: 1})
	if l.Level() != HintConceptual {
		t.Fatalf("expected conceptual start")
	}
	if _, err := l.Advance(true); !errors.Is(err, ErrHintNotDelivered) {
		t.Fatalf("expected ErrHintNotDelivered, got %v", err)
	}
	l.Deliver()
	if lvl, _ := l.Advance(false); lvl != HintConceptual {
		t.Fatalf("no signal must not advance, got %s", lvl)
	}
	want := []HintLevel{HintStrategy, HintPseudocode, HintPartialExample, HintPartialExample}
	for i, w := range want {
		l.Deliver()
		lvl, err := l.Advance(true)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if lvl != w {
			t.Fatalf("step %d: expected %s got %s", i, w, lvl)
		}
	}
}

func TestGovernor_LadderPerAttempt(t *testing.T) {
	g := New(uuid.New(), DefaultConfig(), phrases(), Deps{})
	ex := uuid.New()
	l1 := g.Ladder(HintKey{ExerciseID: ex, Attempt: 1})
	l1.Deliver()
	_, _ = l1.Advance(true)
	if g.Ladder(HintKey{ExerciseID: ex, Attempt: 1}).Level() != HintStrategy {
		t.Fatalf("same attempt must keep its ladder")
	}
	l2 := g.Ladder(HintKey{ExerciseID: ex, Attempt: 2})
	if l2.Level() != HintConceptual {
		t.Fatalf("new attempt must start a fresh ladder")
	}
	if back := g.Ladder(HintKey{ExerciseID: ex, Attempt: 1}); back != l2 {
		t.Fatalf("older attempts resolve to the current ladder")
	}
}
