package classifier

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func submission(at time.Duration, failed bool, sig string, errs int) *types.InteractionTrace {
	return &types.InteractionTrace{
		ID:        uuid.New(),
		Timestamp: base.Add(at),
		Type:      types.InteractionCodeSubmission,
		Content: types.CodeSubmission("python", "x = 1", &types.SubmissionOutcome{
			Failed: failed, ErrorSignature: sig, ErrorCount: errs,
		}),
	}
}

func prompt(at time.Duration) *types.InteractionTrace {
	return &types.InteractionTrace{
		ID:        uuid.New(),
		Timestamp: base.Add(at),
		Type:      types.InteractionPrompt,
		Content:   types.TextContent("how do loops work?"),
	}
}

func TestClassify_Rules(t *testing.T) {
	c := New(DefaultConfig())
	cases := []struct {
		name    string
		history types.TraceSequence
		current *types.InteractionTrace
		want    types.CognitiveState
	}{
		{
			name:    "first trace explores",
			current: submission(0, true, "TypeError", 3),
			want:    types.StateExploring,
		},
		{
			name: "same failure three times is stuck",
			history: types.TraceSequence{
				submission(0, true, "TypeError", 2),
				submission(60*time.Second, true, "TypeError", 2),
			},
			current: submission(120*time.Second, true, "TypeError", 2),
			want:    types.StateStuck,
		},
		{
			name: "decreasing error counts is implementing",
			history: types.TraceSequence{
				submission(0, true, "TypeError", 5),
				submission(60*time.Second, true, "ValueError", 3),
			},
			current: submission(120*time.Second, true, "KeyError", 1),
			want:    types.StateImplementing,
		},
		{
			name: "rapid varying failures is confused",
			history: types.TraceSequence{
				submission(0, true, "TypeError", 2),
				submission(5*time.Second, true, "ValueError", 2),
			},
			current: submission(10*time.Second, true, "KeyError", 3),
			want:    types.StateConfused,
		},
		{
			name: "slow varying failures is debugging",
			history: types.TraceSequence{
				submission(0, true, "TypeError", 2),
				submission(5*time.Minute, true, "ValueError", 2),
			},
			current: submission(10*time.Minute, true, "KeyError", 3),
			want:    types.StateDebugging,
		},
		{
			name:    "plain conversation defaults to debugging",
			history: types.TraceSequence{prompt(0)},
			current: prompt(time.Minute),
			want:    types.StateDebugging,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.current, tc.history)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s got %s", tc.want, got)
			}
		})
	}
}

func TestClassify_StuckWinsOverConfusedOrder(t *testing.T) {
	c := New(DefaultConfig())
	history := types.TraceSequence{
		submission(0, true, "TypeError", 2),
		submission(time.Second, true, "TypeError", 2),
	}
	got, _ := c.Classify(submission(2*time.Second, true, "TypeError", 2), history)
	if got != types.StateStuck {
		t.Fatalf("expected stuck, got %s", got)
	}
}

func TestClassify_OnlyReadsLookback(t *testing.T) {
	c := New(Config{Lookback: 2, FrustrationInterval: 20 * time.Second})
	history := types.TraceSequence{
		submission(0, true, "ValueError", 9),
		prompt(time.Minute),
		submission(2*time.Minute, true, "TypeError", 2),
	}
	got, _ := c.Classify(submission(3*time.Minute, true, "TypeError", 2), history)
	if got != types.StateStuck {
		t.Fatalf("expected stuck within a 2-trace window, got %s", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(DefaultConfig())
	history := types.TraceSequence{
		submission(0, true, "TypeError", 2),
		submission(5*time.Second, true, "ValueError", 2),
	}
	cur := submission(10*time.Second, true, "KeyError", 3)
	first, _ := c.Classify(cur, history)
	for i := 0; i < 20; i++ {
		if got, _ := c.Classify(cur, history); got != first {
			t.Fatalf("classification changed between runs: %s vs %s", first, got)
		}
	}
}

func TestClassifySafe_FailsRestrictive(t *testing.T) {
	c := New(DefaultConfig())
	if got := c.ClassifySafe(nil, nil); got != types.StateConfused {
		t.Fatalf("expected confused on error, got %s", got)
	}
	if _, err := c.Classify(prompt(0), types.TraceSequence{nil}); err == nil {
		t.Fatalf("expected error for nil history entry")
	}
}
