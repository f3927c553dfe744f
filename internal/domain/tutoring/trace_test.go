package tutoring

import "testing"

func TestJustified(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"", false},
		{" \t\n", false},
		{"\u00a0\u3000", false},
		{" because the loop needs a guard", true},
		{"refactor", true},
	}
	for _, tc := range cases {
		tr := &InteractionTrace{Type: InteractionCodeSubmission, Context: map[string]string{ContextJustification: tc.value}}
		if got := tr.Justified(); got != tc.want {
			t.Fatalf("justification %q: expected %v got %v", tc.value, tc.want, got)
		}
	}
	if (&InteractionTrace{}).Justified() {
		t.Fatalf("a trace without context is not justified")
	}
	var nilTrace *InteractionTrace
	if nilTrace.Justified() {
		t.Fatalf("nil trace is not justified")
	}
}
