package normalization

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollapseFold(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"   ", ""},
		{"  Print( X )\n\n\tRETURN", "print( x ) return"},
		{"a\u00a0 b", "a b"},
	}
	for _, tc := range cases {
		if got := CollapseFold(tc.in); got != tc.want {
			t.Fatalf("CollapseFold(%q): expected %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("Don't just GIVE me the code, OK?")
	want := []string{"don't", "just", "give", "me", "the", "code", "ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected words (-want +got):\n%s", diff)
	}
}
