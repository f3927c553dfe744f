package signals

import (
	"testing"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

func TestPhraseSet_MatchesNormalizesCaseAndPunctuation(t *testing.T) {
	ps := NewPhraseSet([]string{"Give me the code", "do it for me"})
	got := ps.Matches("Please,   GIVE me the code!! and then do it for me.")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	if got[0] != "give me the code" || got[1] != "do it for me" {
		t.Fatalf("unexpected match order: %v", got)
	}
}

func TestPhraseSet_RepeatedPhraseCountsOnce(t *testing.T) {
	ps := NewPhraseSet([]string{"full solution"})
	got := ps.Matches("full solution, full solution")
	if len(got) != 1 {
		t.Fatalf("expected distinct matches, got %v", got)
	}
}

func TestPhraseSet_NoPartialWordMatch(t *testing.T) {
	ps := NewPhraseSet([]string{"full code"})
	if ps.HasMatch("a fullcode review") {
		t.Fatalf("expected no match across word boundary")
	}
	if !ps.Contains("FULL   code") {
		t.Fatalf("expected Contains to normalize")
	}
}

func TestIsDelegationSignal_IgnoresAssistantText(t *testing.T) {
	ps := NewPhraseSet(DefaultDelegationPhrases)
	ai := &types.InteractionTrace{Type: types.InteractionAIResponse, Content: types.TextContent("I won't give me the code")}
	if ps.IsDelegationSignal(ai) {
		t.Fatalf("assistant text must not count as delegation")
	}
	prompt := &types.InteractionTrace{Type: types.InteractionPrompt, Content: types.TextContent("just give me the answer")}
	if !ps.IsDelegationSignal(prompt) {
		t.Fatalf("expected prompt to be a delegation signal")
	}
}

func TestPhraseSet_EmptyAndNil(t *testing.T) {
	var ps *PhraseSet
	if ps.HasMatch("give me the code") || ps.Len() != 0 {
		t.Fatalf("nil set must be empty")
	}
	if NewPhraseSet([]string{"  ", ""}).Len() != 0 {
		t.Fatalf("blank phrases must be skipped")
	}
}
