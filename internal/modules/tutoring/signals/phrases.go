package signals

import (
	"strings"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/normalization"
)

// DefaultDelegationPhrases are requests for a finished solution rather than guidance.
var DefaultDelegationPhrases = []string{
	"give me the code",
	"give me the answer",
	"give me the solution",
	"just give me",
	"write the code",
	"write it for me",
	"write the whole",
	"solve it for me",
	"solve this for me",
	"do it for me",
	"do my homework",
	"fix it for me",
	"complete solution",
	"full solution",
	"full code",
	"entire code",
	"copy paste",
	"finish it for me",
}

// PhraseSet is an immutable set of normalized phrases. Lookups test every
// word n-gram of a text up to the longest phrase length, each check a single
// map lookup.
type PhraseSet struct {
	phrases  map[string]struct{}
	maxWords int
}

func NewPhraseSet(phrases []string) *PhraseSet {
	ps := &PhraseSet{phrases: make(map[string]struct{}, len(phrases))}
	for _, p := range phrases {
		words := normalization.Words(p)
		if len(words) == 0 {
			continue
		}
		ps.phrases[strings.Join(words, " ")] = struct{}{}
		if len(words) > ps.maxWords {
			ps.maxWords = len(words)
		}
	}
	return ps
}

func (ps *PhraseSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.phrases)
}

// Contains reports whether phrase (after normalization) is a member.
func (ps *PhraseSet) Contains(phrase string) bool {
	if ps == nil {
		return false
	}
	_, ok := ps.phrases[strings.Join(normalization.Words(phrase), " ")]
	return ok
}

// Matches returns the distinct member phrases found in text, in order of
// first occurrence.
func (ps *PhraseSet) Matches(text string) []string {
	if ps == nil || ps.maxWords == 0 || text == "" {
		return nil
	}
	words := normalization.Words(text)
	var out []string
	seen := map[string]bool{}
	var b strings.Builder
	for i := range words {
		b.Reset()
		for n := 0; n < ps.maxWords && i+n < len(words); n++ {
			if n > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(words[i+n])
			key := b.String()
			if _, ok := ps.phrases[key]; ok && !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}

func (ps *PhraseSet) HasMatch(text string) bool {
	return len(ps.Matches(text)) > 0
}

// DelegationText returns the learner-authored text a delegation check runs on.
// AI responses and critiques carry none.
func DelegationText(t *types.InteractionTrace) string {
	if t == nil {
		return ""
	}
	switch t.Type {
	case types.InteractionPrompt:
		return t.Content.Body()
	case types.InteractionCodeSubmission:
		return t.Content.Body()
	default:
		return ""
	}
}

// IsDelegationSignal reports whether the trace contains a delegation phrase.
func (ps *PhraseSet) IsDelegationSignal(t *types.InteractionTrace) bool {
	return ps.HasMatch(DelegationText(t))
}
