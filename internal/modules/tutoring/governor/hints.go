package governor

import (
	"errors"

	"github.com/google/uuid"
)

// HintLevel orders GUIDED hints by specificity.
type HintLevel int

const (
	HintNone HintLevel = iota
	HintConceptual
	HintStrategy
	HintPseudocode
	HintPartialExample
)

const MaxHintLevel = HintPartialExample

func (h HintLevel) String() string {
	switch h {
	case HintConceptual:
		return "conceptual"
	case HintStrategy:
		return "strategy"
	case HintPseudocode:
		return "pseudocode"
	case HintPartialExample:
		return "partial_example"
	default:
		return "none"
	}
}

var ErrHintNotDelivered = errors.New("governor: previous hint not delivered yet")

// HintKey identifies one attempt at one exercise.
type HintKey struct {
	ExerciseID uuid.UUID
	Attempt    int
}

// HintLadder is the GUIDED sub-state of one exercise attempt. The level
// moves one step at a time, only upward, and only after the previous hint
// was delivered and the caller reported continued inability.
type HintLadder struct {
	key       HintKey
	level     HintLevel
	delivered bool
}

func NewHintLadder(key HintKey) *HintLadder {
	return &HintLadder{key: key, level: HintConceptual}
}

func (l *HintLadder) Key() HintKey { return l.key }
func (l *HintLadder) Level() HintLevel { return l.level }

// Deliver marks the current hint as shown and returns its level.
func (l *HintLadder) Deliver() HintLevel {
	l.delivered = true
	return l.level
}

// Advance moves to the next level when stillUnable is true. Without an
// explicit signal the level is unchanged; at the top level it stays put.
func (l *HintLadder) Advance(stillUnable bool) (HintLevel, error) {
	if !stillUnable {
		return l.level, nil
	}
	if !l.delivered {
		return l.level, ErrHintNotDelivered
	}
	if l.level < MaxHintLevel {
		l.level++
	}
	l.delivered = false
	return l.level, nil
}
