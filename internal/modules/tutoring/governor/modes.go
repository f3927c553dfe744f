package governor

import (
	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// Directive is the structured assistance contract handed to the
// response-generation collaborator. Wording is the collaborator's job.
type Directive struct {
	Mode                  types.ModeName `json:"mode"`
	AllowFullSolutions    bool           `json:"allow_full_solutions"`
	AllowCodeExamples     bool           `json:"allow_code_examples"`
	QuestionFirst         bool           `json:"question_first"`
	RequireJustification  bool           `json:"require_justification"`
	PromptSelfExplanation bool           `json:"prompt_self_explanation"`
	HintLevel             HintLevel      `json:"hint_level,omitempty"`
}

// Mode is one assistance policy.
type Mode interface {
	Name() types.ModeName
	Directive(hint HintLevel) Directive
}

type socraticMode struct{}

func (socraticMode) Name() types.ModeName { return types.ModeSocratic }
func (socraticMode) Directive(HintLevel) Directive {
	return Directive{
		Mode:                 types.ModeSocratic,
		QuestionFirst:        true,
		RequireJustification: true,
	}
}

type explicativeMode struct{}

func (explicativeMode) Name() types.ModeName { return types.ModeExplicative }
func (explicativeMode) Directive(HintLevel) Directive {
	return Directive{
		Mode:              types.ModeExplicative,
		AllowCodeExamples: true,
	}
}

type guidedMode struct{}

func (guidedMode) Name() types.ModeName { return types.ModeGuided }
func (guidedMode) Directive(hint HintLevel) Directive {
	if hint < HintConceptual {
		hint = HintConceptual
	}
	return Directive{
		Mode:              types.ModeGuided,
		AllowCodeExamples: hint >= HintPartialExample,
		HintLevel:         hint,
	}
}

type metacognitiveMode struct{}

func (metacognitiveMode) Name() types.ModeName { return types.ModeMetacognitive }
func (metacognitiveMode) Directive(HintLevel) Directive {
	return Directive{
		Mode:                  types.ModeMetacognitive,
		QuestionFirst:         true,
		PromptSelfExplanation: true,
	}
}

var modes = map[types.ModeName]Mode{
	types.ModeSocratic:      socraticMode{},
	types.ModeExplicative:   explicativeMode{},
	types.ModeGuided:        guidedMode{},
	types.ModeMetacognitive: metacognitiveMode{},
}

// ModeByName returns the policy for name, falling back to SOCRATIC.
func ModeByName(name types.ModeName) Mode {
	if m, ok := modes[name]; ok {
		return m
	}
	return socraticMode{}
}

// ActivityPolicy is the per-activity mode configuration.
type ActivityPolicy struct {
	DefaultMode  types.ModeName   `json:"default_mode" yaml:"default_mode"`
	StuckMode    types.ModeName   `json:"stuck_mode" yaml:"stuck_mode"`
	AllowedModes []types.ModeName `json:"allowed_modes" yaml:"allowed_modes"`
}

func (p ActivityPolicy) normalized() ActivityPolicy {
	if !p.DefaultMode.Valid() {
		p.DefaultMode = types.ModeSocratic
	}
	if p.StuckMode != types.ModeExplicative && p.StuckMode != types.ModeGuided {
		p.StuckMode = types.ModeGuided
	}
	return p
}

func (p ActivityPolicy) allows(m types.ModeName) bool {
	for _, a := range p.AllowedModes {
		if a == m {
			return true
		}
	}
	return false
}

type ModeInput struct {
	Semaphore types.SemaphoreState
	State     types.CognitiveState
	Activity  ActivityPolicy
	Requested types.ModeName
}

// SelectMode is the pure mode decision. RED always yields SOCRATIC; an
// unknown semaphore value is treated as RED.
func SelectMode(in ModeInput) Mode {
	if in.Semaphore.Level() >= types.SemaphoreRed.Level() {
		return socraticMode{}
	}
	policy := in.Activity.normalized()
	if in.State.NeedsSupport() || !in.State.Valid() {
		return ModeByName(policy.StuckMode)
	}
	if in.Requested.Valid() && policy.allows(in.Requested) {
		return ModeByName(in.Requested)
	}
	return ModeByName(policy.DefaultMode)
}
