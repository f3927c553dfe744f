package classifier

import (
	"errors"
	"time"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

var ErrNilTrace = errors.New("classifier: nil trace")

// Classifier maps a trace and its bounded lookback to a cognitive state.
// It holds only immutable configuration, so one value can be shared freely.
type Classifier struct {
	cfg Config
}

func New(cfg Config) Classifier {
	if cfg.Lookback < 1 {
		cfg.Lookback = DefaultConfig().Lookback
	}
	if cfg.FrustrationInterval <= 0 {
		cfg.FrustrationInterval = DefaultConfig().FrustrationInterval
	}
	return Classifier{cfg: cfg}
}

func (c Classifier) Lookback() int { return c.cfg.Lookback }

// Classify evaluates the rules in a fixed order; the first match wins.
// history holds the session's prior traces, oldest first; only the last
// Lookback of them are read.
func (c Classifier) Classify(current *types.InteractionTrace, history types.TraceSequence) (types.CognitiveState, error) {
	if current == nil {
		return types.StateConfused, ErrNilTrace
	}
	for _, t := range history {
		if t == nil {
			return types.StateConfused, ErrNilTrace
		}
	}
	if len(history) == 0 {
		return types.StateExploring, nil
	}

	k := c.cfg.Lookback
	window := lastN(history, k)
	window = append(window, current)

	if isStuck(lastN(window, k), k) {
		return types.StateStuck, nil
	}
	if errorsDecreasing(window, k) {
		return types.StateImplementing, nil
	}
	if meanInterval(window) < c.cfg.FrustrationInterval && distinctSignatures(window) >= 2 {
		return types.StateConfused, nil
	}
	return types.StateDebugging, nil
}

// ClassifySafe never fails: any error yields the most restrictive label.
func (c Classifier) ClassifySafe(current *types.InteractionTrace, history types.TraceSequence) types.CognitiveState {
	state, err := c.Classify(current, history)
	if err != nil {
		return types.StateConfused
	}
	return state
}

func isStuck(window types.TraceSequence, k int) bool {
	if len(window) < k {
		return false
	}
	sig := ""
	for _, t := range window {
		o := t.Outcome()
		if o == nil || !o.Failed || o.ErrorSignature == "" {
			return false
		}
		if sig == "" {
			sig = o.ErrorSignature
		} else if o.ErrorSignature != sig {
			return false
		}
	}
	return true
}

func errorsDecreasing(window types.TraceSequence, k int) bool {
	counts := make([]int, 0, len(window))
	for _, t := range window {
		if o := t.Outcome(); o != nil {
			counts = append(counts, o.ErrorCount)
		}
	}
	if len(counts) > k {
		counts = counts[len(counts)-k:]
	}
	if len(counts) < 2 {
		return false
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] >= counts[i-1] {
			return false
		}
	}
	return true
}

func meanInterval(window types.TraceSequence) time.Duration {
	if len(window) < 2 {
		return time.Duration(1<<63 - 1)
	}
	total := window[len(window)-1].Timestamp.Sub(window[0].Timestamp)
	return total / time.Duration(len(window)-1)
}

func distinctSignatures(window types.TraceSequence) int {
	seen := map[string]struct{}{}
	for _, t := range window {
		if o := t.Outcome(); o != nil && o.Failed && o.ErrorSignature != "" {
			seen[o.ErrorSignature] = struct{}{}
		}
	}
	return len(seen)
}

func lastN(seq types.TraceSequence, n int) types.TraceSequence {
	if n <= 0 {
		return nil
	}
	start := len(seq) - n
	if start < 0 {
		start = 0
	}
	out := make(types.TraceSequence, len(seq)-start, len(seq)-start+1)
	copy(out, seq[start:])
	return out
}
