package risk

import (
	"time"

	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/signals"
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

// DefaultUnsafeSignatures are matched against case-folded, whitespace
// collapsed submissions.
var DefaultUnsafeSignatures = []string{
	"eval(",
	"exec(",
	"os.system(",
	"subprocess.",
	"shell=true",
	"pickle.loads(",
	"__import__(",
	"yaml.load(",
	"child_process",
	"runtime.getruntime().exec(",
	"strcpy(",
	"gets(",
	"rm -rf",
}

// DefaultErrorHandlingMarkers are words whose presence counts as some form
// of error handling.
var DefaultErrorHandlingMarkers = []string{
	"try", "except", "catch", "finally", "raise", "throw", "throws",
	"err", "error", "errors", "rescue", "recover", "panic", "assert",
}

// Config holds every threshold the detectors use. Values are copied at
// engine construction.
type Config struct {
	DelegationPhrases      []string `yaml:"delegation_phrases"`
	DelegationHitThreshold int      `yaml:"delegation_hit_threshold"`
	DependencyRatio        float64  `yaml:"dependency_ratio"`
	DependencyHighRatio    float64  `yaml:"dependency_high_ratio"`

	SpeedMinLength  int           `yaml:"speed_min_length"`
	SpeedMaxElapsed time.Duration `yaml:"speed_max_elapsed"`

	UncriticalThreshold int     `yaml:"uncritical_threshold"`
	UncriticalHighRatio float64 `yaml:"uncritical_high_ratio"`

	UnsafeSignatures      []string `yaml:"unsafe_signatures"`
	ErrorHandlingMarkers  []string `yaml:"error_handling_markers"`
	ErrorHandlingMinLines int      `yaml:"error_handling_min_lines"`

	MaxSessionDuration time.Duration `yaml:"max_session_duration"`
	CadenceMinSamples  int           `yaml:"cadence_min_samples"`
	CadenceMaxMean     time.Duration `yaml:"cadence_max_mean"`
	CadenceMaxStdDev   time.Duration `yaml:"cadence_max_std_dev"`

	EnrichTimeout  time.Duration `yaml:"enrich_timeout"`
	EnrichMaxCalls int           `yaml:"enrich_max_calls"`
}

func DefaultConfig() Config {
	return Config{
		DelegationPhrases:      append([]string(nil), signals.DefaultDelegationPhrases...),
		DelegationHitThreshold: 3,
		DependencyRatio:        0.7,
		DependencyHighRatio:    0.9,

		SpeedMinLength:  100,
		SpeedMaxElapsed: 5 * time.Second,

		UncriticalThreshold: 1,
		UncriticalHighRatio: 0.5,

		UnsafeSignatures:      append([]string(nil), DefaultUnsafeSignatures...),
		ErrorHandlingMarkers:  append([]string(nil), DefaultErrorHandlingMarkers...),
		ErrorHandlingMinLines: 8,

		MaxSessionDuration: 4 * time.Hour,
		CadenceMinSamples:  5,
		CadenceMaxMean:     3 * time.Second,
		CadenceMaxStdDev:   500 * time.Millisecond,

		EnrichTimeout:  5 * time.Second,
		EnrichMaxCalls: 3,
	}
}

func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := envutil.CSV("RISK_DELEGATION_PHRASES"); len(v) > 0 {
		cfg.DelegationPhrases = v
	}
	cfg.DelegationHitThreshold = envutil.Int("RISK_DELEGATION_HIT_THRESHOLD", cfg.DelegationHitThreshold)
	cfg.DependencyRatio = envutil.Float("RISK_DEPENDENCY_RATIO", cfg.DependencyRatio)
	cfg.DependencyHighRatio = envutil.Float("RISK_DEPENDENCY_HIGH_RATIO", cfg.DependencyHighRatio)
	cfg.SpeedMinLength = envutil.Int("RISK_SPEED_MIN_LENGTH", cfg.SpeedMinLength)
	cfg.SpeedMaxElapsed = envutil.Duration("RISK_SPEED_MAX_ELAPSED", cfg.SpeedMaxElapsed)
	cfg.UncriticalThreshold = envutil.Int("RISK_UNCRITICAL_THRESHOLD", cfg.UncriticalThreshold)
	cfg.UncriticalHighRatio = envutil.Float("RISK_UNCRITICAL_HIGH_RATIO", cfg.UncriticalHighRatio)
	if v := envutil.CSV("RISK_UNSAFE_SIGNATURES"); len(v) > 0 {
		cfg.UnsafeSignatures = v
	}
	cfg.ErrorHandlingMinLines = envutil.Int("RISK_ERROR_HANDLING_MIN_LINES", cfg.ErrorHandlingMinLines)
	cfg.MaxSessionDuration = envutil.Duration("RISK_MAX_SESSION_DURATION", cfg.MaxSessionDuration)
	cfg.CadenceMinSamples = envutil.Int("RISK_CADENCE_MIN_SAMPLES", cfg.CadenceMinSamples)
	cfg.CadenceMaxMean = envutil.Duration("RISK_CADENCE_MAX_MEAN", cfg.CadenceMaxMean)
	cfg.CadenceMaxStdDev = envutil.Duration("RISK_CADENCE_MAX_STDDEV", cfg.CadenceMaxStdDev)
	cfg.EnrichTimeout = envutil.Duration("RISK_ENRICH_TIMEOUT", cfg.EnrichTimeout)
	cfg.EnrichMaxCalls = envutil.Int("RISK_ENRICH_MAX_CALLS", cfg.EnrichMaxCalls)
	return cfg
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.DelegationHitThreshold < 1 {
		c.DelegationHitThreshold = def.DelegationHitThreshold
	}
	if c.DependencyRatio <= 0 || c.DependencyRatio > 1 {
		c.DependencyRatio = def.DependencyRatio
	}
	if c.DependencyHighRatio < c.DependencyRatio || c.DependencyHighRatio > 1 {
		c.DependencyHighRatio = def.DependencyHighRatio
	}
	if c.SpeedMinLength < 0 {
		c.SpeedMinLength = def.SpeedMinLength
	}
	if c.SpeedMaxElapsed <= 0 {
		c.SpeedMaxElapsed = def.SpeedMaxElapsed
	}
	if c.UncriticalThreshold < 1 {
		c.UncriticalThreshold = def.UncriticalThreshold
	}
	if c.UncriticalHighRatio <= 0 || c.UncriticalHighRatio > 1 {
		c.UncriticalHighRatio = def.UncriticalHighRatio
	}
	if c.ErrorHandlingMinLines < 1 {
		c.ErrorHandlingMinLines = def.ErrorHandlingMinLines
	}
	if c.MaxSessionDuration <= 0 {
		c.MaxSessionDuration = def.MaxSessionDuration
	}
	if c.CadenceMinSamples < 2 {
		c.CadenceMinSamples = def.CadenceMinSamples
	}
	if c.CadenceMaxMean <= 0 {
		c.CadenceMaxMean = def.CadenceMaxMean
	}
	if c.CadenceMaxStdDev <= 0 {
		c.CadenceMaxStdDev = def.CadenceMaxStdDev
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = def.EnrichTimeout
	}
	if c.EnrichMaxCalls < 0 {
		c.EnrichMaxCalls = 0
	}
	// copy slices so later caller mutation cannot leak into a running engine
	c.DelegationPhrases = append([]string(nil), c.DelegationPhrases...)
	c.UnsafeSignatures = append([]string(nil), c.UnsafeSignatures...)
	c.ErrorHandlingMarkers = append([]string(nil), c.ErrorHandlingMarkers...)
	return c
}
