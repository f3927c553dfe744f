package governor

import (
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

// Config tunes semaphore transitions. There is deliberately no switch for
// the RED ⇒ SOCRATIC override.
type Config struct {
	Window            int     `yaml:"window"`
	RedHitThreshold   int     `yaml:"red_hit_threshold"`
	DependencyRatio   float64 `yaml:"dependency_ratio"`
	MinJustifiedRatio float64 `yaml:"min_justified_ratio"`
	MinInteractions   int     `yaml:"min_interactions"`
	CleanStreak       int     `yaml:"clean_streak"`
}

func DefaultConfig() Config {
	return Config{
		Window:            10,
		RedHitThreshold:   3,
		DependencyRatio:   0.7,
		MinJustifiedRatio: 0.3,
		MinInteractions:   5,
		CleanStreak:       3,
	}
}

func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		Window:            envutil.Int("GOVERNOR_WINDOW", def.Window),
		RedHitThreshold:   envutil.Int("GOVERNOR_RED_HIT_THRESHOLD", def.RedHitThreshold),
		DependencyRatio:   envutil.Float("GOVERNOR_DEPENDENCY_RATIO", def.DependencyRatio),
		MinJustifiedRatio: envutil.Float("GOVERNOR_MIN_JUSTIFIED_RATIO", def.MinJustifiedRatio),
		MinInteractions:   envutil.Int("GOVERNOR_MIN_INTERACTIONS", def.MinInteractions),
		CleanStreak:       envutil.Int("GOVERNOR_CLEAN_STREAK", def.CleanStreak),
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Window < 1 {
		c.Window = def.Window
	}
	if c.RedHitThreshold < 1 {
		c.RedHitThreshold = def.RedHitThreshold
	}
	if c.DependencyRatio <= 0 || c.DependencyRatio > 1 {
		c.DependencyRatio = def.DependencyRatio
	}
	if c.MinJustifiedRatio < 0 || c.MinJustifiedRatio > 1 {
		c.MinJustifiedRatio = def.MinJustifiedRatio
	}
	if c.MinInteractions < 0 {
		c.MinInteractions = def.MinInteractions
	}
	if c.CleanStreak < 1 {
		c.CleanStreak = def.CleanStreak
	}
	return c
}
