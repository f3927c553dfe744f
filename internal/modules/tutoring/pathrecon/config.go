package pathrecon

import "github.com/yungbote/neurobridge-governor/internal/platform/envutil"

type Config struct {
	// TrendThreshold is the relative change in delegation frequency between
	// the two halves of a session needed to call a trend.
	TrendThreshold float64 `yaml:"trend_threshold"`
}

func DefaultConfig() Config {
	return Config{TrendThreshold: 0.2}
}

func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{TrendThreshold: envutil.Float("PATH_TREND_THRESHOLD", def.TrendThreshold)}
}

func (c Config) normalized() Config {
	if c.TrendThreshold <= 0 {
		c.TrendThreshold = DefaultConfig().TrendThreshold
	}
	return c
}
