package classifier

import (
	"time"

	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

type Config struct {
	// Lookback is k, the number of prior traces considered.
	Lookback int `yaml:"lookback"`
	// FrustrationInterval is the mean inter-trace gap below which rapid
	// varying failures read as confusion.
	FrustrationInterval time.Duration `yaml:"frustration_interval"`
}

func DefaultConfig() Config {
	return Config{
		Lookback:            3,
		FrustrationInterval: 20 * time.Second,
	}
}

func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		Lookback:            envutil.Int("CLASSIFIER_LOOKBACK", def.Lookback),
		FrustrationInterval: envutil.Duration("CLASSIFIER_FRUSTRATION_INTERVAL", def.FrustrationInterval),
	}
}
