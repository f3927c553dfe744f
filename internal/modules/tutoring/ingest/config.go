package ingest

import (
	"time"

	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

type Config struct {
	// TimestampTolerance is how far an event may trail the last committed
	// trace before it is rejected as out of order.
	TimestampTolerance time.Duration `yaml:"timestamp_tolerance"`
	MaxContentBytes    int           `yaml:"max_content_bytes"`
}

func DefaultConfig() Config {
	return Config{
		TimestampTolerance: 2 * time.Second,
		MaxContentBytes:    256 * 1024,
	}
}

func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		TimestampTolerance: envutil.Duration("INGEST_TIMESTAMP_TOLERANCE", def.TimestampTolerance),
		MaxContentBytes:    envutil.Int("INGEST_MAX_CONTENT_BYTES", def.MaxContentBytes),
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.TimestampTolerance < 0 {
		c.TimestampTolerance = 0
	}
	if c.MaxContentBytes <= 0 {
		c.MaxContentBytes = def.MaxContentBytes
	}
	return c
}
