package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	DialTimeout           time.Duration
	DialMaxWait           time.Duration
	DialBackoff           time.Duration
	DialBackoffMax        time.Duration
	AutoRegisterNamespace bool
	RetentionDays         int

	WorkerConcurrency int
}

func LoadConfig() Config {
	return Config{
		Address:   strings.TrimSpace(envutil.String("TEMPORAL_ADDRESS", "")),
		Namespace: strings.TrimSpace(envutil.String("TEMPORAL_NAMESPACE", "governor")),
		TaskQueue: strings.TrimSpace(envutil.String("TEMPORAL_TASK_QUEUE", "governor-analysis")),

		ClientCertPath: strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CERT_PATH", "")),
		ClientKeyPath:  strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_KEY_PATH", "")),
		ClientCAPath:   strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CA_PATH", "")),

		DialTimeout:           envutil.Duration("TEMPORAL_DIAL_TIMEOUT", 5*time.Second),
		DialMaxWait:           envutil.Duration("TEMPORAL_DIAL_MAX_WAIT", 60*time.Second),
		DialBackoff:           envutil.Duration("TEMPORAL_DIAL_BACKOFF", 250*time.Millisecond),
		DialBackoffMax:        envutil.Duration("TEMPORAL_DIAL_BACKOFF_MAX", 5*time.Second),
		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		RetentionDays:         envutil.Int("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7),

		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 4),
	}
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool { return c.Address != "" }

// ClampBackoff doubles base per attempt, capped at max.
func ClampBackoff(base time.Duration, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
