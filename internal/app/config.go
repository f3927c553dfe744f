package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-governor/internal/data/db"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
	"github.com/yungbote/neurobridge-governor/internal/platform/openai"
	"github.com/yungbote/neurobridge-governor/internal/realtime/bus"
	"github.com/yungbote/neurobridge-governor/internal/temporalx"
)

type Config struct {
	Environment string
	Version     string
	HTTPAddr    string
	ConfigPath  string

	Tutoring tutoring.Config
	DB       db.Config
	Bus      bus.Config
	OpenAI   openai.Config
	Temporal temporalx.Config
}

// LoadConfig reads env defaults and then overlays the optional YAML file
// named by GOVERNOR_CONFIG_PATH onto the tutoring thresholds.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("VERSION", "dev"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		ConfigPath:  strings.TrimSpace(envutil.String("GOVERNOR_CONFIG_PATH", "")),

		Tutoring: tutoring.LoadConfigFromEnv(),
		DB:       db.LoadConfigFromEnv(),
		Bus:      bus.LoadConfigFromEnv(),
		OpenAI:   openai.LoadConfigFromEnv(),
		Temporal: temporalx.LoadConfig(),
	}
	if cfg.ConfigPath == "" {
		return cfg, nil
	}
	tc, err := LoadTutoringOverlay(cfg.ConfigPath, cfg.Tutoring)
	if err != nil {
		return cfg, err
	}
	cfg.Tutoring = tc
	if log != nil {
		log.Info("Loaded threshold overlay", "path", cfg.ConfigPath)
	}
	return cfg, nil
}

// LoadTutoringOverlay decodes path over base. Keys absent from the file keep
// their base value.
func LoadTutoringOverlay(path string, base tutoring.Config) (tutoring.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	out := base
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return out, nil
}
