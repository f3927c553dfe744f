package tutoring

import (
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/classifier"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/governor"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/ingest"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/pathrecon"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/report"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/risk"
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
)

// Config aggregates the per-component configs. Each is copied into its
// component at construction.
type Config struct {
	Ingest     ingest.Config     `yaml:"ingest"`
	Classifier classifier.Config `yaml:"classifier"`
	Governor   governor.Config   `yaml:"governor"`
	Risk       risk.Config       `yaml:"risk"`
	Path       pathrecon.Config  `yaml:"path"`
	Report     report.Config     `yaml:"-"`

	DefaultPolicy governor.ActivityPolicy `yaml:"default_policy"`

	// AnalyzeConcurrency bounds how many sessions AnalyzeMany runs at once.
	AnalyzeConcurrency int  `yaml:"analyze_concurrency"`
	Enrich             bool `yaml:"enrich"`
}

func DefaultConfig() Config {
	return Config{
		Ingest:             ingest.DefaultConfig(),
		Classifier:         classifier.DefaultConfig(),
		Governor:           governor.DefaultConfig(),
		Risk:               risk.DefaultConfig(),
		Path:               pathrecon.DefaultConfig(),
		Report:             report.DefaultConfig(),
		AnalyzeConcurrency: 4,
	}
}

func LoadConfigFromEnv() Config {
	return Config{
		Ingest:             ingest.LoadConfigFromEnv(),
		Classifier:         classifier.LoadConfigFromEnv(),
		Governor:           governor.LoadConfigFromEnv(),
		Risk:               risk.LoadConfigFromEnv(),
		Path:               pathrecon.LoadConfigFromEnv(),
		Report:             report.DefaultConfig(),
		AnalyzeConcurrency: envutil.Int("ANALYZE_CONCURRENCY", 4),
		Enrich:             envutil.Bool("RISK_ENRICH", false),
	}
}
