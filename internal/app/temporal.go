package app

import (
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
	"github.com/yungbote/neurobridge-governor/internal/temporalx"
)

func wireTemporal(cfg Config, log *logger.Logger) (temporalsdkclient.Client, error) {
	tc, err := temporalx.NewClient(cfg.Temporal, log)
	if err != nil {
		return nil, fmt.Errorf("init temporal client: %w", err)
	}
	return tc, nil
}
