package app

import (
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/risk"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
	"github.com/yungbote/neurobridge-governor/internal/platform/openai"
	"github.com/yungbote/neurobridge-governor/internal/realtime/bus"
)

type Clients struct {
	Bus      bus.Bus
	Enricher risk.Enricher
	Temporal temporalsdkclient.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	b, err := bus.Open(cfg.Bus, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init governance bus: %w", err)
	}

	// semantic review is optional; without a key the heuristics stand alone
	var enricher risk.Enricher = risk.NoopEnricher{}
	if cfg.Tutoring.Enrich {
		oc, err := openai.NewClient(cfg.OpenAI, log)
		if err != nil {
			log.Warn("OpenAI client unavailable; semantic review disabled", "error", err)
		} else {
			enricher = risk.NewCompletionEnricher(oc, cfg.Tutoring.Risk.EnrichMaxCalls)
		}
	}

	tc, err := wireTemporal(cfg, log)
	if err != nil {
		_ = b.Close()
		return Clients{}, err
	}
	return Clients{Bus: b, Enricher: enricher, Temporal: tc}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
