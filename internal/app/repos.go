package app

import (
	"fmt"

	"github.com/yungbote/neurobridge-governor/internal/data/db"
	tutoringrepo "github.com/yungbote/neurobridge-governor/internal/data/repos/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

func wireStore(cfg db.Config, log *logger.Logger) (*db.Service, *tutoringrepo.Store, error) {
	log.Info("Wiring storage...", "driver", cfg.Driver)
	svc, err := db.Open(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	return svc, tutoringrepo.NewStore(svc.DB(), log), nil
}
