package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/neurobridge-governor/internal/data/db"
	tutoringrepo "github.com/yungbote/neurobridge-governor/internal/data/repos/tutoring"
	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	apphttp "github.com/yungbote/neurobridge-governor/internal/http"
	httpH "github.com/yungbote/neurobridge-governor/internal/http/handlers"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/modules/tutoring/risk"
	"github.com/yungbote/neurobridge-governor/internal/observability"
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
	"github.com/yungbote/neurobridge-governor/internal/temporalx/temporalworker"
)

const serviceName = "neurobridge-governor"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Store    *tutoringrepo.Store
	Clients  Clients
	Metrics  *observability.Metrics
	Monitor  *tutoring.Monitor
	Analyzer *tutoring.Analyzer
	Worker   *temporalworker.Runner
	HTTP     *apphttp.Server

	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	dbSvc, store, err := wireStore(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(cfg, log)
	if err != nil {
		_ = dbSvc.Close()
		log.Sync()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	monitor := tutoring.NewMonitor(cfg.Tutoring, tutoring.MonitorDeps{
		Log:      log,
		Metrics:  metrics,
		Notifier: clients.Bus,
		Store:    store,
	})
	engine := risk.NewEngine(cfg.Tutoring.Risk, risk.Deps{
		Log:      log,
		Metrics:  metrics,
		Enricher: clients.Enricher,
	})
	analyzer := tutoring.NewAnalyzer(cfg.Tutoring, tutoring.AnalyzerDeps{
		Log:     log,
		Engine:  engine,
		Monitor: monitor,
		Store:   store,
	})

	var worker *temporalworker.Runner
	if clients.Temporal != nil {
		worker, err = temporalworker.NewRunner(cfg.Temporal, log, clients.Temporal, analyzer)
		if err != nil {
			clients.Close()
			_ = dbSvc.Close()
			log.Sync()
			return nil, err
		}
	}

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		HealthHandler:  httpH.NewHealthHandler(map[string]httpH.Pinger{"database": dbSvc}),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbSvc,
		Store:        store,
		Clients:      clients,
		Metrics:      metrics,
		Monitor:      monitor,
		Analyzer:     analyzer,
		Worker:       worker,
		HTTP:         server,
		shutdownOTel: shutdown,
	}, nil
}

// Start launches the background parts: governance forwarding, the Temporal
// worker and the operational HTTP server.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Clients.Bus.StartForwarder(ctx, a.logGovernance); err != nil {
		return fmt.Errorf("start governance forwarder: %w", err)
	}
	if a.Worker != nil {
		if err := a.Worker.Start(ctx); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
	}
	go func() {
		if err := a.HTTP.Run(a.Cfg.HTTPAddr); err != nil {
			a.Log.Error("HTTP server stopped", "error", err)
		}
	}()
	a.Log.Info("Governor started", "http_addr", a.Cfg.HTTPAddr, "temporal", a.Worker != nil)
	return nil
}

func (a *App) logGovernance(ev types.GovernanceEvent) {
	a.Log.Info("governance transition",
		"session_id", ev.SessionID.String(),
		"from", string(ev.From),
		"to", string(ev.To),
		"reasons", ev.Reasons,
	)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.HTTP != nil {
		_ = a.HTTP.Shutdown(ctx)
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.shutdownOTel != nil {
		_ = a.shutdownOTel(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
