package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-governor/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-governor/internal/http/middleware"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// RouterConfig wires the operational endpoints of the worker. The
// interactive API belongs to the embedding tutoring service.
type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	HealthHandler  *httpH.HealthHandler
	MetricsHandler nethttp.Handler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	name := cfg.ServiceName
	if name == "" {
		name = "neurobridge-governor"
	}
	r.Use(otelgin.Middleware(name))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	return r
}
