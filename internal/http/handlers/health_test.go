package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h *HealthHandler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReady(t *testing.T) {
	ok := NewHealthHandler(map[string]Pinger{"db": pingFunc(func(context.Context) error { return nil })})
	if w := serve(ok, "/readyz"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"ok"`) {
		t.Fatalf("unexpected ready response %d %s", w.Code, w.Body.String())
	}

	down := NewHealthHandler(map[string]Pinger{"db": pingFunc(func(context.Context) error { return errors.New("refused") })})
	w := serve(down, "/readyz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "dependency_unavailable") {
		t.Fatalf("unexpected not-ready response %d %s", w.Code, w.Body.String())
	}
	if w := serve(down, "/healthcheck"); w.Code != http.StatusOK {
		t.Fatalf("liveness should not depend on dependencies, got %d", w.Code)
	}
}
