package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

func TestTraceContextEchoesHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.NewNop()))
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetString(keyRequestID)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "req-1" || w.Header().Get(headerRequestID) != "req-1" {
		t.Fatalf("request id not propagated: seen=%q header=%q", seen, w.Header().Get(headerRequestID))
	}
	if w.Header().Get(headerTraceID) == "" {
		t.Fatalf("expected generated trace id")
	}
}
