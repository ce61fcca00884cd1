package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"towerdeck/pkg/logger"
)

func TestLoggingMiddlewareCarriesRequestID(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := &logger.Logger{Logger: zap.New(core)}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware(l))
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, "req-123", w.Header().Get("X-Request-Id"))

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-123", entries[0].ContextMap()["request_id"],
		"access log line carries the request id from the context")
}

func TestLoggingMiddlewareGeneratesRequestIDWhenAbsent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := &logger.Logger{Logger: zap.New(core)}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware(l))
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	generated := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, generated)

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, generated, entries[0].ContextMap()["request_id"])
}
