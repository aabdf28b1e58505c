package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestRouter_RequestLogCarriesIncomingTraceID(t *testing.T) {
	prevDefault := slog.Default()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	t.Cleanup(func() {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
		slog.SetDefault(prevDefault)
	})

	var buf bytes.Buffer
	h := NewRouter(RouterConfig{
		Checkout:       NewCheckoutHandler(&MockCheckoutService{}, 5*time.Second),
		JWTSecret:      testSecret,
		RequestTimeout: 5 * time.Second,
		Logger:         logger.New(logger.Options{Service: "checkout-test", Output: &buf}),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		if e["msg"] == "http request" {
			entry = e
		}
	}
	require.NotNil(t, entry, "request log line missing: %s", buf.String())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "/health", entry["path"])
}

func TestRouter_NoTraceparentNoTraceID(t *testing.T) {
	prevDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prevDefault) })

	var buf bytes.Buffer
	h := NewRouter(RouterConfig{
		Checkout: NewCheckoutHandler(&MockCheckoutService{}, 5*time.Second),
		Logger:   logger.New(logger.Options{Output: &buf}),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"http request"`)
	assert.NotContains(t, buf.String(), "trace_id")
}
