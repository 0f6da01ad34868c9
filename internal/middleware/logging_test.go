package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aula-labs/tutorbot/internal/middleware"
	"github.com/aula-labs/tutorbot/pkg/logger"
)

func TestLoggingAssignsCorrelationID(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	middleware.Logging(logger.NewNop())(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if captured == "" {
		t.Fatal("correlation ID missing from request context")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != captured {
		t.Errorf("response header = %q, context = %q", got, captured)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLoggingPreservesIncomingCorrelationID(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetCorrelationID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "upstream-id")

	rec := httptest.NewRecorder()
	middleware.Logging(logger.NewNop())(inner).ServeHTTP(rec, req)

	if captured != "upstream-id" {
		t.Errorf("correlation ID = %q, want the incoming value", captured)
	}
}

func TestGetCorrelationIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := middleware.GetCorrelationID(req.Context()); got != "" {
		t.Errorf("GetCorrelationID on bare context = %q, want empty", got)
	}
}
