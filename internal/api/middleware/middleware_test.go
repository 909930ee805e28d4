// internal/api/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/metrics"
)

func TestMetrics_RecordsRequest(t *testing.T) {
	reg := metrics.NewRegistry()

	handler := Metrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/api/stocks", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("middleware altered status: %d", w.Code)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if strings.Contains(f.GetName(), "http_requests_total") {
			found = true
		}
	}
	if !found {
		t.Error("request counter not registered after a request")
	}
}

func TestMetrics_NilRegistryPassesThrough(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestMetrics_InFlightReturnsToZero(t *testing.T) {
	reg := metrics.NewRegistry()

	handler := Metrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	families, _ := reg.Gather()
	for _, f := range families {
		if strings.Contains(f.GetName(), "http_requests_in_flight") {
			if v := f.GetMetric()[0].GetGauge().GetValue(); v != 0 {
				t.Errorf("in-flight gauge = %f after request completed", v)
			}
		}
	}
}

func TestRequestLogger_PreservesResponse(t *testing.T) {
	handler := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/stocks", nil))

	if w.Code != http.StatusCreated || w.Body.String() != "ok" {
		t.Errorf("response altered: %d %q", w.Code, w.Body.String())
	}
}
