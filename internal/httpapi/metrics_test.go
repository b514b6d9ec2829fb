package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", "GET", "418"))
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", "GET", "418")); got != before+1 {
		t.Fatalf("counter=%v, want %v", got, before+1)
	}
	if !bytes.Contains(scrape(t), []byte("medspresso_http_requests_total")) {
		t.Fatalf("expected medspresso_http_requests_total in metrics")
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{daemonModels: []string{"a"}})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/daemon/models", "GET", "200"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/daemon/models", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/daemon/models", "GET", "200")); got != before+1 {
		t.Fatalf("counter=%v, want %v", got, before+1)
	}
}

func TestMetricsMiddleware_KeepsFlusher(t *testing.T) {
	var flushed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if ok {
			f.Flush()
			flushed = true
		}
	})
	MetricsMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/f", nil))
	if !flushed {
		t.Fatalf("wrapped writer lost http.Flusher")
	}
}

func TestObserveExtraction(t *testing.T) {
	okBefore := testutil.ToFloat64(extractionsTotal.WithLabelValues("vitals", "ok"))
	errBefore := testutil.ToFloat64(extractionsTotal.WithLabelValues("unknown", "error"))
	observeExtraction("vitals", nil)
	observeExtraction("", errors.New("boom"))
	if got := testutil.ToFloat64(extractionsTotal.WithLabelValues("vitals", "ok")); got != okBefore+1 {
		t.Fatalf("ok=%v", got)
	}
	if got := testutil.ToFloat64(extractionsTotal.WithLabelValues("unknown", "error")); got != errBefore+1 {
		t.Fatalf("error=%v", got)
	}
}
