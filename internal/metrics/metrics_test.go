package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSum_CountsBySource(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveSum("cache")
	m.ObserveSum("computed")
	m.ObserveSum("computed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sums.WithLabelValues("cache")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sums.WithLabelValues("computed")))
}

func TestObserveRequest_AndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodGet, "/api/sum/{a}/{b}", http.StatusOK, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/sum/{a}/{b}", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "calcapi_http_request_duration_seconds")
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSum("cache")
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
