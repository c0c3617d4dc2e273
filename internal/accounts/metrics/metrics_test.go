package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/internal/accounts/metrics"
)

func TestRecordAuth(t *testing.T) {
	m := metrics.New()
	m.RecordAuth("login", nil)
	m.RecordAuth("login", errors.New("nope"))
	m.RecordAuth("login", errors.New("nope"))

	require.InDelta(t, 1, testutil.ToFloat64(m.AuthOperations.WithLabelValues("login", metrics.OutcomeSuccess)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.AuthOperations.WithLabelValues("login", metrics.OutcomeFailure)), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.RecordAuth("signup", nil)
		m.RecordCodeIssued()
		m.RecordMailDelivery(metrics.OutcomeSuccess, time.Second)
	})

	h := m.Middleware("GET /x")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := metrics.New()
	h := m.Middleware("GET /api/auth/validate")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil))

	require.InDelta(t, 1, testutil.ToFloat64(
		m.HTTPRequests.WithLabelValues(http.MethodGet, "GET /api/auth/validate", "401")), 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "accounts_http_requests_total"))
}
