package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/monkeyapp/internal/metrics"
)

func TestCollector_RecordsOperations(t *testing.T) {
	c := metrics.NewCollector("monkeyapp_test")

	c.RecordOperation(metrics.OpAddFriend, metrics.OutcomeSuccess)
	c.RecordOperation(metrics.OpAddFriend, metrics.OutcomeSuccess)
	c.RecordOperation(metrics.OpRemoveFriend, metrics.OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Operations.WithLabelValues(metrics.OpAddFriend, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues(metrics.OpRemoveFriend, metrics.OutcomeRejected)))
}

func TestCollector_ObserveHTTPAndExpose(t *testing.T) {
	c := metrics.NewCollector("monkeyapp_test")
	c.ObserveHTTP(http.MethodGet, "/monkeys", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/monkeys", "200")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `monkeyapp_test_http_requests_total{method="GET",route="/monkeys",status="200"} 1`)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector

	assert.NotPanics(t, func() {
		c.RecordOperation(metrics.OpAddFriend, metrics.OutcomeFailure)
		c.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.Nil(t, c.Registry())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
