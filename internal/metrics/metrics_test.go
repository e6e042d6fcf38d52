package metrics_test

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"strangerlink/backend/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ConcurrentInc(t *testing.T) {
	m := metrics.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Inc(metrics.MatchesMade)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), m.Get(metrics.MatchesMade))
	assert.Equal(t, uint64(0), m.Get(metrics.RoomsClosed))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() { m.Inc(metrics.Relayed) })
	assert.Equal(t, uint64(0), m.Get(metrics.Relayed))
	assert.Empty(t, m.Snapshot())
}

func TestPrometheusHandler(t *testing.T) {
	m := metrics.New()
	m.Add(metrics.Relayed, 3)
	m.Inc(metrics.MatchesMade)

	h := metrics.PrometheusHandler(m, func() map[string]int {
		return map[string]int{"online": 5, "waiting": 1}
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `strangerlink_events_total{event="relay_delivered"} 3`)
	assert.Contains(t, string(body), `strangerlink_events_total{event="matches_made"} 1`)
	assert.Contains(t, string(body), `strangerlink_state{name="online"} 5`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestPrometheusHandler_NilMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	metrics.PrometheusHandler(nil, nil).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 500, rec.Code)
}
