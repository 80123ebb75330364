package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gometeo/forecast/internal/model"
)

func TestFetchMetrics_Observe(t *testing.T) {
	m := New()

	m.Observe(model.Outcome{Result: &model.ForecastResult{}, Duration: 20 * time.Millisecond})
	m.Observe(model.Outcome{Reason: model.ReasonNotFound})
	m.Observe(model.Outcome{Reason: model.ReasonNotFound})
	m.Observe(model.Outcome{Reason: model.ReasonNetwork})
	m.Observe(model.Outcome{Result: &model.ForecastResult{}, Stale: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("network_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleTotal))
}

func TestFetchMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe(model.Outcome{Result: &model.ForecastResult{}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gometeo_forecast_fetch_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "gometeo_forecast_fetch_duration_seconds_bucket")
}
