package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/metrics"
)

func newMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	return metrics.NewWithRegistry(reg, reg)
}

func Test_Metrics_Observe_Counts_By_Result(t *testing.T) {
	t.Parallel()

	m := newMetrics()
	m.Observe("daily", "create", time.Now(), nil)
	m.Observe("daily", "create", time.Now(), nil)
	m.Observe("daily", "create", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("daily", "create", metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("daily", "create", metrics.ResultError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func Test_Metrics_Connection_State(t *testing.T) {
	t.Parallel()

	m := newMetrics()
	m.SetConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBConnected))
	m.SetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBConnected))

	m.Reconnected(true)
	m.Reconnected(false)
	m.Reconnected(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reconnects.WithLabelValues(metrics.ResultError)))
}

func Test_Metrics_Nil_Receiver_Is_Noop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Observe("daily", "list", time.Now(), nil)
		m.SetConnected(true)
		m.Reconnected(true)
		m.Command("today")
	})
}

func Test_Metrics_Handler_Exposes_Collectors(t *testing.T) {
	t.Parallel()

	m := newMetrics()
	m.Command("today")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `todowidget_telegram_commands_total{command="today"} 1`), body)
	assert.True(t, strings.Contains(body, "todowidget_db_connected 0"), body)
}
