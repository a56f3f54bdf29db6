package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCounters(t *testing.T) {
	before := counterValue(t, bookingConflicts.WithLabelValues("CREATE"))
	IncBookingConflict("CREATE")
	assert.Equal(t, before+1, counterValue(t, bookingConflicts.WithLabelValues("CREATE")))

	before = counterValue(t, bookingWrites.WithLabelValues("DELETE", OutcomeSuccess))
	IncBookingWrite("DELETE", OutcomeSuccess)
	assert.Equal(t, before+1, counterValue(t, bookingWrites.WithLabelValues("DELETE", OutcomeSuccess)))
}

func TestHandlerExposesFurnaceMetrics(t *testing.T) {
	Register()
	ObserveHTTPRequest(http.MethodGet, "/api/v1/bookings", "200", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "furnace_http_requests_total"))
}
