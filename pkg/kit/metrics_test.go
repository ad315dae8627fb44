package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	var during float64
	h := m.Middleware("catalog", func(*http.Request) string { return "/api/items" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			during = testutil.ToFloat64(m.InFlight.WithLabelValues("catalog"))
			w.WriteHeader(http.StatusCreated)
		}),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items", nil))

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight.WithLabelValues("catalog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("catalog", "POST", "/api/items", "201")))
}
