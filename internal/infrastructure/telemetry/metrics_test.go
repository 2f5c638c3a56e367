package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Contadores(t *testing.T) {
	m := NewMetrics()
	m.ReceiptPosted("posted")
	m.ReceiptPosted("posted")
	m.ReceiptPosted("rejected")
	m.AllocationDone("SMART", false)
	m.AllocationDone("FEFO", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receipts.WithLabelValues("posted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receipts.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("FEFO")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shortages))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("GET", "/api/products", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), MetricHTTPRequestDuration)
	assert.Contains(t, string(body), `route="/api/products"`)
}

func TestInitTracer_SinEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "erp-api", zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "prueba")
	defer span.End()
	assert.NotNil(t, ctx)
}
