package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerExposesRegisteredCounters(t *testing.T) {
	m := New()
	m.MessagesIngested.Inc()
	m.TradesExecuted.Add(3)
	m.InQOccupancy.Set(7)
	m.OutQOccupancy.Set(2)
	m.RestingOrders.Set(5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.Contains(t, body, "vortex_messages_ingested_total 1")
	require.Contains(t, body, "vortex_trades_executed_total 3")
	require.Contains(t, body, "vortex_inq_occupancy 7")
	require.Contains(t, body, "vortex_outq_occupancy 2")
	require.Contains(t, body, "vortex_resting_orders 5")
}
