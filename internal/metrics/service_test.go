package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncCycles()
	s.IncCycles()
	s.AddAlerts(3)
	s.IncGatewayErrors("recent matches")
	s.SetTrackedPlayers(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.Cycles))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.Alerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.GatewayErrors.WithLabelValues("recent matches")))
	assert.Equal(t, 5.0, testutil.ToFloat64(s.TrackedPlayers))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncNotifSent()

	server := httptest.NewServer(NewMetricsHandler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "soloq_notifications_sent_total 1")
	assert.Contains(t, string(body), "soloq_poll_cycles_total 0")
}
