package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Cycles             prometheus.Counter
	CycleTimeouts      prometheus.Counter
	CycleDuration      prometheus.Histogram
	Alerts             prometheus.Counter
	GatewayErrors      *prometheus.CounterVec
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StateSaveFailures  prometheus.Counter
	TrackedPlayers     prometheus.Gauge
	StartupTimeSeconds prometheus.Gauge
}
