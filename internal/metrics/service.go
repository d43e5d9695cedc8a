package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_poll_cycles_total",
			Help: "The total number of poll cycles started.",
		}),
		CycleTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_poll_cycle_timeouts_total",
			Help: "The total number of poll cycles abandoned after exceeding the cycle timeout.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "soloq_poll_cycle_duration_seconds",
			Help:    "The duration of match detection per poll cycle.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_match_alerts_total",
			Help: "The total number of new ranked matches detected.",
		}),
		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soloq_gateway_errors_total",
			Help: "The total number of failed stats provider calls.",
		}, []string{"operation"}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_notifications_sent_total",
			Help: "The total number of chat notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_notifications_failed_total",
			Help: "The total number of chat notifications that failed to send.",
		}),
		StateSaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soloq_state_save_failures_total",
			Help: "The total number of failed attempts to persist tracker state.",
		}),
		TrackedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soloq_tracked_players",
			Help: "The number of players currently tracked.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soloq_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Cycles,
		s.CycleTimeouts,
		s.CycleDuration,
		s.Alerts,
		s.GatewayErrors,
		s.NotifSent,
		s.NotifFailed,
		s.StateSaveFailures,
		s.TrackedPlayers,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCycles() {
	s.Cycles.Inc()
}

func (s *Service) IncCycleTimeouts() {
	s.CycleTimeouts.Inc()
}

func (s *Service) ObserveCycleDuration(duration float64) {
	s.CycleDuration.Observe(duration)
}

func (s *Service) AddAlerts(n int) {
	s.Alerts.Add(float64(n))
}

func (s *Service) IncGatewayErrors(operation string) {
	s.GatewayErrors.WithLabelValues(operation).Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) IncStateSaveFailures() {
	s.StateSaveFailures.Inc()
}

func (s *Service) SetTrackedPlayers(n int) {
	s.TrackedPlayers.Set(float64(n))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
