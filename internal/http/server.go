package http

import (
	"net/http"

	"github.com/mauv0809/soloq-tracker/internal/metrics"
)

func NewServer(roster Roster, runner CycleRunner, metricsSvc metrics.Metrics, metricsHandler http.Handler) *Server {
	server := &Server{
		Roster:         roster,
		Scheduler:      runner,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/check", Chain(s.CheckHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
