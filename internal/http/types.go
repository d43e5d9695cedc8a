package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/scheduler"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

// Roster exposes the tracker's read-only views.
type Roster interface {
	Players() []state.TrackedPlayer
	Standings() []tracker.Standing
}

// CycleRunner runs on-demand poll cycles.
type CycleRunner interface {
	Trigger(ctx context.Context, dryRun bool) (scheduler.CycleResult, error)
	State() scheduler.State
}

type Server struct {
	Roster         Roster
	Scheduler      CycleRunner
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Router         *http.ServeMux
}

type healthResponse struct {
	Status    string `json:"status"`
	Scheduler string `json:"scheduler"`
	Players   int    `json:"players"`
}

type checkResponse struct {
	CycleID    string `json:"cycle_id"`
	Alerts     int    `json:"alerts"`
	Delivered  int    `json:"delivered"`
	TimedOut   bool   `json:"timed_out"`
	DurationMS int64  `json:"duration_ms"`
	DryRun     bool   `json:"dry_run"`
}
