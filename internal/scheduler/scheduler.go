package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/notifier"
	"github.com/mauv0809/soloq-tracker/internal/pubsub"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

// Scheduler runs poll cycles one at a time with a fixed sleep between them.
type Scheduler struct {
	detector   Detector
	dispatcher Dispatcher
	notifier   notifier.Notifier
	pubsub     pubsub.PubSubClient
	metrics    metrics.Metrics
	opts       Options

	// cycleMu guarantees at most one cycle in flight.
	cycleMu sync.Mutex
	stateMu sync.RWMutex
	state   State
}

// New creates a Scheduler in the Idle state.
func New(detector Detector, dispatcher Dispatcher, n notifier.Notifier, ps pubsub.PubSubClient, m metrics.Metrics, opts Options) *Scheduler {
	return &Scheduler{
		detector:   detector,
		dispatcher: dispatcher,
		notifier:   n,
		pubsub:     ps,
		metrics:    m,
		opts:       opts,
		state:      StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != state {
		log.Debug("Scheduler state change", "from", s.state, "to", state)
	}
	s.state = state
}

// Run executes cycles until ctx is cancelled, or exactly once in run-once mode.
// It always leaves the scheduler Stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.setState(StateStopped)
	log.Info("Scheduler started", "interval", s.opts.Interval, "cycleTimeout", s.opts.CycleTimeout, "runOnce", s.opts.RunOnce)

	for {
		s.cycleMu.Lock()
		s.runCycle(ctx, s.opts.DryRun)
		s.cycleMu.Unlock()

		if s.opts.RunOnce {
			log.Info("Run-once mode, stopping after a single cycle")
			return nil
		}

		s.setState(StateSleeping)
		timer := time.NewTimer(s.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("Scheduler stopping", "reason", ctx.Err())
			return nil
		case <-timer.C:
		}
	}
}

// Trigger runs one cycle immediately unless a cycle is already running.
// dryRun only widens the configured mode; a dry-run scheduler never sends.
func (s *Scheduler) Trigger(ctx context.Context, dryRun bool) (CycleResult, error) {
	if !s.cycleMu.TryLock() {
		return CycleResult{}, ErrCycleInProgress
	}
	defer s.cycleMu.Unlock()

	previous := s.State()
	result := s.runCycle(ctx, dryRun || s.opts.DryRun)
	if previous != StateRunning {
		s.setState(previous)
	}
	return result, nil
}

// runCycle detects new matches under the cycle timeout, then delivers alerts and
// refreshes the leaderboard. A timed out cycle delivers nothing.
func (s *Scheduler) runCycle(ctx context.Context, dryRun bool) CycleResult {
	s.setState(StateRunning)
	result := CycleResult{CycleID: uuid.NewString()}
	logger := log.With("cycleID", result.CycleID)
	s.metrics.IncCycles()

	start := time.Now()
	alerts, err := s.detect(ctx)
	result.Duration = time.Since(start)
	s.metrics.ObserveCycleDuration(result.Duration.Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.TimedOut = true
			s.metrics.IncCycleTimeouts()
			logger.Error("Poll cycle timed out, discarding cycle", "timeout", s.opts.CycleTimeout)
		} else {
			logger.Warn("Poll cycle aborted", "error", err)
		}
		return result
	}

	result.Alerts = len(alerts)
	if len(alerts) == 0 {
		logger.Debug("No new matches", "duration_ms", result.Duration.Milliseconds())
		return result
	}
	logger.Info("New matches detected", "alerts", len(alerts), "duration_ms", result.Duration.Milliseconds())

	result.Delivered = s.dispatcher.Dispatch(ctx, alerts, dryRun)

	for _, alert := range alerts {
		event := pubsub.NewMatchEvent(result.CycleID, alert)
		if err := s.pubsub.SendMessage(ctx, pubsub.EventMatchDetected, event); err != nil {
			logger.Warn("Failed to publish match event", "matchID", event.MatchID, "error", err)
		}
	}

	if err := s.notifier.SendLeaderboard(ctx, s.detector.Standings(), dryRun); err != nil {
		logger.Error("Failed to refresh leaderboard", "error", err)
	}
	return result
}

// detect runs match detection under the cycle timeout. The detector decides whether the
// cycle commits: an error means nothing was committed, and a nil error means the alerts
// were committed and must be delivered even if the deadline passed while it was saving.
func (s *Scheduler) detect(ctx context.Context) ([]tracker.MatchAlert, error) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.opts.CycleTimeout)
	defer cancel()

	start := time.Now()
	alerts, err := s.detector.CheckForNewMatches(cycleCtx)
	if err == nil && cycleCtx.Err() != nil {
		log.Warn("Detection finished after the cycle deadline, delivering committed alerts",
			"alerts", len(alerts), "overrun_ms", (time.Since(start) - s.opts.CycleTimeout).Milliseconds())
	}
	return alerts, err
}
