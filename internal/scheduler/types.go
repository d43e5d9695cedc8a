package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

// ErrCycleInProgress is returned by Trigger when a cycle is already running.
var ErrCycleInProgress = errors.New("a poll cycle is already in progress")

// State is the scheduler's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Detector is the part of the tracker the scheduler drives.
type Detector interface {
	CheckForNewMatches(ctx context.Context) ([]tracker.MatchAlert, error)
	Standings() []tracker.Standing
}

// Dispatcher delivers alerts and reports how many were delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []tracker.MatchAlert, dryRun bool) int
}

// Options configures a Scheduler.
type Options struct {
	Interval     time.Duration
	CycleTimeout time.Duration
	RunOnce      bool
	DryRun       bool
}

// CycleResult summarises one poll cycle.
type CycleResult struct {
	CycleID   string        `json:"cycle_id"`
	Alerts    int           `json:"alerts"`
	Delivered int           `json:"delivered"`
	TimedOut  bool          `json:"timed_out"`
	Duration  time.Duration `json:"duration"`
}
