package notifier

import (
	"context"

	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific chat platform (Discord, Slack).
type Notifier interface {
	// Posted once after startup with one line per tracked player.
	SendStartupSummary(ctx context.Context, lines []string, dryRun bool) error
	// One call per detected match.
	SendMatchNotification(ctx context.Context, payload MatchPayload, dryRun bool) error
	// Posted after a cycle that produced alerts.
	SendLeaderboard(ctx context.Context, standings []tracker.Standing, dryRun bool) error
}
