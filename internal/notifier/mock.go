package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendStartupSummaryFunc    func(lines []string, dryRun bool) error
	SendMatchNotificationFunc func(payload MatchPayload, dryRun bool) error
	SendLeaderboardFunc       func(standings []tracker.Standing, dryRun bool) error

	// Call records
	SendStartupSummaryCalls    [][]string
	SendMatchNotificationCalls []MatchPayload
	SendLeaderboardCalls       [][]tracker.Standing
	// Order records method names in call order.
	Order []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStartupSummaryCalls = nil
	m.SendMatchNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.Order = nil
}

func (m *Mock) SendStartupSummary(ctx context.Context, lines []string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStartupSummaryCalls = append(m.SendStartupSummaryCalls, lines)
	m.Order = append(m.Order, "SendStartupSummary")
	if m.SendStartupSummaryFunc != nil {
		return m.SendStartupSummaryFunc(lines, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchNotification(ctx context.Context, payload MatchPayload, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchNotificationCalls = append(m.SendMatchNotificationCalls, payload)
	m.Order = append(m.Order, "SendMatchNotification")
	if m.SendMatchNotificationFunc != nil {
		return m.SendMatchNotificationFunc(payload, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(ctx context.Context, standings []tracker.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, standings)
	m.Order = append(m.Order, "SendLeaderboard")
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(standings, dryRun)
	}
	return nil
}

// Calls returns a copy of the call order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Order...)
}
