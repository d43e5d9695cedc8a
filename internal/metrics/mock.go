package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	cycles            int
	cycleTimeouts     int
	cycleDurations    []float64
	alerts            int
	gatewayErrors     map[string]int
	notifSent         int
	notifFailed       int
	stateSaveFailures int
	trackedPlayers    int
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		cycleDurations: make([]float64, 0),
		gatewayErrors:  make(map[string]int),
	}
}

func (m *Mock) IncCycles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
}

func (m *Mock) IncCycleTimeouts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleTimeouts++
}

func (m *Mock) ObserveCycleDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleDurations = append(m.cycleDurations, duration)
}

func (m *Mock) AddAlerts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts += n
}

func (m *Mock) IncGatewayErrors(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatewayErrors[operation]++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) IncStateSaveFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateSaveFailures++
}

func (m *Mock) SetTrackedPlayers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackedPlayers = n
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Cycles returns the number of times IncCycles was called.
func (m *Mock) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// CycleTimeouts returns the number of times IncCycleTimeouts was called.
func (m *Mock) CycleTimeouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycleTimeouts
}

// CycleDurations returns the number of observed cycle durations.
func (m *Mock) CycleDurations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cycleDurations)
}

// Alerts returns the total passed to AddAlerts.
func (m *Mock) Alerts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alerts
}

// GatewayErrors returns the number of gateway errors recorded for an operation.
func (m *Mock) GatewayErrors(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gatewayErrors[operation]
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

// StateSaveFailures returns the number of times IncStateSaveFailures was called.
func (m *Mock) StateSaveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateSaveFailures
}

// TrackedPlayers returns the last value passed to SetTrackedPlayers.
func (m *Mock) TrackedPlayers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackedPlayers
}
