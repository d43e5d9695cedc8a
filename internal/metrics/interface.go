package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCycles()
	IncCycleTimeouts()
	ObserveCycleDuration(duration float64)
	AddAlerts(n int)
	IncGatewayErrors(operation string)
	IncNotifSent()
	IncNotifFailed()
	IncStateSaveFailures()
	SetTrackedPlayers(n int)
	SetStartupTime(duration float64)
}
