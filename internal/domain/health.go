package domain

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// ProviderStatus is the connectivity outcome for one provider.
type ProviderStatus struct {
	ID        string
	ModelName string
	Available bool
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks        []HealthCheck
	Providers     []ProviderStatus
	PriorityOrder []string
	// SelectionTest is the result of resolving a sample request; nil when nothing resolved.
	SelectionTest *CommandResult
}
