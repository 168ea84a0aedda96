package observability

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus int

const (
	HealthStatusUp HealthStatus = iota
	HealthStatusDown
)

var statusNames = map[HealthStatus]string{
	HealthStatusUp:   "UP",
	HealthStatusDown: "DOWN",
}

func (s HealthStatus) String() string {
	return statusNames[s]
}

// HealthCheck represents a health check
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) HealthResult
}

// HealthResult represents the result of a health check
type HealthResult struct {
	Status   HealthStatus
	Message  string
	Details  map[string]interface{}
	Duration time.Duration
}

// DatabaseHealthCheck runs a version probe against the warehouse
type DatabaseHealthCheck struct {
	name    string
	timeout time.Duration
	probe   func(ctx context.Context) (string, error)
}

// NewDatabaseHealthCheck creates a check around probe, which returns the
// server version.
func NewDatabaseHealthCheck(name string, timeout time.Duration, probe func(ctx context.Context) (string, error)) *DatabaseHealthCheck {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DatabaseHealthCheck{name: name, timeout: timeout, probe: probe}
}

// Name returns the check name
func (d *DatabaseHealthCheck) Name() string {
	return d.name
}

// Check performs the database health check
func (d *DatabaseHealthCheck) Check(ctx context.Context) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	version, err := d.probe(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return HealthResult{
			Status:   HealthStatusDown,
			Message:  fmt.Sprintf("Database connection failed: %v", err),
			Details:  map[string]interface{}{"error": err.Error()},
			Duration: elapsed,
		}
	}

	return HealthResult{
		Status:   HealthStatusUp,
		Message:  "Database connection successful",
		Details:  map[string]interface{}{"version": version},
		Duration: elapsed,
	}
}
