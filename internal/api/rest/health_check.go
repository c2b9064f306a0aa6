package rest

import (
	"context"
	"time"
)

// HealthChecker checks the health of a dependency
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckerFunc adapts a named function to the HealthChecker interface.
type HealthCheckerFunc struct {
	CheckerName string
	Fn          func(ctx context.Context) error
}

func (f HealthCheckerFunc) Name() string                    { return f.CheckerName }
func (f HealthCheckerFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthReport is the aggregate health of the service and its dependencies.
type HealthReport struct {
	Healthy bool                   `json:"healthy"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ResponseTime string `json:"response_time"`
}

// HealthService runs registered dependency checks.
type HealthService struct {
	checkers  []HealthChecker
	timeout   time.Duration
	startTime time.Time
}

// NewHealthService creates a health service with a per-check timeout.
func NewHealthService(timeout time.Duration, checkers ...HealthChecker) *HealthService {
	return &HealthService{
		checkers:  checkers,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Check runs all registered checkers and aggregates their results.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Healthy: true,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Checks:  make(map[string]CheckResult),
	}

	for _, checker := range s.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		start := time.Now()
		err := checker.Check(checkCtx)
		cancel()

		result := CheckResult{
			Status:       "pass",
			ResponseTime: time.Since(start).Round(time.Millisecond).String(),
		}
		if err != nil {
			result.Status = "fail"
			result.Error = err.Error()
			report.Healthy = false
		}
		report.Checks[checker.Name()] = result
	}

	return report
}
