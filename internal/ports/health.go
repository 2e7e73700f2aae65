package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when two checkers register under the
// same name.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker reports one dependency's health. The quote client, the
// publisher, and the asset store implement it and register at startup.
//
//	func (s *LocalStore) Name() string { return "assets" }
//
//	func (s *LocalStore) Check(ctx context.Context) error {
//	    return s.stat(ctx, s.backgroundPath)
//	}
type HealthChecker interface {
	// Name uniquely identifies the check in readiness responses.
	Name() string

	// Check returns nil when the component is healthy. Implementations
	// honor context cancellation and deadlines.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates the registered checks for the readiness
// endpoint.
type HealthRegistry interface {
	// Register adds a checker; duplicate names are rejected.
	Register(checker HealthChecker) error

	// CheckAll runs every check concurrently under ctx and aggregates
	// the results.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the overall health verdict.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult aggregates every check's outcome.
type HealthResult struct {
	Status HealthStatus `json:"status"`

	// Checks is keyed by checker name.
	Checks map[string]*CheckResult `json:"checks"`

	Timestamp time.Time `json:"timestamp"`
}

// CheckResult is one component's outcome.
type CheckResult struct {
	Status HealthStatus `json:"status"`

	// Message carries the failure detail, empty when healthy.
	Message string `json:"message,omitempty"`

	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is the mutex-guarded HealthRegistry used by the
// service.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds a checker, rejecting duplicate names.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every registered check on its own goroutine and merges
// the outcomes. Any unhealthy check makes the whole result unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult),
		Timestamp: time.Now(),
	}

	if len(checkers) == 0 {
		return result
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Add(1)

		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			duration := time.Since(start)

			checkResult := &CheckResult{
				Status:   HealthStatusHealthy,
				Duration: duration,
			}

			if err != nil {
				checkResult.Status = HealthStatusUnhealthy
				checkResult.Message = err.Error()
			}

			mu.Lock()

			result.Checks[c.Name()] = checkResult
			if checkResult.Status == HealthStatusUnhealthy {
				result.Status = HealthStatusUnhealthy
			}

			mu.Unlock()
		}(checker)
	}

	wg.Wait()

	return result
}
