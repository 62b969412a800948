// Package health runs named liveness checks against a node's own
// collaborators (routing table, inbox, transport) with per-check
// timeouts and short result caching, and reports overall status.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperborea-go/hyperborea/internal/logger"
)

// Status is the outcome of one or more health checks.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of a single named check.
type CheckResult struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Check is a single named health check.
type Check func(ctx context.Context) error

// DegradedError marks a check failure as a warning rather than an
// outage: Check reports StatusDegraded instead of StatusUnhealthy for
// any error satisfying errors.As into this type.
type DegradedError struct {
	Detail string
}

func (e *DegradedError) Error() string { return e.Detail }

// Degraded wraps a check failure as a degraded (non-fatal) condition.
func Degraded(detail string) error {
	return &DegradedError{Detail: detail}
}

// Checker runs and caches the results of a set of named checks.
type Checker struct {
	checks   map[string]Check
	timeout  time.Duration
	mu       sync.RWMutex
	logger   logger.Logger
	cacheTTL time.Duration
	cache    map[string]*cachedResult
}

type cachedResult struct {
	result    *CheckResult
	expiresAt time.Time
}

// NewChecker builds a Checker. timeout bounds how long any one check
// may run; zero defaults to 5 seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Checker{
		checks:   make(map[string]Check),
		timeout:  timeout,
		logger:   logger.GetDefaultLogger(),
		cacheTTL: 10 * time.Second,
		cache:    make(map[string]*cachedResult),
	}
}

// SetLogger overrides the checker's logger.
func (h *Checker) SetLogger(l logger.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = l
}

// SetCacheTTL overrides how long a check result is reused before the
// next call to Check re-runs it.
func (h *Checker) SetCacheTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheTTL = ttl
}

// Register adds a named check.
func (h *Checker) Register(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks[name] = check
	h.logger.Info("health check registered", logger.String("name", name))
}

// Unregister removes a named check.
func (h *Checker) Unregister(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.checks, name)
	delete(h.cache, name)
}

// Check runs (or returns the cached result of) a single named check.
func (h *Checker) Check(ctx context.Context, name string) (*CheckResult, error) {
	h.mu.RLock()
	check, exists := h.checks[name]
	h.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("health check not found: %s", name)
	}

	if cached := h.getCachedResult(name); cached != nil {
		return cached, nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := check(checkCtx)
	duration := time.Since(start)

	result := &CheckResult{
		Name:      name,
		Timestamp: time.Now(),
		Duration:  duration,
	}

	if err != nil {
		var degraded *DegradedError
		if errors.As(err, &degraded) {
			result.Status = StatusDegraded
		} else {
			result.Status = StatusUnhealthy
		}
		result.Message = err.Error()
		h.logger.Warn("health check failed",
			logger.String("name", name),
			logger.Error(err),
			logger.Duration("duration", duration),
		)
	} else {
		result.Status = StatusHealthy
	}

	h.cacheResult(name, result)
	return result, nil
}

// CheckAll runs every registered check concurrently.
func (h *Checker) CheckAll(ctx context.Context) map[string]*CheckResult {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()

	results := make(map[string]*CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, name := range names {
		wg.Add(1)
		go func(checkName string) {
			defer wg.Done()

			result, err := h.Check(ctx, checkName)
			if err != nil {
				result = &CheckResult{
					Name:      checkName,
					Status:    StatusUnhealthy,
					Message:   fmt.Sprintf("check failed: %v", err),
					Timestamp: time.Now(),
				}
			}

			mu.Lock()
			results[checkName] = result
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return results
}

// OverallStatus reduces every registered check's result to one Status.
func (h *Checker) OverallStatus(ctx context.Context) Status {
	return overallStatus(h.CheckAll(ctx))
}

func overallStatus(results map[string]*CheckResult) Status {
	if len(results) == 0 {
		return StatusHealthy
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *Checker) getCachedResult(name string) *CheckResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cached, exists := h.cache[name]
	if !exists || time.Now().After(cached.expiresAt) {
		return nil
	}
	return cached.result
}

func (h *Checker) cacheResult(name string, result *CheckResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cache[name] = &cachedResult{
		result:    result,
		expiresAt: time.Now().Add(h.cacheTTL),
	}
}

// SystemHealth is the full report returned by an HTTP health endpoint.
type SystemHealth struct {
	Status    Status                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]*CheckResult `json:"checks"`
}

// Report runs every check and summarizes the result.
func (h *Checker) Report(ctx context.Context) *SystemHealth {
	checks := h.CheckAll(ctx)
	return &SystemHealth{
		Status:    overallStatus(checks),
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// RouterCapacityCheck reports degraded once size reaches warnAt
// entries and unhealthy once it reaches capacity.
func RouterCapacityCheck(size func() int, capacity int, warnAt int) Check {
	return func(ctx context.Context) error {
		n := size()
		if n >= capacity {
			return fmt.Errorf("routing table at capacity: %d/%d entries", n, capacity)
		}
		if n >= warnAt {
			return Degraded(fmt.Sprintf("routing table nearing capacity: %d/%d entries", n, capacity))
		}
		return nil
	}
}

// InboxCapacityCheck reports unhealthy once any recipient's queue
// reaches its per-recipient cap.
func InboxCapacityCheck(fullRecipients func() int) Check {
	return func(ctx context.Context) error {
		if n := fullRecipients(); n > 0 {
			return fmt.Errorf("%d recipient inbox(es) at capacity", n)
		}
		return nil
	}
}

// TransportReachabilityCheck verifies a transport can still reach
// address (typically the node's own public address, as a smoke test
// that inbound connections are getting through).
func TransportReachabilityCheck(ping func(context.Context) error) Check {
	return func(ctx context.Context) error {
		if ping == nil {
			return fmt.Errorf("transport reachability checker not configured")
		}
		return ping(ctx)
	}
}
