package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperborea-go/hyperborea/health"
)

func TestCheckReturnsHealthyOnSuccess(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("ok", func(ctx context.Context) error { return nil })

	result, err := checker.Check(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, result.Status)
}

func TestCheckReturnsUnhealthyOnError(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("broken", func(ctx context.Context) error { return errors.New("boom") })

	result, err := checker.Check(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, result.Status)
	assert.Equal(t, "boom", result.Message)
}

func TestCheckUnknownNameErrors(t *testing.T) {
	checker := health.NewChecker(time.Second)
	_, err := checker.Check(context.Background(), "missing")
	assert.Error(t, err)
}

func TestOverallStatusReflectsWorstCheck(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("good", func(ctx context.Context) error { return nil })
	checker.Register("bad", func(ctx context.Context) error { return errors.New("down") })

	assert.Equal(t, health.StatusUnhealthy, checker.OverallStatus(context.Background()))
}

func TestOverallStatusHealthyWithNoChecks(t *testing.T) {
	checker := health.NewChecker(time.Second)
	assert.Equal(t, health.StatusHealthy, checker.OverallStatus(context.Background()))
}

func TestRouterCapacityCheckDegradesNearCapacity(t *testing.T) {
	check := health.RouterCapacityCheck(func() int { return 95 }, 100, 90)
	assert.Error(t, check(context.Background()))

	check = health.RouterCapacityCheck(func() int { return 10 }, 100, 90)
	assert.NoError(t, check(context.Background()))
}

func TestCheckReportsDegradedSeparatelyFromUnhealthy(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("router", health.RouterCapacityCheck(func() int { return 95 }, 100, 90))

	result, err := checker.Check(context.Background(), "router")
	require.NoError(t, err)
	assert.Equal(t, health.StatusDegraded, result.Status)

	checker.Unregister("router")
	checker.Register("router", health.RouterCapacityCheck(func() int { return 100 }, 100, 90))
	result, err = checker.Check(context.Background(), "router")
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, result.Status)
}

func TestOverallStatusDegradedWhenNoUnhealthyChecks(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("good", func(ctx context.Context) error { return nil })
	checker.Register("warn", health.RouterCapacityCheck(func() int { return 95 }, 100, 90))

	assert.Equal(t, health.StatusDegraded, checker.OverallStatus(context.Background()))
}

func TestInboxCapacityCheckFlagsFullRecipients(t *testing.T) {
	check := health.InboxCapacityCheck(func() int { return 2 })
	assert.Error(t, check(context.Background()))

	check = health.InboxCapacityCheck(func() int { return 0 })
	assert.NoError(t, check(context.Background()))
}

func TestReportAggregatesAllChecks(t *testing.T) {
	checker := health.NewChecker(time.Second)
	checker.Register("a", func(ctx context.Context) error { return nil })
	checker.Register("b", func(ctx context.Context) error { return nil })

	report := checker.Report(context.Background())
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Len(t, report.Checks, 2)
}
