// Package health provides periodic health checks with auto-recovery.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reviewforge/reviewforge/internal/infra/metrics"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// staleResetThreshold bounds how long the daily reset tracker may go
// without running before the health check flags it.
const staleResetThreshold = 26 * time.Hour

// NewChecker creates a health checker for the sqlite store and the
// daily reset scheduler.
func NewChecker(db *sqlite.DB) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "daily_reset_tracker",
				CheckFn: func(ctx context.Context) error {
					var lastReset time.Time
					err := db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
						tracker, err := db.GetDailyResetTracker(ctx, tx)
						if err != nil {
							return err
						}
						lastReset = tracker.LastResetTime
						return nil
					})
					if err != nil {
						return err
					}
					if time.Since(lastReset) > staleResetThreshold {
						return fmt.Errorf("daily reset has not run since %s", lastReset)
					}
					return nil
				},
			},
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		st := Status{Name: check.Name, CheckedAt: time.Now()}
		if err := check.CheckFn(ctx); err != nil {
			st.Healthy = false
			st.Error = err.Error()
			if check.RecoverFn != nil {
				_ = check.RecoverFn(ctx)
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			st.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = st
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, st := range c.statuses {
		if !st.Healthy {
			return false
		}
	}
	return true
}
