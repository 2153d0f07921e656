// Package reset implements the daily counter reset: once per local
// midnight, every worker's submission counters are zeroed so a new
// day's quota starts fresh. A worker with a pending special task keeps
// submissions_today and today_profit and only has sets_today zeroed;
// every worker's salary is zeroed.
package reset

import (
	"context"
	"log"
	"time"

	"github.com/reviewforge/reviewforge/internal/infra/metrics"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// pollInterval bounds how long a due reset can go unnoticed after local
// midnight while Run is polling.
const pollInterval = 30 * time.Second

// Service runs the daily reset pass.
type Service struct {
	db *sqlite.DB
}

// NewService creates a reset service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Run polls for a due reset in the background. Call in a goroutine;
// returns when ctx is cancelled. Incoming requests do not trigger a
// check; besides this poller, CheckAndReset runs only from the
// reset-now command and the admin reset endpoint.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if err := s.CheckAndReset(ctx); err != nil {
			log.Printf("[reset] check failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CheckAndReset runs the reset pass if local midnight has passed since
// the tracker's last_reset_time. Safe to call from every request's
// middleware chain as well as from the background poller; a reset
// already performed by a concurrent call is a no-op here because the
// whole check-and-reset runs inside one BEGIN IMMEDIATE transaction.
func (s *Service) CheckAndReset(ctx context.Context) error {
	settings, err := s.db.GetSettings(ctx)
	if err != nil {
		return err
	}
	loc := time.UTC
	if settings.Timezone != "" {
		if l, err := time.LoadLocation(settings.Timezone); err == nil {
			loc = l
		}
	}

	start := time.Now()
	ran := false
	err = s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		tracker, err := s.db.GetDailyResetTracker(ctx, tx)
		if err != nil {
			return err
		}

		midnight := startOfLocalDay(time.Now(), loc)
		if !tracker.LastResetTime.Before(midnight) {
			return nil
		}

		keepIDs, err := s.db.ListPendingSpecialUserIDsTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.db.ResetSetsOnlyTx(ctx, tx, keepIDs); err != nil {
			return err
		}
		if err := s.db.ResetDailyCounters(ctx, tx, keepIDs); err != nil {
			return err
		}
		if err := s.db.ZeroAllSalariesTx(ctx, tx); err != nil {
			return err
		}

		tracker.LastResetTime = midnight.UTC()
		ran = true
		return s.db.SaveDailyResetTracker(ctx, tx, tracker)
	})
	if ran {
		metrics.ResetRuns.Inc()
		metrics.ResetDuration.Observe(time.Since(start).Seconds())
	}
	return err
}

func startOfLocalDay(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
