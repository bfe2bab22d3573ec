package pricelog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// purger is the slice of Store the sweeper needs. Defined on the consumer
// side so tests can substitute a fake.
type purger interface {
	Purge(ctx context.Context, days int) (int64, error)
}

// Sweeper deletes price log rows older than the retention window once a day.
//
// The host scheduler analog: the job fires at local midnight, and the ticker
// itself is the only overlap guarantee — a slow purge simply delays the next
// one.
type Sweeper struct {
	store     purger
	retention int
	logger    *slog.Logger

	// now is swapped in tests to pin the schedule math.
	now func() time.Time
}

// NewSweeper creates a retention sweeper. retention <= 0 falls back to
// DefaultRetentionDays.
func NewSweeper(store purger, retention int, logger *slog.Logger) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetentionDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:     store,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks until ctx is canceled. One sweep runs immediately so a
// restart catches up on a missed cycle, then one fires at each local
// midnight. Callers must track the goroutine with a WaitGroup or errgroup.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("retention sweeper started", "retention_days", s.retention)

	s.runOnce(ctx)

	timer := time.NewTimer(time.Until(nextMidnight(s.now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeper stopped")
			return
		case <-timer.C:
			s.runOnce(ctx)
			// Recompute instead of a fixed 24h tick so DST shifts don't
			// drift the schedule away from midnight.
			timer.Reset(time.Until(nextMidnight(s.now())))
		}
	}
}

// runOnce executes a single purge cycle.
func (s *Sweeper) runOnce(ctx context.Context) {
	runID := uuid.New()

	removed, err := s.store.Purge(ctx, s.retention)
	if err != nil {
		s.logger.Warn("retention sweep failed", "run_id", runID, "error", err)
		return
	}

	if removed > 0 {
		s.logger.Info("retention sweep complete", "run_id", runID, "removed", removed)
	} else {
		s.logger.Debug("retention sweep complete", "run_id", runID, "removed", 0)
	}
}

// nextMidnight returns the first midnight strictly after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
