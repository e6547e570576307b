package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

type iceTimeWriter interface {
	ReplaceActive(ctx context.Context, rinkID string, newEvents []models.NormalizedEvent) (models.ReplaceSummary, []models.RecordError, error)
	CountActiveBefore(ctx context.Context, rinkID string, cutoff time.Time) (int, error)
}

// ReconcileService applies a normalized batch to a rink's stored schedule.
// Every successful run soft-deletes the previous active set and inserts
// the new one, then verifies nothing active predates the batch.
type ReconcileService struct {
	iceTimes iceTimeWriter
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(iceTimes iceTimeWriter, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{iceTimes: iceTimes, cache: cache, metrics: metrics, logger: logger}
}

// ReplaceActiveEvents swaps the rink's active events for the new batch.
// Individual insert failures are reported per record, not raised.
func (s *ReconcileService) ReplaceActiveEvents(ctx context.Context, rink *models.Rink, events []models.NormalizedEvent) (models.ReplaceSummary, []models.RecordError, error) {
	summary, recordErrs, err := s.iceTimes.ReplaceActive(ctx, rink.ID, events)
	if err != nil {
		return summary, recordErrs, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule replace failed")
	}

	// Advisory consistency check: with the batch applied, no active row
	// should be dated before the earliest event that just landed.
	if cutoff, ok := earliestDate(events); ok {
		stale, countErr := s.iceTimes.CountActiveBefore(ctx, rink.ID, cutoff)
		if countErr != nil {
			s.logger.Warn("stale row check failed", zap.String("rink", rink.Name), zap.Error(countErr))
		} else {
			summary.StaleActiveRows = stale
			if stale > 0 {
				s.logger.Warn("active rows predate the new batch",
					zap.String("rink", rink.Name),
					zap.Int("count", stale),
					zap.Time("cutoff", cutoff),
				)
			}
		}
	}

	s.metrics.ObserveReplace(rink.Name, summary)
	if s.cache != nil {
		s.cache.Invalidate(ctx, "icetimes:*")
	}

	s.logger.Info("replaced active schedule",
		zap.String("rink", rink.Name),
		zap.Int("softDeleted", summary.SoftDeleted),
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
	)
	return summary, recordErrs, nil
}

func earliestDate(events []models.NormalizedEvent) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	earliest := events[0].Date
	for _, ev := range events[1:] {
		if ev.Date.Before(earliest) {
			earliest = ev.Date
		}
	}
	return earliest, true
}
