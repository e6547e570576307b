// Package source contains the per-rink ingestion adapters. Every adapter
// acquires raw schedule data its own way (REST fetch, headless browser, or
// LLM-assisted extraction), normalizes it into the canonical event shape,
// and hands the batch to the reconciliation writer.
package source

import (
	"context"
	"time"

	"github.com/icetimehq/icetime-api/internal/models"
)

// Adapter is the common ingestion contract. Ingest may be invoked
// repeatedly; each successful invocation fully replaces the active event
// set for the adapter's rink.
type Adapter interface {
	Name() string
	RinkName() string
	Ingest(ctx context.Context) (*models.IngestionResult, error)
}

// RinkStore is the slice of storage adapters need for rink lookup.
type RinkStore interface {
	FindByName(ctx context.Context, name string) (*models.Rink, error)
	Upsert(ctx context.Context, rink *models.Rink) (*models.Rink, error)
}

// Reconciler replaces a rink's active events with a new batch. Implemented
// by the reconciliation writer in the service layer.
type Reconciler interface {
	ReplaceActiveEvents(ctx context.Context, rink *models.Rink, events []models.NormalizedEvent) (models.ReplaceSummary, []models.RecordError, error)
}

const dateLayout = "2006-01-02"

// newResult stamps the shared bookkeeping fields of an IngestionResult.
func newResult(jobName, rinkName string, startedAt time.Time, fetched int, summary models.ReplaceSummary, recordErrs []models.RecordError) *models.IngestionResult {
	return &models.IngestionResult{
		JobName:      jobName,
		RinkName:     rinkName,
		Fetched:      fetched,
		SoftDeleted:  summary.SoftDeleted,
		Created:      summary.Created,
		Failed:       len(recordErrs),
		RecordErrors: recordErrs,
		StartedAt:    startedAt,
		Duration:     time.Since(startedAt),
	}
}
