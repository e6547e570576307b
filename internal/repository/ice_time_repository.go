package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/icetimehq/icetime-api/internal/models"
)

// IceTimeRepository persists ice-time rows and performs the
// soft-delete/replace reconciliation for a rink's active set.
type IceTimeRepository struct {
	db *sqlx.DB
}

// NewIceTimeRepository constructs an ice-time repository.
func NewIceTimeRepository(db *sqlx.DB) *IceTimeRepository {
	return &IceTimeRepository{db: db}
}

// ReplaceActive soft-deletes every non-deleted row for rinkID and inserts
// newEvents as fresh rows, all inside one transaction so the rink never
// shows an empty active set between the two steps. A row that fails to
// insert is rolled back to a savepoint, counted, and skipped; it does not
// abort the batch.
func (r *IceTimeRepository) ReplaceActive(ctx context.Context, rinkID string, newEvents []models.NormalizedEvent) (models.ReplaceSummary, []models.RecordError, error) {
	var summary models.ReplaceSummary
	var recordErrs []models.RecordError

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return summary, nil, fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE ice_times SET deleted = TRUE WHERE rink_id = $1 AND deleted = FALSE", rinkID)
	if err != nil {
		return summary, nil, fmt.Errorf("soft delete active ice times: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		summary.SoftDeleted = int(n)
	}

	const insert = `INSERT INTO ice_times (id, type, original_label, date, start_time, end_time, rink_id, deleted, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`

	now := time.Now().UTC()
	for _, ev := range newEvents {
		var label *string
		if ev.OriginalLabel != "" {
			l := ev.OriginalLabel
			label = &l
		}

		if _, err := tx.ExecContext(ctx, "SAVEPOINT insert_event"); err != nil {
			return summary, recordErrs, fmt.Errorf("create savepoint: %w", err)
		}
		_, err := tx.ExecContext(ctx, insert,
			uuid.NewString(), string(ev.Type), label, ev.Date, ev.StartTime, ev.EndTime, rinkID, now)
		if err != nil {
			summary.Failed++
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("%s %s-%s %s", ev.Date.Format("2006-01-02"), ev.StartTime, ev.EndTime, ev.Type),
				Reason: err.Error(),
			})
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT insert_event"); err != nil {
				return summary, recordErrs, fmt.Errorf("rollback savepoint: %w", err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT insert_event"); err != nil {
			return summary, recordErrs, fmt.Errorf("release savepoint: %w", err)
		}
		summary.Created++
	}

	if err := tx.Commit(); err != nil {
		return summary, recordErrs, fmt.Errorf("commit replace tx: %w", err)
	}
	return summary, recordErrs, nil
}

// CountActiveBefore counts non-deleted rows for a rink dated strictly
// earlier than cutoff. After a replace, a non-zero count means the
// reconciliation missed rows; callers surface it as a warning.
func (r *IceTimeRepository) CountActiveBefore(ctx context.Context, rinkID string, cutoff time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM ice_times WHERE rink_id = $1 AND deleted = FALSE AND date < $2", rinkID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("count stale active ice times: %w", err)
	}
	return count, nil
}

// ListViews returns active ice times joined with their rink, filtered for
// the read API and ordered by type, date, start time.
func (r *IceTimeRepository) ListViews(ctx context.Context, filter models.IceTimeFilter) ([]models.IceTimeView, error) {
	base := `SELECT it.type, it.date, it.start_time, it.end_time,
r.name AS rink_name, r.location AS rink_location, r.website AS rink_website
FROM ice_times it JOIN rinks r ON r.id = it.rink_id`
	where := []string{"it.deleted = FALSE"}
	args := []interface{}{}

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		where = append(where, fmt.Sprintf("it.type = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(types))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("it.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("it.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.RinkID != "" {
		where = append(where, fmt.Sprintf("it.rink_id = $%d", len(args)+1))
		args = append(args, filter.RinkID)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY it.type ASC, it.date ASC, it.start_time ASC",
		base, strings.Join(where, " AND "))
	var views []models.IceTimeView
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list ice times: %w", err)
	}
	return views, nil
}
