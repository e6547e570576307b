package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/icetimehq/icetime-api/internal/models"
)

// RinkRepository persists rink facilities.
type RinkRepository struct {
	db *sqlx.DB
}

// NewRinkRepository constructs a rink repository.
func NewRinkRepository(db *sqlx.DB) *RinkRepository {
	return &RinkRepository{db: db}
}

const rinkColumns = "id, name, location, website, latitude, longitude, created_at, updated_at"

// List returns all rinks ordered by name.
func (r *RinkRepository) List(ctx context.Context) ([]models.Rink, error) {
	query := fmt.Sprintf("SELECT %s FROM rinks ORDER BY name ASC", rinkColumns)
	var rinks []models.Rink
	if err := r.db.SelectContext(ctx, &rinks, query); err != nil {
		return nil, fmt.Errorf("list rinks: %w", err)
	}
	return rinks, nil
}

// FindByName loads a rink by its unique name. Returns nil when absent.
func (r *RinkRepository) FindByName(ctx context.Context, name string) (*models.Rink, error) {
	query := fmt.Sprintf("SELECT %s FROM rinks WHERE name = $1", rinkColumns)
	var rink models.Rink
	if err := r.db.GetContext(ctx, &rink, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find rink by name: %w", err)
	}
	return &rink, nil
}

// Upsert inserts the rink when its name is new and otherwise leaves the
// existing row untouched, returning the stored record either way. Adapters
// use this on first run; they never overwrite seeded attributes.
func (r *RinkRepository) Upsert(ctx context.Context, rink *models.Rink) (*models.Rink, error) {
	if rink.ID == "" {
		rink.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rink.CreatedAt = now
	rink.UpdatedAt = now

	const query = `INSERT INTO rinks (id, name, location, website, latitude, longitude, created_at, updated_at)
VALUES (:id, :name, :location, :website, :latitude, :longitude, :created_at, :updated_at)
ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, rink); err != nil {
		return nil, fmt.Errorf("upsert rink: %w", err)
	}

	stored, err := r.FindByName(ctx, rink.Name)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert rink: %s missing after insert", rink.Name)
	}
	return stored, nil
}
