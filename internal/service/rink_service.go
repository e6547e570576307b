package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

type rinkRepository interface {
	List(ctx context.Context) ([]models.Rink, error)
	FindByName(ctx context.Context, name string) (*models.Rink, error)
}

// RinkService serves the rink directory.
type RinkService struct {
	repo   rinkRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewRinkService creates a rink service.
func NewRinkService(repo rinkRepository, cache *CacheService, logger *zap.Logger) *RinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RinkService{repo: repo, cache: cache, logger: logger}
}

// List returns every known rink.
func (s *RinkService) List(ctx context.Context) ([]models.Rink, error) {
	const cacheKey = "rinks:list"
	var rinks []models.Rink
	if s.cache.Get(ctx, cacheKey, &rinks) {
		return rinks, nil
	}

	rinks, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rinks")
	}
	if rinks == nil {
		rinks = []models.Rink{}
	}

	s.cache.Set(ctx, cacheKey, rinks, 0)
	return rinks, nil
}
