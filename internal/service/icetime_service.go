package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/dto"
	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

type iceTimeReader interface {
	ListViews(ctx context.Context, filter models.IceTimeFilter) ([]models.IceTimeView, error)
}

// IceTimeService serves the public schedule listing.
type IceTimeService struct {
	repo      iceTimeReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewIceTimeService creates an ice-time service.
func NewIceTimeService(repo iceTimeReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *IceTimeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IceTimeService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns active ice times matching the query, cached per distinct
// query shape.
func (s *IceTimeService) List(ctx context.Context, query dto.IceTimeQuery) ([]models.IceTimeView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}

	cacheKey := listCacheKey(query)
	var views []models.IceTimeView
	if s.cache.Get(ctx, cacheKey, &views) {
		return views, nil
	}

	views, err := s.repo.ListViews(ctx, s.buildFilter(query))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ice times")
	}
	if views == nil {
		views = []models.IceTimeView{}
	}

	s.cache.Set(ctx, cacheKey, views, 0)
	return views, nil
}

func (s *IceTimeService) buildFilter(query dto.IceTimeQuery) models.IceTimeFilter {
	filter := models.IceTimeFilter{RinkID: query.RinkID}

	flags := []struct {
		on bool
		t  models.IceTimeType
	}{
		{query.Clinic, models.TypeClinic},
		{query.OpenSkate, models.TypeOpenSkate},
		{query.StickTime, models.TypeStickTime},
		{query.OpenHockey, models.TypeOpenHockey},
		{query.SubstituteRequest, models.TypeSubstituteRequest},
		{query.LearnToSkate, models.TypeLearnToSkate},
		{query.YouthClinic, models.TypeYouthClinic},
		{query.AdultClinic, models.TypeAdultClinic},
		{query.AdultSkate, models.TypeAdultSkate},
		{query.Other, models.TypeOther},
	}
	for _, f := range flags {
		if f.on {
			filter.Types = append(filter.Types, f.t)
		}
	}

	if from, to, ok := dateWindow(s.now().UTC(), query.DateFilter); ok {
		filter.DateFrom = &from
		filter.DateTo = &to
	}
	return filter
}

// dateWindow resolves the named filter to an inclusive day range.
// "thisWeek" means today plus the next six days, not the calendar week.
func dateWindow(now time.Time, dateFilter string) (time.Time, time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch dateFilter {
	case "today":
		return today, today, true
	case "tomorrow":
		t := today.AddDate(0, 0, 1)
		return t, t, true
	case "thisWeek":
		return today, today.AddDate(0, 0, 6), true
	}
	return time.Time{}, time.Time{}, false
}

func listCacheKey(query dto.IceTimeQuery) string {
	return fmt.Sprintf("icetimes:list:%t%t%t%t%t%t%t%t%t%t:%s:%s",
		query.Clinic, query.OpenSkate, query.StickTime, query.OpenHockey,
		query.SubstituteRequest, query.LearnToSkate, query.YouthClinic,
		query.AdultClinic, query.AdultSkate, query.Other,
		query.DateFilter, query.RinkID)
}
