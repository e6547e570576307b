package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/source"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

// JobService dispatches ingestion runs by job name. At most one run per
// job is in flight at a time; a second invocation is rejected, not queued.
type JobService struct {
	adapters map[string]source.Adapter
	locks    map[string]*sync.Mutex
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewJobService registers the adapters. Duplicate job names panic at
// startup rather than shadowing each other silently.
func NewJobService(adapters []source.Adapter, metrics *MetricsService, logger *zap.Logger) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := make(map[string]source.Adapter, len(adapters))
	locks := make(map[string]*sync.Mutex, len(adapters))
	for _, adapter := range adapters {
		name := adapter.Name()
		if _, exists := registry[name]; exists {
			panic(fmt.Sprintf("duplicate ingestion job %q", name))
		}
		registry[name] = adapter
		locks[name] = &sync.Mutex{}
	}
	return &JobService{adapters: registry, locks: locks, metrics: metrics, logger: logger}
}

// Jobs returns the registered job names in stable order.
func (s *JobService) Jobs() []string {
	names := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one ingestion job synchronously and reports its outcome.
// An unknown name or an in-flight duplicate fails fast; an adapter error
// comes back inside the report so callers see a uniform shape.
func (s *JobService) Run(ctx context.Context, jobName string) (*models.JobReport, error) {
	adapter, ok := s.adapters[jobName]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrJobNotFound, fmt.Sprintf("unknown job %q", jobName))
	}

	lock := s.locks[jobName]
	if !lock.TryLock() {
		return nil, appErrors.Clone(appErrors.ErrJobAlreadyRunning, fmt.Sprintf("job %q is already in flight", jobName))
	}
	defer lock.Unlock()

	s.logger.Info("ingestion job started", zap.String("job", jobName), zap.String("rink", adapter.RinkName()))
	start := time.Now()

	result, err := adapter.Ingest(ctx)
	duration := time.Since(start)
	s.metrics.ObserveJobRun(jobName, err == nil, duration)

	if err != nil {
		s.logger.Error("ingestion job failed",
			zap.String("job", jobName),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return &models.JobReport{JobName: jobName, Success: false, Error: err.Error()}, nil
	}

	s.logger.Info("ingestion job finished",
		zap.String("job", jobName),
		zap.Duration("duration", duration),
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("softDeleted", result.SoftDeleted),
		zap.Int("failed", result.Failed),
	)
	return &models.JobReport{JobName: jobName, Success: true, Result: result}, nil
}
