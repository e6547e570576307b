// Package scheduler runs ingestion jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/service"
)

// Scheduler owns the cron runner. Each configured entry triggers one
// ingestion job; overlap protection lives in the dispatcher, so a slow run
// simply makes the next tick report the job as busy.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *service.JobService
	logger *zap.Logger
}

// New builds a scheduler from job-name to cron-spec entries. Unknown job
// names and invalid specs fail at startup.
func New(jobSvc *service.JobService, entries map[string]string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	known := make(map[string]bool)
	for _, name := range jobSvc.Jobs() {
		known[name] = true
	}

	runner := cron.New()
	for jobName, spec := range entries {
		if !known[jobName] {
			return nil, fmt.Errorf("schedule references unknown job %q", jobName)
		}
		name := jobName
		if _, err := runner.AddFunc(spec, func() {
			report, err := jobSvc.Run(context.Background(), name)
			if err != nil {
				logger.Warn("scheduled run rejected", zap.String("job", name), zap.Error(err))
				return
			}
			if !report.Success {
				logger.Warn("scheduled run failed", zap.String("job", name), zap.String("error", report.Error))
			}
		}); err != nil {
			return nil, fmt.Errorf("invalid cron spec %q for job %q: %w", spec, jobName, err)
		}
		logger.Info("scheduled ingestion job", zap.String("job", jobName), zap.String("spec", spec))
	}

	return &Scheduler{cron: runner, jobs: jobSvc, logger: logger}, nil
}

// Start begins firing entries.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
