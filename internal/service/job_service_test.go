package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/source"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

type stubAdapter struct {
	name      string
	rink      string
	result    *models.IngestionResult
	err       error
	started   chan struct{}
	startOnce sync.Once
	release   chan struct{}
}

func (a *stubAdapter) Name() string     { return a.name }
func (a *stubAdapter) RinkName() string { return a.rink }

func (a *stubAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	if a.started != nil {
		a.startOnce.Do(func() { close(a.started) })
	}
	if a.release != nil {
		<-a.release
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func TestJobServiceRun(t *testing.T) {
	adapter := &stubAdapter{
		name:   "union-sports-arena-nj",
		rink:   "Union Sports Arena",
		result: &models.IngestionResult{JobName: "union-sports-arena-nj", Created: 12, SoftDeleted: 10},
	}
	svc := NewJobService([]source.Adapter{adapter}, nil, nil)

	report, err := svc.Run(context.Background(), "union-sports-arena-nj")
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 12, report.Result.Created)
}

func TestJobServiceRunUnknownJob(t *testing.T) {
	svc := NewJobService(nil, nil, nil)

	_, err := svc.Run(context.Background(), "no-such-rink")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrJobNotFound.Code))
}

func TestJobServiceRunAdapterFailureBecomesReport(t *testing.T) {
	adapter := &stubAdapter{
		name: "bridgewater-ice-arena",
		rink: "Bridgewater Ice Arena",
		err:  appErrors.ErrSourceUnavailable,
	}
	svc := NewJobService([]source.Adapter{adapter}, nil, nil)

	report, err := svc.Run(context.Background(), "bridgewater-ice-arena")
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "upstream source")
	assert.Nil(t, report.Result)
}

func TestJobServiceRejectsConcurrentRun(t *testing.T) {
	adapter := &stubAdapter{
		name:    "west-orange-codey-arena",
		rink:    "Codey Arena",
		result:  &models.IngestionResult{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewJobService([]source.Adapter{adapter}, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Run(context.Background(), "west-orange-codey-arena")
		assert.NoError(t, err)
	}()

	select {
	case <-adapter.started:
	case <-time.After(time.Second):
		t.Fatal("first run never started")
	}

	_, err := svc.Run(context.Background(), "west-orange-codey-arena")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrJobAlreadyRunning.Code))

	close(adapter.release)
	wg.Wait()

	// The lock is released once the first run completes.
	_, err = svc.Run(context.Background(), "west-orange-codey-arena")
	assert.NoError(t, err)
}

func TestJobServiceJobsSorted(t *testing.T) {
	svc := NewJobService([]source.Adapter{
		&stubAdapter{name: "b-job", result: &models.IngestionResult{}},
		&stubAdapter{name: "a-job", result: &models.IngestionResult{}},
	}, nil, nil)

	assert.Equal(t, []string{"a-job", "b-job"}, svc.Jobs())
}
