package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/service"
	"github.com/icetimehq/icetime-api/internal/source"
	"github.com/icetimehq/icetime-api/pkg/jobs"
)

type adapterMock struct {
	name   string
	rink   string
	result *models.IngestionResult
	err    error
	calls  int
}

func (a *adapterMock) Name() string     { return a.name }
func (a *adapterMock) RinkName() string { return a.rink }

func (a *adapterMock) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func TestCronHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adapter := &adapterMock{
		name:   "union-sports-arena-nj",
		rink:   "Union Sports Arena",
		result: &models.IngestionResult{JobName: "union-sports-arena-nj", Created: 4},
	}
	jobSvc := service.NewJobService([]source.Adapter{adapter}, nil, nil)
	handler := NewCronHandler(jobSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/union-sports-arena-nj", nil)
	c.Params = gin.Params{{Key: "jobName", Value: "union-sports-arena-nj"}}

	handler.Run(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, adapter.calls)

	var envelope struct {
		Data models.JobReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Success)
	assert.Equal(t, 4, envelope.Data.Result.Created)
}

func TestCronHandlerRunUnknownJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jobSvc := service.NewJobService(nil, nil, nil)
	handler := NewCronHandler(jobSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/nope", nil)
	c.Params = gin.Params{{Key: "jobName", Value: "nope"}}

	handler.Run(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCronHandlerRunAsync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adapter := &adapterMock{
		name:   "west-orange-codey-arena",
		rink:   "Codey Arena",
		result: &models.IngestionResult{},
	}
	jobSvc := service.NewJobService([]source.Adapter{adapter}, nil, nil)

	done := make(chan struct{})
	queue := jobs.NewQueue("ingestion", func(ctx context.Context, job jobs.Job) error {
		defer close(done)
		_, err := jobSvc.Run(ctx, job.Type)
		return err
	}, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()

	handler := NewCronHandler(jobSvc, queue)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/west-orange-codey-arena?async=true", nil)
	c.Params = gin.Params{{Key: "jobName", Value: "west-orange-codey-arena"}}

	handler.Run(c)
	require.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job never ran")
	}
	assert.Equal(t, 1, adapter.calls)
}

func TestCronHandlerRunAsyncUnknownJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jobSvc := service.NewJobService(nil, nil, nil)
	queue := jobs.NewQueue("ingestion", func(ctx context.Context, job jobs.Job) error { return nil }, jobs.QueueConfig{})
	queue.Start(context.Background())
	defer queue.Stop()

	handler := NewCronHandler(jobSvc, queue)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/nope?async=true", nil)
	c.Params = gin.Params{{Key: "jobName", Value: "nope"}}

	handler.Run(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCronHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jobSvc := service.NewJobService([]source.Adapter{
		&adapterMock{name: "bridgewater-ice-arena"},
		&adapterMock{name: "bloomington-webtrac"},
	}, nil, nil)
	handler := NewCronHandler(jobSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cron", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"bloomington-webtrac", "bridgewater-ice-arena"}, envelope.Data)
}
