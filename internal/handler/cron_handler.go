package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/icetimehq/icetime-api/internal/service"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
	"github.com/icetimehq/icetime-api/pkg/jobs"
	"github.com/icetimehq/icetime-api/pkg/response"
)

// CronHandler triggers ingestion jobs over HTTP.
type CronHandler struct {
	jobs  *service.JobService
	queue *jobs.Queue
}

// NewCronHandler constructs a cron handler. queue may be nil, in which
// case async invocation is unavailable.
func NewCronHandler(jobSvc *service.JobService, queue *jobs.Queue) *CronHandler {
	return &CronHandler{jobs: jobSvc, queue: queue}
}

// List godoc
// @Summary List the registered ingestion jobs
// @Tags Cron
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cron [get]
func (h *CronHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.jobs.Jobs(), nil)
}

// Run godoc
// @Summary Run one ingestion job
// @Tags Cron
// @Produce json
// @Param jobName path string true "Job name"
// @Param async query bool false "Queue the run and return immediately"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /cron/{jobName} [post]
func (h *CronHandler) Run(c *gin.Context) {
	jobName := c.Param("jobName")

	if c.Query("async") == "true" {
		h.runAsync(c, jobName)
		return
	}

	report, err := h.jobs.Run(c.Request.Context(), jobName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// runAsync hands the run to the background queue. The job name is checked
// up front so a typo still comes back as 404 instead of vanishing.
func (h *CronHandler) runAsync(c *gin.Context, jobName string) {
	if h.queue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "background queue is not running"))
		return
	}

	known := false
	for _, name := range h.jobs.Jobs() {
		if name == jobName {
			known = true
			break
		}
	}
	if !known {
		response.Error(c, appErrors.ErrJobNotFound)
		return
	}

	job := jobs.Job{ID: uuid.NewString(), Type: jobName}
	if err := h.queue.Enqueue(job); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue job"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"job_name": jobName, "queued": true, "id": job.ID}, nil)
}
