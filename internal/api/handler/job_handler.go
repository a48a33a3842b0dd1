package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobsched/internal/api/dto"
	"github.com/cuongbtq/jobsched/internal/job"
)

// CreateJob handles POST /api/v1/jobs
// Submits a new job for deferred execution
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	cfg := job.Config{Delay: time.Duration(req.Config.DelayMs) * time.Millisecond}

	j, err := h.service.Submit(c.Request.Context(), req.Type, req.Payload, cfg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromJob(j))
}

// GetJob handles GET /api/v1/jobs/:job_id
// Returns the current snapshot of a specific job
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	j, err := h.service.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromJob(j))
}

// ListJobs handles GET /api/v1/jobs
// Lists all jobs, optionally filtered by status
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	jobs, err := h.service.List(c.Request.Context(), job.Status(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:  dto.FromJobs(jobs),
		Total: len(jobs),
	})
}

// GetJobStats handles GET /api/v1/jobs/stats
// Returns job counts per status
func (h *JobHandler) GetJobStats(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := dto.JobStatsResponse{Counts: make(map[string]int, len(counts))}
	for status, n := range counts {
		resp.Counts[string(status)] = n
		resp.Total += n
	}

	c.JSON(http.StatusOK, resp)
}

// CancelJob handles POST /api/v1/jobs/:job_id/cancel
// Cancels a pending job
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("job_id")

	j, err := h.service.Cancel(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromJob(j))
}

// ProcessJob handles POST /api/v1/jobs/:job_id/process
// Synchronously claims and executes one job, bypassing the loop
func (h *JobHandler) ProcessJob(c *gin.Context) {
	jobID := c.Param("job_id")

	j, err := h.scheduler.ProcessByID(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromJob(j))
}

// StartScheduler handles POST /api/v1/scheduler/start
func (h *JobHandler) StartScheduler(c *gin.Context) {
	h.scheduler.Start()
	c.JSON(http.StatusOK, dto.SchedulerStatusResponse{Running: h.scheduler.IsRunning()})
}

// StopScheduler handles POST /api/v1/scheduler/stop
func (h *JobHandler) StopScheduler(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, dto.SchedulerStatusResponse{Running: h.scheduler.IsRunning()})
}

// GetSchedulerStatus handles GET /api/v1/scheduler
func (h *JobHandler) GetSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SchedulerStatusResponse{Running: h.scheduler.IsRunning()})
}
