package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobsched/internal/job"
	"github.com/cuongbtq/jobsched/internal/metrics"
	"github.com/cuongbtq/jobsched/internal/scheduler"
	"github.com/cuongbtq/jobsched/internal/service"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Service   *service.Service
	Scheduler *scheduler.Scheduler
	Metrics   *metrics.Collector
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger    *slog.Logger
	service   *service.Service
	scheduler *scheduler.Scheduler
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:    deps.Logger,
		service:   deps.Service,
		scheduler: deps.Scheduler,
	}
}

// respondError maps core error kinds onto HTTP status codes:
// validation → 400, unknown id → 404, transition/eligibility/duplicate
// conflicts → 409, anything else → 500.
func (h *JobHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case job.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, job.ErrJobNotFound):
		status = http.StatusNotFound
	case job.IsInvalidTransition(err), job.IsNotEligible(err), errors.Is(err, job.ErrDuplicateJob):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
