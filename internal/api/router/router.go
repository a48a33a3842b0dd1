package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobsched/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "job-scheduler-service",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Initialize job handler
	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Submit a new job
			jobs.POST("", jobHandler.CreateJob)

			// GET /api/v1/jobs - List jobs, optionally filtered by status
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/v1/jobs/stats - Job counts per status
			jobs.GET("/stats", jobHandler.GetJobStats)

			// GET /api/v1/jobs/:job_id - Get job details
			jobs.GET("/:job_id", jobHandler.GetJob)

			// POST /api/v1/jobs/:job_id/cancel - Cancel a pending job
			jobs.POST("/:job_id/cancel", jobHandler.CancelJob)

			// POST /api/v1/jobs/:job_id/process - Execute one job synchronously
			jobs.POST("/:job_id/process", jobHandler.ProcessJob)
		}

		sched := v1.Group("/scheduler")
		{
			// GET /api/v1/scheduler - Scheduler loop state
			sched.GET("", jobHandler.GetSchedulerStatus)

			// POST /api/v1/scheduler/start - Start the claim loop
			sched.POST("/start", jobHandler.StartScheduler)

			// POST /api/v1/scheduler/stop - Stop the claim loop
			sched.POST("/stop", jobHandler.StopScheduler)
		}
	}

	return r
}
