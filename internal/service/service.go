package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobsched/internal/events"
	"github.com/cuongbtq/jobsched/internal/job"
	"github.com/cuongbtq/jobsched/internal/metrics"
	"github.com/cuongbtq/jobsched/internal/store"
)

// Config holds service dependencies.
type Config struct {
	Logger  *slog.Logger
	Store   store.Store
	Events  events.Publisher
	Metrics *metrics.Collector
}

// Service is the submission and read surface over the job store. The
// HTTP layer and tests go through it; the scheduler only shares the
// store underneath.
type Service struct {
	logger  *slog.Logger
	store   store.Store
	events  events.Publisher
	metrics *metrics.Collector
}

// New creates a service. Nil Events and Metrics fall back to no-op and
// private collectors.
func New(cfg *Config) *Service {
	pub := cfg.Events
	if pub == nil {
		pub = events.NewNopPublisher()
	}
	coll := cfg.Metrics
	if coll == nil {
		coll = metrics.NewCollector()
	}

	return &Service{
		logger:  cfg.Logger,
		store:   cfg.Store,
		events:  pub,
		metrics: coll,
	}
}

// Submit validates the input, creates a PENDING snapshot and inserts it.
func (s *Service) Submit(ctx context.Context, jobType string, payload map[string]any, cfg job.Config) (job.Job, error) {
	j, err := job.New(jobType, payload, cfg)
	if err != nil {
		return job.Job{}, err
	}

	if err := s.store.Insert(ctx, j); err != nil {
		return job.Job{}, fmt.Errorf("failed to insert job: %w", err)
	}

	s.metrics.JobSubmitted()
	s.publish(ctx, j)

	s.logger.Info("Job submitted",
		slog.String("job_id", j.ID),
		slog.String("job_type", j.Type),
		slog.Duration("delay", j.Config.Delay),
	)

	return j, nil
}

// GetStatus returns the current snapshot for id.
func (s *Service) GetStatus(ctx context.Context, id string) (job.Job, error) {
	return s.store.Get(ctx, id)
}

// Cancel transitions a PENDING job to CANCELLED. The status check and
// the write go through the store's atomic replace, so a cancel racing
// the scheduler's claim resolves to whichever landed first; the loser
// surfaces an InvalidTransitionError.
func (s *Service) Cancel(ctx context.Context, id string) (job.Job, error) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	cancelled, err := j.Cancel()
	if err != nil {
		return job.Job{}, err
	}

	if err := s.store.CompareAndReplace(ctx, cancelled, job.StatusPending); err != nil {
		return job.Job{}, err
	}

	s.metrics.JobCancelled()
	s.publish(ctx, cancelled)

	s.logger.Info("Job cancelled",
		slog.String("job_id", id),
	)

	return cancelled, nil
}

// List returns all snapshots, filtered by status when non-empty.
func (s *Service) List(ctx context.Context, status job.Status) ([]job.Job, error) {
	if status != "" && !status.Valid() {
		return nil, job.NewValidationError("unknown status %q", status)
	}
	return s.store.ListByStatus(ctx, status)
}

// Counts returns the number of jobs per status.
func (s *Service) Counts(ctx context.Context) (map[job.Status]int, error) {
	return s.store.CountByStatus(ctx)
}

func (s *Service) publish(ctx context.Context, j job.Job) {
	if err := s.events.PublishJobEvent(ctx, events.NewJobEvent(j)); err != nil {
		s.logger.Warn("Failed to publish job event",
			slog.String("job_id", j.ID),
			slog.Any("error", err),
		)
	}
}
