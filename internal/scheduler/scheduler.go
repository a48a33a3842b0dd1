package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobsched/internal/events"
	"github.com/cuongbtq/jobsched/internal/job"
	"github.com/cuongbtq/jobsched/internal/metrics"
	"github.com/cuongbtq/jobsched/internal/store"
)

// DefaultInterval is the tick interval of the claim loop when none is
// configured.
const DefaultInterval = 50 * time.Millisecond

// Config holds scheduler dependencies and tuning.
type Config struct {
	Logger   *slog.Logger
	Store    store.Store
	Executor *Executor
	Events   events.Publisher
	Metrics  *metrics.Collector

	// Interval between claim attempts; defaults to DefaultInterval.
	Interval time.Duration

	// MaxInFlight caps concurrently executing jobs. Zero means no
	// bound and no backpressure.
	MaxInFlight int
}

// Scheduler is the periodic driver: each tick claims at most one
// eligible job and hands it to the executor without waiting for
// earlier claims to finish.
type Scheduler struct {
	logger   *slog.Logger
	store    store.Store
	executor *Executor
	events   events.Publisher
	metrics  *metrics.Collector
	interval time.Duration
	sem      chan struct{}

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	loopWG   sync.WaitGroup
}

// New creates a scheduler. Nil Events and Metrics fall back to no-op
// and private collectors so callers only wire what they use.
func New(cfg *Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	pub := cfg.Events
	if pub == nil {
		pub = events.NewNopPublisher()
	}

	coll := cfg.Metrics
	if coll == nil {
		coll = metrics.NewCollector()
	}

	var sem chan struct{}
	if cfg.MaxInFlight > 0 {
		sem = make(chan struct{}, cfg.MaxInFlight)
	}

	return &Scheduler{
		logger:   cfg.Logger,
		store:    cfg.Store,
		executor: cfg.Executor,
		events:   pub,
		metrics:  coll,
		interval: interval,
		sem:      sem,
	}
}

// Start launches the tick loop. Calling Start on a running scheduler
// is a no-op that logs a warning.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler already running, ignoring start")
		return
	}
	s.stopChan = make(chan struct{})
	s.running = true
	stopChan := s.stopChan
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.run(stopChan)

	s.logger.Info("Scheduler started",
		slog.Duration("interval", s.interval),
		slog.Int("max_in_flight", cap(s.sem)),
	)
}

// Stop halts the tick loop and waits for it to exit. In-flight
// executions keep running and still write back their terminal
// snapshots. Calling Stop on a stopped scheduler is a no-op that logs
// a warning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler not running, ignoring stop")
		return
	}
	close(s.stopChan)
	s.running = false
	s.mu.Unlock()

	s.loopWG.Wait()
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the tick loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(stopChan <-chan struct{}) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			// Tick errors are logged and dropped; the loop never stops
			// over a single bad claim.
			if err := s.tick(context.Background()); err != nil {
				s.logger.Error("Scheduler tick failed",
					slog.Any("error", err),
				)
			}
		}
	}
}

// tick claims at most one eligible job and launches its execution.
func (s *Scheduler) tick(ctx context.Context) error {
	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
		default:
			// At the in-flight cap; try again next tick.
			return nil
		}
	}
	claimed := false
	defer func() {
		if s.sem != nil && !claimed {
			<-s.sem
		}
	}()

	j, ok, err := s.store.NextEligible(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to query eligible job: %w", err)
	}
	if !ok {
		return nil
	}

	running, err := j.Start()
	if err != nil {
		return fmt.Errorf("failed to start job %s: %w", j.ID, err)
	}

	// The claim: only lands if the stored snapshot is still PENDING.
	if err := s.store.CompareAndReplace(ctx, running, job.StatusPending); err != nil {
		if job.IsInvalidTransition(err) {
			// Lost a benign race, typically with a concurrent cancel.
			s.logger.Debug("Job claimed elsewhere, skipping",
				slog.String("job_id", j.ID),
			)
			return nil
		}
		return fmt.Errorf("failed to claim job %s: %w", j.ID, err)
	}

	s.metrics.JobStarted()
	s.publish(ctx, running)

	s.logger.Info("Job claimed",
		slog.String("job_id", running.ID),
		slog.String("job_type", running.Type),
	)

	claimed = true
	go s.runJob(running)
	return nil
}

// runJob executes one claimed job and writes back the terminal
// snapshot. It owns one semaphore slot when a cap is configured.
func (s *Scheduler) runJob(running job.Job) {
	if s.sem != nil {
		defer func() { <-s.sem }()
	}
	defer func() {
		if r := recover(); r != nil {
			s.metrics.JobAborted()
			s.logger.Error("Job execution panicked",
				slog.String("job_id", running.ID),
				slog.Any("panic", r),
			)
		}
	}()

	ctx := context.Background()

	final, err := s.executor.Execute(running)
	if err != nil {
		s.metrics.JobAborted()
		s.logger.Error("Job execution failed",
			slog.String("job_id", running.ID),
			slog.Any("error", err),
		)
		return
	}

	if err := s.store.Replace(ctx, final); err != nil {
		s.metrics.JobAborted()
		s.logger.Error("Failed to store terminal job snapshot",
			slog.String("job_id", final.ID),
			slog.Any("error", err),
		)
		return
	}

	s.metrics.JobFinished(final.Status, final.ExecutionTime)
	s.publish(ctx, final)
}

// ProcessByID synchronously claims and executes one specific job,
// bypassing the periodic trigger.
func (s *Scheduler) ProcessByID(ctx context.Context, id string) (job.Job, error) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	if !j.Eligible(time.Now().UTC()) {
		return job.Job{}, &job.NotEligibleError{ID: j.ID, EligibleAt: j.EligibleAt}
	}

	running, err := j.Start()
	if err != nil {
		return job.Job{}, err
	}

	if err := s.store.CompareAndReplace(ctx, running, job.StatusPending); err != nil {
		return job.Job{}, err
	}

	s.metrics.JobStarted()
	s.publish(ctx, running)

	s.logger.Info("Job claimed for direct processing",
		slog.String("job_id", running.ID),
		slog.String("job_type", running.Type),
	)

	final, err := s.executor.Execute(running)
	if err != nil {
		s.metrics.JobAborted()
		return job.Job{}, fmt.Errorf("failed to execute job %s: %w", id, err)
	}

	if err := s.store.Replace(ctx, final); err != nil {
		s.metrics.JobAborted()
		return job.Job{}, fmt.Errorf("failed to store terminal job snapshot: %w", err)
	}

	s.metrics.JobFinished(final.Status, final.ExecutionTime)
	s.publish(ctx, final)
	return final, nil
}

func (s *Scheduler) publish(ctx context.Context, j job.Job) {
	if err := s.events.PublishJobEvent(ctx, events.NewJobEvent(j)); err != nil {
		s.logger.Warn("Failed to publish job event",
			slog.String("job_id", j.ID),
			slog.Any("error", err),
		)
	}
}
