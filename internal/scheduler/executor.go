package scheduler

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cuongbtq/jobsched/internal/job"
)

// Default executor behavior
const (
	DefaultMinDuration = 100 * time.Millisecond
	DefaultMaxDuration = 2000 * time.Millisecond
	DefaultFailureRate = 0.10
)

// failureCodes is the fixed set of error codes a simulated failure
// draws from.
var failureCodes = []int{500, 502, 503, 504}

// ExecutorConfig holds simulated-work tuning.
type ExecutorConfig struct {
	Logger      *slog.Logger
	MinDuration time.Duration
	MaxDuration time.Duration
	FailureRate float64
	// Seed pins the RNG for tests; 0 seeds from the clock.
	Seed int64
}

// Executor simulates external work: a uniformly random duration in
// [MinDuration, MaxDuration] and an independent failure probability.
// A simulated failure is a business outcome (FAILED status with an
// error result), not an execution error.
type Executor struct {
	logger      *slog.Logger
	minDuration time.Duration
	maxDuration time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExecutor creates an executor, filling unset fields with the
// package defaults.
func NewExecutor(cfg *ExecutorConfig) *Executor {
	minDuration := cfg.MinDuration
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	maxDuration := cfg.MaxDuration
	if maxDuration < minDuration {
		maxDuration = DefaultMaxDuration
	}
	failureRate := cfg.FailureRate
	if failureRate < 0 || failureRate > 1 {
		failureRate = DefaultFailureRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Executor{
		logger:      cfg.Logger,
		minDuration: minDuration,
		maxDuration: maxDuration,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the simulated work for a RUNNING snapshot and returns
// the terminal snapshot. The caller guarantees the RUNNING precondition;
// a violation surfaces as the transition error. There is deliberately
// no context parameter: in-flight work is never cancelled.
func (e *Executor) Execute(j job.Job) (job.Job, error) {
	duration, failed, code := e.draw()

	e.logger.Debug("Executing job",
		slog.String("job_id", j.ID),
		slog.String("job_type", j.Type),
		slog.Duration("duration", duration),
	)

	time.Sleep(duration)

	if failed {
		result := job.ErrorResult(failureMessage(j.Type), code, map[string]any{
			"job_type": j.Type,
		})
		final, err := j.Fail(result)
		if err != nil {
			return j, fmt.Errorf("failed to finish job %s: %w", j.ID, err)
		}

		e.logger.Info("Job failed",
			slog.String("job_id", j.ID),
			slog.String("job_type", j.Type),
			slog.Int("code", code),
			slog.Duration("execution_time", final.ExecutionTime),
		)
		return final, nil
	}

	result := job.SuccessResult(successMessage(j.Type), map[string]any{
		"job_type":     j.Type,
		"completed_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	final, err := j.Complete(result)
	if err != nil {
		return j, fmt.Errorf("failed to finish job %s: %w", j.ID, err)
	}

	e.logger.Info("Job completed",
		slog.String("job_id", j.ID),
		slog.String("job_type", j.Type),
		slog.Duration("execution_time", final.ExecutionTime),
	)
	return final, nil
}

// draw samples duration and outcome under one lock so concurrent
// executions do not race on the RNG.
func (e *Executor) draw() (duration time.Duration, failed bool, code int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	duration = e.minDuration
	if span := e.maxDuration - e.minDuration; span > 0 {
		duration += time.Duration(e.rng.Int63n(int64(span) + 1))
	}
	failed = e.rng.Float64() < e.failureRate
	if failed {
		code = failureCodes[e.rng.Intn(len(failureCodes))]
	}
	return duration, failed, code
}

// successMessage derives the success phrase from the job type.
func successMessage(jobType string) string {
	switch jobType {
	case "email":
		return "Email sent successfully"
	case "report":
		return "Report generated successfully"
	case "export":
		return "Data export finished successfully"
	case "notification":
		return "Notification delivered successfully"
	default:
		return fmt.Sprintf("Job of type %q completed successfully", jobType)
	}
}

// failureMessage derives the failure phrase from the job type.
func failureMessage(jobType string) string {
	switch jobType {
	case "email":
		return "Failed to send email"
	case "report":
		return "Failed to generate report"
	case "export":
		return "Failed to export data"
	case "notification":
		return "Failed to deliver notification"
	default:
		return fmt.Sprintf("Job of type %q failed", jobType)
	}
}
