package job

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

type Status string

// Valid reports whether s is one of the known job statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Result kind discriminants
const (
	ResultKindSuccess ResultKind = "success"
	ResultKindError   ResultKind = "error"
)

type ResultKind string

// Result is the terminal outcome of a job. Kind discriminates the two
// shapes: a success carries Message and optional Data, an error carries
// Message, Code and optional Details.
type Result struct {
	Kind    ResultKind     `json:"kind"`
	Message string         `json:"message"`
	Code    int            `json:"code,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResult builds a success result.
func SuccessResult(message string, data map[string]any) *Result {
	return &Result{
		Kind:    ResultKindSuccess,
		Message: message,
		Data:    data,
	}
}

// ErrorResult builds an error result.
func ErrorResult(message string, code int, details map[string]any) *Result {
	return &Result{
		Kind:    ResultKindError,
		Message: message,
		Code:    code,
		Details: details,
	}
}

// CodeCancelled is the fixed error code carried by cancelled jobs.
const CodeCancelled = 499

// Config holds per-job submission options.
type Config struct {
	// Delay postpones eligibility relative to creation time.
	Delay time.Duration
}

// Job is an immutable snapshot of a unit of deferred work. Transitions
// never mutate a snapshot in place; each returns a new one.
type Job struct {
	ID            string
	Type          string
	Payload       map[string]any
	Config        Config
	Status        Status
	CreatedAt     time.Time
	EligibleAt    time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	ExecutionTime time.Duration
	Result        *Result
}

// New validates the submission input and returns a fresh PENDING
// snapshot with EligibleAt = CreatedAt + cfg.Delay.
func New(jobType string, payload map[string]any, cfg Config) (Job, error) {
	if jobType == "" {
		return Job{}, NewValidationError("job type is required")
	}
	if len(payload) == 0 {
		return Job{}, NewValidationError("payload must be a non-empty object")
	}
	if cfg.Delay < 0 {
		return Job{}, NewValidationError("delay must be non-negative, got %s", cfg.Delay)
	}

	now := time.Now().UTC()
	return Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Payload:    payload,
		Config:     cfg,
		Status:     StatusPending,
		CreatedAt:  now,
		EligibleAt: now.Add(cfg.Delay),
	}, nil
}

// Start transitions PENDING → RUNNING.
func (j Job) Start() (Job, error) {
	if j.Status != StatusPending {
		return j, NewInvalidTransitionError("start", j.Status)
	}

	now := time.Now().UTC()
	j.Status = StatusRunning
	j.StartedAt = &now
	return j, nil
}

// Complete transitions RUNNING → COMPLETED with the given result.
func (j Job) Complete(result *Result) (Job, error) {
	return j.finish("complete", StatusCompleted, result)
}

// Fail transitions RUNNING → FAILED with the given result.
func (j Job) Fail(result *Result) (Job, error) {
	return j.finish("fail", StatusFailed, result)
}

func (j Job) finish(op string, status Status, result *Result) (Job, error) {
	if j.Status != StatusRunning {
		return j, NewInvalidTransitionError(op, j.Status)
	}

	// Single time read so ExecutionTime matches FinishedAt exactly.
	now := time.Now().UTC()
	j.Status = status
	j.Result = result
	j.FinishedAt = &now
	j.ExecutionTime = now.Sub(*j.StartedAt)
	return j, nil
}

// Cancel transitions PENDING → CANCELLED with the fixed cancellation
// result. Jobs that already started cannot be cancelled.
func (j Job) Cancel() (Job, error) {
	if j.Status != StatusPending {
		return j, NewInvalidTransitionError("cancel", j.Status)
	}

	now := time.Now().UTC()
	j.Status = StatusCancelled
	j.Result = ErrorResult("Job was cancelled", CodeCancelled, nil)
	j.FinishedAt = &now
	return j, nil
}

// Eligible reports whether the job's delay has elapsed at the given
// instant. Status is not checked here; callers filter on PENDING.
func (j Job) Eligible(now time.Time) bool {
	return !now.Before(j.EligibleAt)
}

// Terminal reports whether the job reached a terminal status.
func (j Job) Terminal() bool {
	return j.Status.Terminal()
}
