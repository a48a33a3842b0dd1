package job

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrJobNotFound is returned when a job id is unknown to the store
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when inserting a job whose id already exists
	ErrDuplicateJob = errors.New("job already exists")
)

// ValidationError reports invalid submission input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Msg
}

// NewValidationError creates a new validation error
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports an operation attempted from a status
// that does not permit it. The message always names the current status.
type InvalidTransitionError struct {
	Op     string
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s job in status %s", e.Op, e.Status)
}

// NewInvalidTransitionError creates a new invalid transition error
func NewInvalidTransitionError(op string, status Status) error {
	return &InvalidTransitionError{Op: op, Status: status}
}

// NotEligibleError reports explicit processing requested before the
// job's delay elapsed.
type NotEligibleError struct {
	ID         string
	EligibleAt time.Time
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("job %s is not eligible until %s", e.ID, e.EligibleAt.Format(time.RFC3339))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// IsNotEligible reports whether err is a NotEligibleError.
func IsNotEligible(err error) bool {
	var ne *NotEligibleError
	return errors.As(err, &ne)
}
