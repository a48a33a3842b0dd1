package store

import (
	"context"
	"time"

	"github.com/cuongbtq/jobsched/internal/job"
)

// Store is the repository boundary between the core and whatever holds
// job snapshots. The scheduler and the service consume exactly this
// contract and assume nothing about the backing collection.
type Store interface {
	// Insert adds a new snapshot. Fails with job.ErrDuplicateJob if the
	// id is already present.
	Insert(ctx context.Context, j job.Job) error

	// Replace overwrites the snapshot for j.ID. Fails with
	// job.ErrJobNotFound if the id is absent.
	Replace(ctx context.Context, j job.Job) error

	// CompareAndReplace overwrites the snapshot for j.ID only if the
	// stored snapshot's status equals expect. This is the atomic
	// claim/cancel primitive: the status check and the write are
	// indivisible, so two concurrent claimers cannot both win. Fails
	// with job.ErrJobNotFound on an absent id and with an
	// InvalidTransitionError naming the current status on a mismatch.
	CompareAndReplace(ctx context.Context, j job.Job, expect job.Status) error

	// Get returns the snapshot for id, or job.ErrJobNotFound.
	Get(ctx context.Context, id string) (job.Job, error)

	// ListByStatus returns all snapshots, filtered by status when
	// status is non-empty, ordered by creation time.
	ListByStatus(ctx context.Context, status job.Status) ([]job.Job, error)

	// NextEligible returns the PENDING snapshot whose delay has elapsed
	// at now with the smallest CreatedAt, ties broken by insertion
	// order. The second return is false when no job is eligible.
	NextEligible(ctx context.Context, now time.Time) (job.Job, bool, error)

	// CountByStatus returns a count per status value.
	CountByStatus(ctx context.Context) (map[job.Status]int, error)
}
