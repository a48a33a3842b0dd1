package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuongbtq/jobsched/internal/job"
)

// entry pairs a snapshot with its insertion sequence number. The
// sequence is the deterministic tiebreak for jobs sharing a CreatedAt.
type entry struct {
	job job.Job
	seq uint64
}

// MemoryStore is an in-memory Store keyed by job id. All operations
// take the mutex, so reads used for claim decisions and the writes that
// follow them through CompareAndReplace are indivisible.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]entry
	nextSeq uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]entry),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, j job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := s.jobs[j.ID]; ok {
		return job.ErrDuplicateJob
	}

	s.jobs[j.ID] = entry{job: j, seq: s.nextSeq}
	s.nextSeq++
	return nil
}

func (s *MemoryStore) Replace(ctx context.Context, j job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	cur, ok := s.jobs[j.ID]
	if !ok {
		return job.ErrJobNotFound
	}

	s.jobs[j.ID] = entry{job: j, seq: cur.seq}
	return nil
}

func (s *MemoryStore) CompareAndReplace(ctx context.Context, j job.Job, expect job.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	cur, ok := s.jobs[j.ID]
	if !ok {
		return job.ErrJobNotFound
	}

	if cur.job.Status != expect {
		return job.NewInvalidTransitionError("replace", cur.job.Status)
	}

	s.jobs[j.ID] = entry{job: j, seq: cur.seq}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return job.Job{}, err
	}

	e, ok := s.jobs[id]
	if !ok {
		return job.Job{}, job.ErrJobNotFound
	}
	return e.job, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status job.Status) ([]job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(s.jobs))
	for _, e := range s.jobs {
		if status != "" && e.job.Status != status {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, k int) bool {
		if !entries[i].job.CreatedAt.Equal(entries[k].job.CreatedAt) {
			return entries[i].job.CreatedAt.Before(entries[k].job.CreatedAt)
		}
		return entries[i].seq < entries[k].seq
	})

	jobs := make([]job.Job, len(entries))
	for i, e := range entries {
		jobs[i] = e.job
	}
	return jobs, nil
}

// NextEligible is a fresh two-predicate scan (PENDING and delay
// elapsed) followed by a min-by-CreatedAt selection, linear in the
// collection size. No precomputed index to keep stale.
func (s *MemoryStore) NextEligible(ctx context.Context, now time.Time) (job.Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return job.Job{}, false, err
	}

	var best entry
	found := false
	for _, e := range s.jobs {
		if e.job.Status != job.StatusPending || !e.job.Eligible(now) {
			continue
		}
		if !found || earlier(e, best) {
			best = e
			found = true
		}
	}

	return best.job, found, nil
}

func earlier(a, b entry) bool {
	if !a.job.CreatedAt.Equal(b.job.CreatedAt) {
		return a.job.CreatedAt.Before(b.job.CreatedAt)
	}
	return a.seq < b.seq
}

func (s *MemoryStore) CountByStatus(ctx context.Context) (map[job.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[job.Status]int)
	for _, e := range s.jobs {
		counts[e.job.Status]++
	}
	return counts, nil
}

// Size returns the number of stored snapshots.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
