package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		jobType   string
		payload   map[string]any
		cfg       Config
		wantErr   bool
		errString string
	}{
		{
			name:    "valid job without delay",
			jobType: "email",
			payload: map[string]any{"to": "user@example.com"},
			cfg:     Config{},
			wantErr: false,
		},
		{
			name:    "valid job with delay",
			jobType: "report",
			payload: map[string]any{"format": "pdf"},
			cfg:     Config{Delay: 5 * time.Second},
			wantErr: false,
		},
		{
			name:      "missing type",
			jobType:   "",
			payload:   map[string]any{"to": "user@example.com"},
			wantErr:   true,
			errString: "job type is required",
		},
		{
			name:      "nil payload",
			jobType:   "email",
			payload:   nil,
			wantErr:   true,
			errString: "payload must be a non-empty object",
		},
		{
			name:      "empty payload",
			jobType:   "email",
			payload:   map[string]any{},
			wantErr:   true,
			errString: "payload must be a non-empty object",
		},
		{
			name:      "negative delay",
			jobType:   "email",
			payload:   map[string]any{"to": "user@example.com"},
			cfg:       Config{Delay: -time.Second},
			wantErr:   true,
			errString: "delay must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := New(tt.jobType, tt.payload, tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.Contains(t, err.Error(), tt.errString)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, j.ID)
			assert.Equal(t, StatusPending, j.Status)
			assert.Equal(t, tt.jobType, j.Type)
			assert.Equal(t, j.CreatedAt.Add(tt.cfg.Delay), j.EligibleAt)
			assert.Nil(t, j.StartedAt)
			assert.Nil(t, j.FinishedAt)
			assert.Nil(t, j.Result)
			assert.Zero(t, j.ExecutionTime)
		})
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		j, err := New("email", map[string]any{"n": i}, Config{})
		require.NoError(t, err)
		assert.False(t, seen[j.ID], "duplicate job id %s", j.ID)
		seen[j.ID] = true
	}
}

func TestStart(t *testing.T) {
	j, err := New("email", map[string]any{"to": "user@example.com"}, Config{})
	require.NoError(t, err)

	started, err := j.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, started.Status)
	require.NotNil(t, started.StartedAt)

	// Original snapshot is untouched.
	assert.Equal(t, StatusPending, j.Status)
	assert.Nil(t, j.StartedAt)

	// A second start is rejected and returns the snapshot unchanged.
	again, err := started.Start()
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
	assert.Contains(t, err.Error(), "RUNNING")
	assert.Equal(t, started, again)
}

func TestCompleteAndFail(t *testing.T) {
	tests := []struct {
		name       string
		finish     func(Job, *Result) (Job, error)
		wantStatus Status
	}{
		{name: "complete", finish: Job.Complete, wantStatus: StatusCompleted},
		{name: "fail", finish: Job.Fail, wantStatus: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := New("email", map[string]any{"to": "user@example.com"}, Config{})
			require.NoError(t, err)

			// Not legal from PENDING.
			rejected, err := tt.finish(j, SuccessResult("done", nil))
			require.Error(t, err)
			assert.True(t, IsInvalidTransition(err))
			assert.Contains(t, err.Error(), "PENDING")
			assert.Equal(t, j, rejected)

			running, err := j.Start()
			require.NoError(t, err)

			result := SuccessResult("done", map[string]any{"job_type": "email"})
			finished, err := tt.finish(running, result)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, finished.Status)
			assert.Equal(t, result, finished.Result)
			require.NotNil(t, finished.FinishedAt)
			assert.Equal(t, finished.FinishedAt.Sub(*finished.StartedAt), finished.ExecutionTime)

			// Terminal snapshots reject further transitions.
			_, err = tt.finish(finished, result)
			require.Error(t, err)
			assert.True(t, IsInvalidTransition(err))
			assert.Contains(t, err.Error(), string(tt.wantStatus))
		})
	}
}

func TestCancel(t *testing.T) {
	j, err := New("email", map[string]any{"to": "user@example.com"}, Config{})
	require.NoError(t, err)

	cancelled, err := j.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Result)
	assert.Equal(t, ResultKindError, cancelled.Result.Kind)
	assert.Equal(t, "Job was cancelled", cancelled.Result.Message)
	assert.Equal(t, CodeCancelled, cancelled.Result.Code)
	require.NotNil(t, cancelled.FinishedAt)

	// No edge from RUNNING to CANCELLED.
	running, err := j.Start()
	require.NoError(t, err)
	rejected, err := running.Cancel()
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
	assert.Contains(t, err.Error(), "RUNNING")
	assert.Equal(t, running, rejected)

	// Cancelling twice is rejected too.
	_, err = cancelled.Cancel()
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
	assert.Contains(t, err.Error(), "CANCELLED")
}

func TestEligible(t *testing.T) {
	j, err := New("email", map[string]any{"to": "user@example.com"}, Config{Delay: time.Minute})
	require.NoError(t, err)

	assert.False(t, j.Eligible(j.CreatedAt))
	assert.False(t, j.Eligible(j.EligibleAt.Add(-time.Millisecond)))
	assert.True(t, j.Eligible(j.EligibleAt))
	assert.True(t, j.Eligible(j.EligibleAt.Add(time.Hour)))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled} {
		assert.True(t, s.Valid(), "status %s should be valid", s)
	}
	assert.False(t, Status("UNKNOWN").Valid())
	assert.False(t, Status("").Valid())
}
