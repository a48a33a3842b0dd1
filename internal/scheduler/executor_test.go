package scheduler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobsched/internal/job"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunningJob(t *testing.T, jobType string) job.Job {
	t.Helper()
	j, err := job.New(jobType, map[string]any{"key": "value"}, job.Config{})
	require.NoError(t, err)
	running, err := j.Start()
	require.NoError(t, err)
	return running
}

func TestNewExecutor_Defaults(t *testing.T) {
	e := NewExecutor(&ExecutorConfig{Logger: testLogger()})

	assert.Equal(t, DefaultMinDuration, e.minDuration)
	assert.Equal(t, DefaultMaxDuration, e.maxDuration)
	assert.InDelta(t, DefaultFailureRate, e.failureRate, 1e-9)
}

func TestExecute_Success(t *testing.T) {
	e := NewExecutor(&ExecutorConfig{
		Logger:      testLogger(),
		MinDuration: time.Millisecond,
		MaxDuration: 5 * time.Millisecond,
		FailureRate: 0,
		Seed:        1,
	})

	running := newRunningJob(t, "email")

	final, err := e.Execute(running)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, job.ResultKindSuccess, final.Result.Kind)
	assert.Equal(t, "Email sent successfully", final.Result.Message)
	assert.Equal(t, "email", final.Result.Data["job_type"])
	assert.Contains(t, final.Result.Data, "completed_at")
	require.NotNil(t, final.FinishedAt)
	assert.GreaterOrEqual(t, final.ExecutionTime, time.Millisecond)
}

func TestExecute_Failure(t *testing.T) {
	e := NewExecutor(&ExecutorConfig{
		Logger:      testLogger(),
		MinDuration: time.Millisecond,
		MaxDuration: 2 * time.Millisecond,
		FailureRate: 1,
		Seed:        1,
	})

	running := newRunningJob(t, "report")

	final, err := e.Execute(running)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, job.ResultKindError, final.Result.Kind)
	assert.Equal(t, "Failed to generate report", final.Result.Message)
	assert.Contains(t, failureCodes, final.Result.Code)
	assert.Equal(t, "report", final.Result.Details["job_type"])
}

func TestExecute_RequiresRunning(t *testing.T) {
	e := NewExecutor(&ExecutorConfig{
		Logger:      testLogger(),
		MinDuration: time.Millisecond,
		MaxDuration: time.Millisecond,
		FailureRate: 0,
	})

	pending, err := job.New("email", map[string]any{"key": "value"}, job.Config{})
	require.NoError(t, err)

	_, err = e.Execute(pending)
	require.Error(t, err)
	assert.True(t, job.IsInvalidTransition(err))
}

func TestDraw_Distribution(t *testing.T) {
	e := NewExecutor(&ExecutorConfig{
		Logger:      testLogger(),
		MinDuration: 100 * time.Millisecond,
		MaxDuration: 2000 * time.Millisecond,
		FailureRate: 0.10,
		Seed:        42,
	})

	const samples = 1000
	failures := 0
	for i := 0; i < samples; i++ {
		duration, failed, code := e.draw()

		assert.GreaterOrEqual(t, duration, e.minDuration)
		assert.LessOrEqual(t, duration, e.maxDuration)

		if failed {
			failures++
			assert.Contains(t, failureCodes, code)
		} else {
			assert.Zero(t, code)
		}
	}

	// Statistical tolerance band around the 10% rate, not exact equality.
	fraction := float64(failures) / float64(samples)
	assert.InDelta(t, 0.10, fraction, 0.03, "observed failure fraction %f", fraction)
}

func TestMessages(t *testing.T) {
	tests := []struct {
		jobType     string
		wantSuccess string
		wantFailure string
	}{
		{"email", "Email sent successfully", "Failed to send email"},
		{"report", "Report generated successfully", "Failed to generate report"},
		{"export", "Data export finished successfully", "Failed to export data"},
		{"notification", "Notification delivered successfully", "Failed to deliver notification"},
		{"transcode", `Job of type "transcode" completed successfully`, `Job of type "transcode" failed`},
	}

	for _, tt := range tests {
		t.Run(tt.jobType, func(t *testing.T) {
			assert.Equal(t, tt.wantSuccess, successMessage(tt.jobType))
			assert.Equal(t, tt.wantFailure, failureMessage(tt.jobType))
		})
	}
}
