package dto

import (
	"time"

	"github.com/cuongbtq/jobsched/internal/job"
)

type CreateJobRequest struct {
	Type    string         `json:"type" binding:"required"`
	Payload map[string]any `json:"payload" binding:"required"`
	Config  JobConfig      `json:"config"`
}

type JobConfig struct {
	DelayMs int64 `json:"delay_ms"`
}

type JobResponse struct {
	ID              string         `json:"id"`
	Status          string         `json:"status"`
	Type            string         `json:"type"`
	Payload         map[string]any `json:"payload"`
	Config          JobConfig      `json:"config"`
	CreatedAt       string         `json:"created_at"`
	EligibleAt      string         `json:"eligible_at"`
	StartedAt       string         `json:"started_at,omitempty"`
	FinishedAt      string         `json:"finished_at,omitempty"`
	ExecutionTimeMs *int64         `json:"execution_time_ms,omitempty"`
	Result          *job.Result    `json:"result,omitempty"`
}

type ListJobsRequest struct {
	Status string `form:"status"`
}

type ListJobsResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Total int           `json:"total"`
}

type JobStatsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type SchedulerStatusResponse struct {
	Running bool `json:"running"`
}

// FromJob converts a snapshot into its wire representation.
func FromJob(j job.Job) JobResponse {
	resp := JobResponse{
		ID:         j.ID,
		Status:     string(j.Status),
		Type:       j.Type,
		Payload:    j.Payload,
		Config:     JobConfig{DelayMs: j.Config.Delay.Milliseconds()},
		CreatedAt:  j.CreatedAt.Format(time.RFC3339Nano),
		EligibleAt: j.EligibleAt.Format(time.RFC3339Nano),
		Result:     j.Result,
	}

	if j.StartedAt != nil {
		resp.StartedAt = j.StartedAt.Format(time.RFC3339Nano)
	}
	if j.FinishedAt != nil {
		resp.FinishedAt = j.FinishedAt.Format(time.RFC3339Nano)
		if j.StartedAt != nil {
			ms := j.ExecutionTime.Milliseconds()
			resp.ExecutionTimeMs = &ms
		}
	}

	return resp
}

// FromJobs converts a slice of snapshots.
func FromJobs(jobs []job.Job) []JobResponse {
	out := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = FromJob(j)
	}
	return out
}
