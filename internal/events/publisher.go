package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobsched/internal/job"
	"github.com/cuongbtq/jobsched/shared/rabbitmq"
)

// JobEvent is the lifecycle notification published on every status
// change a job goes through.
type JobEvent struct {
	JobID     string      `json:"job_id"`
	JobType   string      `json:"job_type"`
	Status    job.Status  `json:"status"`
	Result    *job.Result `json:"result,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewJobEvent builds the event for the given snapshot.
func NewJobEvent(j job.Job) JobEvent {
	return JobEvent{
		JobID:     j.ID,
		JobType:   j.Type,
		Status:    j.Status,
		Result:    j.Result,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher emits job lifecycle events to interested consumers.
// Publishing is best-effort: callers log failures and move on, a lost
// event never fails the operation that produced it.
type Publisher interface {
	PublishJobEvent(ctx context.Context, event JobEvent) error
}

// AMQPPublisher publishes job events to a RabbitMQ exchange.
type AMQPPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewAMQPPublisher creates a publisher backed by the given client.
func NewAMQPPublisher(client *rabbitmq.Client, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		client: client,
		logger: logger,
	}
}

func (p *AMQPPublisher) PublishJobEvent(ctx context.Context, event JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize job event: %w", err)
	}

	if err := p.client.Publish(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("Job event published",
		slog.String("job_id", event.JobID),
		slog.String("status", string(event.Status)),
	)

	return nil
}

// NopPublisher discards all events. Used when eventing is disabled.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that drops everything.
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (*NopPublisher) PublishJobEvent(context.Context, JobEvent) error {
	return nil
}
