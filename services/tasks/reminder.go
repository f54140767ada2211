package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicops/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the delayed reminder task. The reminder ID doubles as the asynq task
// ID so a reminder can only be enqueued once.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(payload.ReminderID),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes a reminder task body.
func ParseReminderPayload(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	if p.AppointmentID == "" || p.ReminderID == "" {
		return p, fmt.Errorf("invalid reminder payload: appointment and reminder IDs are required")
	}
	return p, nil
}

// ReminderScheduler queues a reminder for delivery at a given time.
type ReminderScheduler interface {
	Schedule(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) (taskID string, err error)
}

// AsynqReminderScheduler enqueues reminders on the asynq queue.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

func (s *AsynqReminderScheduler) Schedule(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) (string, error) {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return "", err
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue reminder %s: %w", payload.ReminderID, err)
	}
	return info.ID, nil
}
