package notifications

import (
	"context"
	"time"
)

type SendDueTaskReminderInput struct {
	Email        string
	TaskID       string
	TaskTitle    string
	ProjectTitle string
	DueDate      time.Time
}

type Notifier interface {
	SendDueTaskReminder(ctx context.Context, input SendDueTaskReminderInput) error
}
