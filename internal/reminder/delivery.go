package reminder

import (
	"context"

	"github.com/gmsas95/arogya-cli/internal/cron"
	"github.com/gmsas95/arogya-cli/internal/notify"
	"github.com/gmsas95/arogya-cli/internal/store"
	"go.uber.org/zap"
)

// History records fired reminders.
type History interface {
	LogReminder(entry *store.ReminderLog) error
}

// Delivery sends a fired job to n and records the outcome in h.
func Delivery(n notify.Notifier, h History, logger *zap.Logger) cron.Deliver {
	return func(ctx context.Context, job cron.Job) error {
		err := n.Notify(ctx, notify.Message{Key: job.Key, Title: job.Title, Body: job.Body})

		entry := &store.ReminderLog{Key: job.Key, Title: job.Title, Body: job.Body}
		if err != nil {
			entry.Error = err.Error()
		}
		if logErr := h.LogReminder(entry); logErr != nil {
			logger.Error("Failed to record reminder", zap.String("key", job.Key), zap.Error(logErr))
		}
		return err
	}
}
