// Package notify delivers fired reminders and digests to the configured channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Message is one delivery. Key identifies the job that produced it.
type Message struct {
	Key   string
	Title string
	Body  string
}

func (m Message) Text() string {
	if m.Title == "" {
		return m.Body
	}
	return fmt.Sprintf("%s\n%s", m.Title, m.Body)
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Log writes every message to the logger. It never fails.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, msg Message) error {
	l.logger.Info("Reminder",
		zap.String("key", msg.Key),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body))
	return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
