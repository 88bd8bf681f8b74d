// Package api is the local HTTP gateway for dashboards: plans, upcoming doses and metrics.
package api

import (
	"context"

	"github.com/gmsas95/arogya-cli/internal/config"
	"github.com/gmsas95/arogya-cli/internal/cron"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/gmsas95/arogya-cli/internal/reminder"
	"github.com/gmsas95/arogya-cli/internal/store"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// History lists delivered reminders.
type History interface {
	RecentReminders(limit int) ([]store.ReminderLog, error)
}

// Jobs lists what the scheduler holds.
type Jobs interface {
	Scheduled() []cron.Job
}

// Pinger probes the backend.
type Pinger interface {
	Health(ctx context.Context) error
}

// Deps are the services the gateway exposes. Nil optional fields disable their routes.
type Deps struct {
	Plans   *reminder.Service
	Notices reminder.NoticeSource
	History History
	Jobs    Jobs
	Backend Pinger
	Metrics *metrics.Metrics
}

type Server struct {
	app     *fiber.App
	config  *config.Config
	deps    Deps
	logger  *zap.Logger
	version string
}

type planRequest struct {
	Name             string `json:"name"`
	Dosage           string `json:"dosage"`
	Duration         any    `json:"duration"` // number or numeric string
	FoodTiming       string `json:"food_timing"`
	NotificationTime string `json:"notification_time"`
}

type processResponse struct {
	Updated int `json:"updated"`
}

type jobResponse struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Spec    string `json:"spec"`
	System  bool   `json:"system"`
	NextRun string `json:"next_run,omitempty"`
}
