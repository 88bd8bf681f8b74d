// Package app wires configuration, storage, the backend client and the reminder daemon together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmsas95/arogya-cli/internal/api"
	"github.com/gmsas95/arogya-cli/internal/backend"
	"github.com/gmsas95/arogya-cli/internal/config"
	"github.com/gmsas95/arogya-cli/internal/cron"
	"github.com/gmsas95/arogya-cli/internal/dates"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/gmsas95/arogya-cli/internal/notify"
	"github.com/gmsas95/arogya-cli/internal/reminder"
	"github.com/gmsas95/arogya-cli/internal/session"
	"github.com/gmsas95/arogya-cli/internal/store"
	"github.com/gmsas95/arogya-cli/internal/vaccine"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	dailyJobKey  = "system:daily"
	digestJobKey = "system:digest"
)

type App struct {
	Config   *config.Config
	Store    *store.Store
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Session  *session.Session
	Backend  *backend.Client
	Vaccines *vaccine.Service
	Notifier notify.Notifier
	Runner   *cron.Runner
	Plans    *reminder.Service
	Digest   *reminder.Digest
	Clock    dates.Clock
	Version  string
}

// Options override collaborators, mostly for tests.
type Options struct {
	Clock    dates.Clock
	Notifier notify.Notifier
	Tokens   session.TokenProvider
	Metrics  *metrics.Metrics
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger, version string, opts Options) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = dates.SystemClock{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Default()
	}
	if opts.Tokens == nil {
		opts.Tokens = tokenProvider(st)
	}
	if opts.Notifier == nil {
		opts.Notifier = BuildNotifier(cfg.Channels, logger)
	}

	plans, err := reminder.NewPlanStore(st.DB())
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Store:    st,
		Logger:   logger,
		Metrics:  opts.Metrics,
		Session:  session.New(opts.Tokens),
		Notifier: opts.Notifier,
		Clock:    opts.Clock,
		Version:  version,
	}
	a.Backend = backend.NewClient(cfg.Backend, a.Session, a.Metrics, logger)
	a.Vaccines = vaccine.NewService(a.Backend, logger, vaccine.Options{
		DueSoonDays:     cfg.Vaccines.DueSoonDays,
		DedupeByVaccine: cfg.Vaccines.DedupeByVaccine,
		Clock:           opts.Clock,
		Location:        loc,
	})
	a.Runner = cron.NewRunner(cron.Config{Location: loc}, reminder.Delivery(a.Notifier, st, logger), a.Metrics, logger)

	ropts := reminder.Options{Clock: opts.Clock, Location: loc}
	a.Plans = reminder.NewService(plans, a.Runner, ropts, a.Metrics, logger)
	a.Digest = reminder.NewDigest(a.Vaccines, a.Notifier, st, ropts, a.Metrics, logger)
	return a, nil
}

// tokenProvider prefers an env-supplied token over the stored one.
func tokenProvider(st *store.Store) session.TokenProvider {
	if token := config.ResolveEnvWithAliases("AROGYA_SESSION_TOKEN"); token != "" {
		return session.NewStaticToken(token)
	}
	return session.NewStoreTokenProvider(st)
}

// BuildNotifier fans out to the log and every enabled channel. A channel that fails to
// initialize is logged and skipped.
func BuildNotifier(cfg config.ChannelsConfig, logger *zap.Logger) notify.Notifier {
	out := notify.Multi{notify.NewLog(logger)}

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Error("Failed to create Telegram notifier", zap.Error(err))
		} else {
			out = append(out, tg)
			logger.Info("Telegram notifier enabled", zap.Int64("chat_id", cfg.Telegram.ChatID))
		}
	}

	if cfg.Discord.Enabled {
		dc, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			logger.Error("Failed to create Discord notifier", zap.Error(err))
		} else {
			out = append(out, dc)
			logger.Info("Discord notifier enabled", zap.String("channel_id", cfg.Discord.ChannelID))
		}
	}
	return out
}

// RegisterSystemJobs schedules the daily maintenance pass and the vaccine digest.
func (a *App) RegisterSystemJobs(cfg config.RemindersConfig) error {
	if err := a.Runner.ScheduleFunc(dailyJobKey, cfg.DailyCron, func(ctx context.Context) error {
		_, err := a.Plans.ProcessDailyUpdates(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("daily job: %w", err)
	}

	if cfg.DigestCron == "" {
		a.Runner.Cancel(digestJobKey)
		return nil
	}
	if err := a.Runner.ScheduleFunc(digestJobKey, cfg.DigestCron, a.Digest.Run); err != nil {
		return fmt.Errorf("digest job: %w", err)
	}
	return nil
}

// StartDaemon catches up on missed days, restores reminders and starts the scheduler.
func (a *App) StartDaemon(ctx context.Context) error {
	if _, err := a.Plans.ProcessDailyUpdates(ctx); err != nil {
		a.Logger.Error("Initial daily update failed", zap.Error(err))
	}
	n, err := a.Plans.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore reminders: %w", err)
	}
	if err := a.RegisterSystemJobs(a.Config.Reminders); err != nil {
		return err
	}
	if err := a.Runner.Start(); err != nil {
		return err
	}
	a.Logger.Info("Reminder daemon started",
		zap.Int("reminders", n),
		zap.String("daily_cron", a.Config.Reminders.DailyCron),
		zap.String("digest_cron", a.Config.Reminders.DigestCron))
	return nil
}

// RunDaemon runs the scheduler until ctx is done. A ctx cancelled before startup returns nil.
func (a *App) RunDaemon(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := a.StartDaemon(ctx); err != nil {
		if ctx.Err() != nil {
			a.Runner.Stop()
			return nil
		}
		return err
	}
	<-ctx.Done()
	a.Logger.Info("Shutting down...")
	a.Runner.Stop()
	return nil
}

// Server builds the local gateway over the app's services.
func (a *App) Server() *api.Server {
	return api.New(a.Config, api.Deps{
		Plans:   a.Plans,
		Notices: a.Vaccines,
		History: a.Store,
		Jobs:    a.Runner,
		Backend: a.Backend,
		Metrics: a.Metrics,
	}, a.Version, a.Logger)
}

// RunServer runs the daemon and the gateway until ctx is done. Edits to the config file
// re-register the system jobs.
func (a *App) RunServer(ctx context.Context, configPath string) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := a.StartDaemon(ctx); err != nil {
		if ctx.Err() != nil {
			a.Runner.Stop()
			return nil
		}
		return err
	}

	if err := config.Watch(configPath, a.Config.Storage.DataDir, a.Logger, a.Reload); err != nil {
		a.Logger.Warn("Config watch disabled", zap.Error(err))
	}

	server := a.Server()
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	a.Logger.Info("Server started",
		zap.String("address", a.Config.Server.Address),
		zap.Int("port", a.Config.Server.Port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
		a.Logger.Error("Server error", zap.Error(serveErr))
	}

	a.Logger.Info("Shutting down...")
	a.Runner.Stop()
	if err := server.Shutdown(); err != nil {
		a.Logger.Error("Server shutdown error", zap.Error(err))
	}
	return serveErr
}

// Reload applies the parts of a changed config that can change at runtime.
func (a *App) Reload(cfg *config.Config) {
	if err := a.RegisterSystemJobs(cfg.Reminders); err != nil {
		a.Logger.Error("Failed to apply reminder schedule", zap.Error(err))
		return
	}
	a.Config.Reminders.DailyCron = cfg.Reminders.DailyCron
	a.Config.Reminders.DigestCron = cfg.Reminders.DigestCron
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// PingBackend checks connectivity with a short deadline.
func (a *App) PingBackend(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := a.Backend.Health(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("backend at %s did not answer in time", a.Backend.BaseURL())
	}
	return err
}
