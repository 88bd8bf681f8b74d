// Package cron runs keyed recurring jobs: daily reminders and system maintenance.
package cron

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gmsas95/arogya-cli/internal/metrics"
	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config holds runner configuration
type Config struct {
	Location   *time.Location
	JobTimeout time.Duration // per delivery or system job
}

// Job is a registered reminder or system job.
type Job struct {
	Key     string
	Title   string
	Body    string
	Spec    string
	System  bool
	NextRun time.Time
}

// Deliver sends a fired reminder somewhere.
type Deliver func(ctx context.Context, job Job) error

type entry struct {
	id  robfig.EntryID
	job Job
	fn  func(ctx context.Context) error
}

// Runner keeps at most one cron entry per key.
type Runner struct {
	config  Config
	cron    *robfig.Cron
	deliver Deliver
	metrics *metrics.Metrics
	logger  *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	entries map[string]*entry
	running bool
}

// NewRunner creates a new runner. Jobs may be registered before Start.
func NewRunner(config Config, deliver Deliver, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = time.Minute
	}
	if m == nil {
		m = metrics.Default()
	}
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		config: config,
		cron: robfig.New(
			robfig.WithLocation(config.Location),
			robfig.WithLogger(cl),
			robfig.WithChain(robfig.Recover(cl)),
		),
		deliver: deliver,
		metrics: m,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

// DailySpec turns HH:MM into a five-field cron spec.
func DailySpec(timeOfDay string) (string, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(timeOfDay), ":")
	if !ok {
		return "", fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 || len(h) > 2 {
		return "", fmt.Errorf("invalid hour in %q", timeOfDay)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return "", fmt.Errorf("invalid minute in %q", timeOfDay)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Schedule registers a daily reminder at timeOfDay, replacing any job with the same key.
func (r *Runner) Schedule(key, title, body, timeOfDay string) error {
	spec, err := DailySpec(timeOfDay)
	if err != nil {
		return err
	}
	job := Job{Key: key, Title: title, Body: body, Spec: spec}
	return r.add(job, func(ctx context.Context) error {
		return r.deliver(ctx, job)
	})
}

// ScheduleFunc registers a system job on a raw cron spec, replacing any job with the same key.
func (r *Runner) ScheduleFunc(key, spec string, fn func(ctx context.Context) error) error {
	return r.add(Job{Key: key, Title: key, Spec: spec, System: true}, fn)
}

func (r *Runner) add(job Job, fn func(ctx context.Context) error) error {
	if job.Key == "" {
		return fmt.Errorf("job key is required")
	}
	sched, err := robfig.ParseStandard(job.Spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", job.Spec, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// a bad spec above leaves the previous entry in place
	if old, ok := r.entries[job.Key]; ok {
		r.cron.Remove(old.id)
		delete(r.entries, job.Key)
	}

	e := &entry{job: job, fn: fn}
	e.id = r.cron.Schedule(sched, robfig.FuncJob(func() { r.run(e) }))
	r.entries[job.Key] = e
	r.updateGauge()

	r.logger.Debug("Job scheduled",
		zap.String("key", job.Key),
		zap.String("spec", job.Spec),
		zap.Bool("system", job.System))
	return nil
}

// Cancel removes the job for key. It reports whether one existed.
func (r *Runner) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return false
	}
	r.cron.Remove(e.id)
	delete(r.entries, key)
	r.updateGauge()
	r.logger.Debug("Job cancelled", zap.String("key", key))
	return true
}

// Has reports whether key is registered.
func (r *Runner) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Scheduled lists registered jobs sorted by key.
func (r *Runner) Scheduled() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]Job, 0, len(r.entries))
	for _, e := range r.entries {
		job := e.job
		job.NextRun = r.cron.Entry(e.id).Next
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Key < jobs[j].Key })
	return jobs
}

// Count returns the number of reminder jobs, excluding system jobs.
func (r *Runner) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reminderCount()
}

func (r *Runner) reminderCount() int {
	n := 0
	for _, e := range r.entries {
		if !e.job.System {
			n++
		}
	}
	return n
}

// callers hold mu
func (r *Runner) updateGauge() {
	r.metrics.SetRemindersScheduled(r.reminderCount())
}

// Fire runs the job for key immediately.
func (r *Runner) Fire(key string) error {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no job scheduled for %q", key)
	}
	return r.run(e)
}

func (r *Runner) run(e *entry) error {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.JobTimeout)
	defer cancel()

	err := e.fn(ctx)
	if !e.job.System {
		r.metrics.RecordReminderFired(err == nil)
	}
	if err != nil {
		r.logger.Error("Job failed",
			zap.String("key", e.job.Key),
			zap.Error(err))
		return err
	}
	r.logger.Info("Job completed", zap.String("key", e.job.Key))
	return nil
}

// Start starts the scheduler loop
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cron runner already running")
	}
	if r.ctx.Err() != nil {
		return fmt.Errorf("cron runner stopped")
	}
	r.running = true
	r.cron.Start()
	r.logger.Info("Cron runner started", zap.Int("jobs", len(r.entries)))
	return nil
}

// Stop stops the scheduler and waits for running jobs. A stopped runner is not restarted.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.cancel()
	r.logger.Info("Cron runner stopped")
}

// IsRunning returns whether the runner is active
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// cronLogger adapts zap to robfig's logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
