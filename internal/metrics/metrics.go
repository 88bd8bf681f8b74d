package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	startTime time.Time
	registry  *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec

	remindersScheduled prometheus.Gauge
	remindersFired     *prometheus.CounterVec
	dailyUpdates       prometheus.Counter
	upcomingDoses      prometheus.Gauge

	// mirrored for the JSON snapshot
	requestsTotal   atomic.Int64
	requestsFailed  atomic.Int64
	remindersSent   atomic.Int64
	remindersFailed atomic.Int64
	scheduled       atomic.Int64
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// New builds a Metrics with its own registry so tests never collide.
func New() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),

		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arogya",
			Name:      "backend_requests_total",
			Help:      "Backend REST requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arogya",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend REST request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "arogya",
			Name:      "backend_breaker_open",
			Help:      "1 while the backend circuit breaker is open.",
		}, []string{"breaker"}),
		remindersScheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arogya",
			Name:      "reminders_scheduled",
			Help:      "Reminder jobs currently registered.",
		}),
		remindersFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arogya",
			Name:      "reminders_fired_total",
			Help:      "Reminders delivered by outcome.",
		}, []string{"outcome"}),
		dailyUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arogya",
			Name:      "plan_daily_updates_total",
			Help:      "Medicine plans whose remaining duration was decremented.",
		}),
		upcomingDoses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arogya",
			Name:      "vaccine_upcoming_doses",
			Help:      "Upcoming vaccine doses at the last digest.",
		}),
	}

	m.registry.MustRegister(
		m.backendRequests,
		m.backendLatency,
		m.breakerState,
		m.remindersScheduled,
		m.remindersFired,
		m.dailyUpdates,
		m.upcomingDoses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBackendRequest counts one backend call. outcome is ok, transport, auth, shape or rejected.
func (m *Metrics) RecordBackendRequest(endpoint, outcome string, d time.Duration) {
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	m.requestsTotal.Add(1)
	if outcome != "ok" {
		m.requestsFailed.Add(1)
	}
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(name).Set(v)
}

func (m *Metrics) SetRemindersScheduled(count int) {
	m.remindersScheduled.Set(float64(count))
	m.scheduled.Store(int64(count))
}

func (m *Metrics) RecordReminderFired(success bool) {
	if success {
		m.remindersFired.WithLabelValues("delivered").Inc()
		m.remindersSent.Add(1)
		return
	}
	m.remindersFired.WithLabelValues("failed").Inc()
	m.remindersFailed.Add(1)
}

func (m *Metrics) RecordDailyUpdates(n int) {
	m.dailyUpdates.Add(float64(n))
}

func (m *Metrics) SetUpcomingDoses(n int) {
	m.upcomingDoses.Set(float64(n))
}

type Snapshot struct {
	Uptime             time.Duration `json:"uptime"`
	RequestsTotal      int64         `json:"requests_total"`
	RequestsFailed     int64         `json:"requests_failed"`
	RemindersScheduled int64         `json:"reminders_scheduled"`
	RemindersSent      int64         `json:"reminders_sent"`
	RemindersFailed    int64         `json:"reminders_failed"`
	SuccessRate        float64       `json:"success_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:             time.Since(m.startTime),
		RequestsTotal:      m.requestsTotal.Load(),
		RequestsFailed:     m.requestsFailed.Load(),
		RemindersScheduled: m.scheduled.Load(),
		RemindersSent:      m.remindersSent.Load(),
		RemindersFailed:    m.remindersFailed.Load(),
	}
	if s.RequestsTotal > 0 {
		s.SuccessRate = float64(s.RequestsTotal-s.RequestsFailed) / float64(s.RequestsTotal) * 100
	}
	return s
}
