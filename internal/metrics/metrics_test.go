package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m1 := Default()
	m2 := Default()

	if m1 != m2 {
		t.Error("Default() should return same instance")
	}
}

func TestRecordBackendRequest(t *testing.T) {
	m := New()
	m.RecordBackendRequest("vaccinations", "ok", 20*time.Millisecond)
	m.RecordBackendRequest("vaccinations", "transport", time.Second)
	m.RecordBackendRequest("doctors", "ok", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("vaccinations", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("vaccinations", "transport")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.backendLatency))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestsTotal)
	assert.Equal(t, int64(1), snap.RequestsFailed)
	assert.InDelta(t, 66.66, snap.SuccessRate, 0.1)
}

func TestReminderMetrics(t *testing.T) {
	m := New()
	m.SetRemindersScheduled(3)
	m.RecordReminderFired(true)
	m.RecordReminderFired(true)
	m.RecordReminderFired(false)
	m.RecordDailyUpdates(4)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.remindersScheduled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.remindersFired.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersFired.WithLabelValues("failed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.dailyUpdates))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RemindersScheduled)
	assert.Equal(t, int64(2), snap.RemindersSent)
	assert.Equal(t, int64(1), snap.RemindersFailed)
}

func TestBreakerGauge(t *testing.T) {
	m := New()
	m.SetBreakerOpen("backend", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.breakerState.WithLabelValues("backend")))
	m.SetBreakerOpen("backend", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.breakerState.WithLabelValues("backend")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetUpcomingDoses(2)
	m.RecordBackendRequest("health", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "arogya_vaccine_upcoming_doses 2"))
	assert.True(t, strings.Contains(body, `arogya_backend_requests_total{endpoint="health",outcome="ok"} 1`))
}

func TestSnapshotEmpty(t *testing.T) {
	m := New()
	snap := m.Snapshot()

	assert.Equal(t, int64(0), snap.RequestsTotal)
	assert.Equal(t, 0.0, snap.SuccessRate)
	assert.GreaterOrEqual(t, snap.Uptime, time.Duration(0))
}
