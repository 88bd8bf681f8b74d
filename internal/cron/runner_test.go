package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu   sync.Mutex
	jobs []Job
	err  error
}

func (r *recorder) deliver(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return r.err
}

func newTestRunner(t *testing.T) (*Runner, *recorder, *metrics.Metrics) {
	t.Helper()
	rec := &recorder{}
	m := metrics.New()
	r := NewRunner(Config{Location: time.UTC}, rec.deliver, m, zap.NewNop())
	t.Cleanup(r.Stop)
	return r, rec, m
}

func TestDailySpec(t *testing.T) {
	tests := map[string]string{
		"08:30": "30 8 * * *",
		"9:05":  "5 9 * * *",
		"00:00": "0 0 * * *",
		"23:59": "59 23 * * *",
	}
	for in, want := range tests {
		got, err := DailySpec(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "24:00", "12:60", "12:5", "noon", "123:00"} {
		_, err := DailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestScheduleIsKeyedUpsert(t *testing.T) {
	r, _, m := newTestRunner(t)

	require.NoError(t, r.Schedule("plan_1", "Medicine Reminder", "first", "08:00"))
	require.NoError(t, r.Schedule("plan_1", "Medicine Reminder", "second", "20:15"))
	require.NoError(t, r.Schedule("plan_2", "Medicine Reminder", "other", "09:00"))

	jobs := r.Scheduled()
	require.Len(t, jobs, 2)
	assert.Equal(t, "plan_1", jobs[0].Key)
	assert.Equal(t, "second", jobs[0].Body)
	assert.Equal(t, "15 20 * * *", jobs[0].Spec)
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, int64(2), m.Snapshot().RemindersScheduled)
}

func TestCancel(t *testing.T) {
	r, _, m := newTestRunner(t)
	require.NoError(t, r.Schedule("plan_1", "t", "b", "08:00"))

	assert.True(t, r.Cancel("plan_1"))
	assert.False(t, r.Cancel("plan_1"), "cancelling an absent key is a no-op")
	assert.False(t, r.Has("plan_1"))
	assert.Equal(t, int64(0), m.Snapshot().RemindersScheduled)
}

func TestScheduleRejectsBadInput(t *testing.T) {
	r, _, _ := newTestRunner(t)

	assert.Error(t, r.Schedule("plan_1", "t", "b", "25:00"))
	assert.Error(t, r.Schedule("", "t", "b", "08:00"))
	assert.Error(t, r.ScheduleFunc("sys", "not a spec", func(context.Context) error { return nil }))
	assert.Empty(t, r.Scheduled())

	require.NoError(t, r.Schedule("plan_1", "t", "b", "08:00"))
	assert.Error(t, r.ScheduleFunc("plan_1", "bogus", func(context.Context) error { return nil }))
	assert.True(t, r.Has("plan_1"), "a rejected spec keeps the existing job")
}

func TestFireDeliversAndCounts(t *testing.T) {
	r, rec, m := newTestRunner(t)
	require.NoError(t, r.Schedule("plan_1", "Medicine Reminder", "Time to take your Vitamin D", "08:00"))

	require.NoError(t, r.Fire("plan_1"))
	require.Len(t, rec.jobs, 1)
	assert.Equal(t, "Time to take your Vitamin D", rec.jobs[0].Body)
	assert.Equal(t, int64(1), m.Snapshot().RemindersSent)

	rec.err = errors.New("telegram down")
	assert.Error(t, r.Fire("plan_1"))
	assert.Equal(t, int64(1), m.Snapshot().RemindersFailed)

	assert.Error(t, r.Fire("missing"))
}

func TestSystemJobsAreNotReminders(t *testing.T) {
	r, rec, m := newTestRunner(t)
	ran := 0
	require.NoError(t, r.ScheduleFunc("system:daily", "5 0 * * *", func(context.Context) error {
		ran++
		return nil
	}))

	assert.Equal(t, 0, r.Count())
	require.NoError(t, r.Fire("system:daily"))
	assert.Equal(t, 1, ran)
	assert.Empty(t, rec.jobs)
	assert.Equal(t, int64(0), m.Snapshot().RemindersSent)
}

func TestStartStop(t *testing.T) {
	r, _, _ := newTestRunner(t)
	require.NoError(t, r.Schedule("plan_1", "t", "b", "08:00"))

	require.NoError(t, r.Start())
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start())

	assert.False(t, r.Scheduled()[0].NextRun.IsZero())

	r.Stop()
	assert.False(t, r.IsRunning())
	assert.Error(t, r.Start())
}
