package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	s, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// KV Tests

func TestKVRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SetKV("auth:token", []byte("abc")))

	val, err := s.GetKV("auth:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(val))

	require.NoError(t, s.SetKV("auth:token", []byte("def")))
	val, err = s.GetKV("auth:token")
	require.NoError(t, err)
	assert.Equal(t, "def", string(val))
}

func TestKVMissingKey(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetKV("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKVDelete(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SetKV("digest:last", []byte("2024-03-01")))
	require.NoError(t, s.DeleteKV("digest:last"))

	_, err := s.GetKV("digest:last")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, s.DeleteKV("never-set"))
}

// Reminder log Tests

func TestReminderLog(t *testing.T) {
	s := setupTestStore(t)

	older := &ReminderLog{Key: "plan_1", Title: "Medicine Reminder", Body: "first", FiredAt: time.Now().Add(-time.Hour)}
	newer := &ReminderLog{Key: "plan_2", Title: "Medicine Reminder", Body: "second"}
	require.NoError(t, s.LogReminder(older))
	require.NoError(t, s.LogReminder(newer))

	assert.True(t, strings.HasPrefix(older.ID, "rem_"))
	assert.False(t, newer.FiredAt.IsZero())

	logs, err := s.RecentReminders(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "plan_2", logs[0].Key)
	assert.Equal(t, "plan_1", logs[1].Key)

	logs, err = s.RecentReminders(1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestGenerateID(t *testing.T) {
	a := GenerateID("plan")
	b := GenerateID("plan")

	assert.True(t, strings.HasPrefix(a, "plan_"))
	assert.NotEqual(t, a, b)
}
