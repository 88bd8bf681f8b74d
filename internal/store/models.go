package store

import (
	"crypto/rand"
	"time"

	"gorm.io/gorm"
)

// ReminderLog is one delivered reminder
type ReminderLog struct {
	ID      string    `gorm:"primaryKey" json:"id"`
	Key     string    `gorm:"index" json:"key"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Error   string    `json:"error,omitempty"`
	FiredAt time.Time `gorm:"index" json:"fired_at"`
}

// BeforeCreate hook for ReminderLog
func (r *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = GenerateID("rem")
	}
	if r.FiredAt.IsZero() {
		r.FiredAt = time.Now()
	}
	return nil
}

// GenerateID creates a unique ID with second precision and a random suffix
func GenerateID(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

// randomString generates a cryptographically secure random string
func randomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}
