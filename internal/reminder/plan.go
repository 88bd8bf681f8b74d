// Package reminder manages medicine plans and the daily reminders they schedule.
package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
)

type FoodTiming string

const (
	Before FoodTiming = "before"
	After  FoodTiming = "after"
	During FoodTiming = "during"
)

// Label is the display form, e.g. "Before meals".
func (f FoodTiming) Label() string {
	switch f {
	case Before:
		return "Before meals"
	case After:
		return "After meals"
	case During:
		return "During meals"
	default:
		return string(f)
	}
}

func ParseFoodTiming(s string) (FoodTiming, bool) {
	switch FoodTiming(strings.ToLower(strings.TrimSpace(s))) {
	case Before:
		return Before, true
	case After:
		return After, true
	case During:
		return During, true
	}
	return "", false
}

// MedicinePlan is a course of medicine with one daily reminder.
type MedicinePlan struct {
	ID                   uint        `json:"id" gorm:"primaryKey"`
	Name                 string      `json:"name" gorm:"index"`
	Dosage               string      `json:"dosage"`
	Duration             int         `json:"duration"` // days remaining
	FoodTiming           FoodTiming  `json:"food_timing"`
	NotificationTime     string      `json:"notification_time"` // HH:MM
	NotificationsEnabled bool        `json:"notifications_enabled"`
	LastProcessed        *civil.Date `json:"last_processed,omitempty" gorm:"-"`
	LastProcessedOn      string      `json:"-" gorm:"type:text"` // serialized LastProcessed
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

func (MedicinePlan) TableName() string {
	return "medicine_plans"
}

// Key is the scheduler key of the plan's reminder.
func (p *MedicinePlan) Key() string {
	return fmt.Sprintf("plan_%d", p.ID)
}

// legacyKey is an older reminder key that edits still clean up.
func (p *MedicinePlan) legacyKey() string {
	return p.Key() + "_next"
}

func (p *MedicinePlan) Completed() bool {
	return p.Duration == 0
}

func (p *MedicinePlan) Active() bool {
	return p.Duration > 0 && p.NotificationsEnabled
}

const ReminderTitle = "Medicine Reminder"

// ReminderBody is the text of the daily notification.
func (p *MedicinePlan) ReminderBody() string {
	return fmt.Sprintf("Time to take your %s (%s) %s food", p.Name, p.Dosage, p.FoodTiming)
}

// PlanInput is the create/edit form. Duration stays text so a non-number can be reported.
type PlanInput struct {
	Name             string
	Dosage           string
	Duration         string
	FoodTiming       FoodTiming
	NotificationTime string
}

var timeOfDay = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// NormalizeTime validates HH:MM and pads the hour.
func NormalizeTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !timeOfDay.MatchString(s) {
		return "", false
	}
	h, m, _ := strings.Cut(s, ":")
	if len(h) == 1 {
		h = "0" + h
	}
	return h + ":" + m, true
}

type validPlan struct {
	name, dosage string
	duration     int
	food         FoodTiming
	time         string
}

func (in PlanInput) validate() (validPlan, error) {
	v := validPlan{
		name:   strings.TrimSpace(in.Name),
		dosage: strings.TrimSpace(in.Dosage),
		food:   in.FoodTiming,
	}
	if v.name == "" {
		return v, apperrors.Input("Please enter medicine name")
	}
	if v.dosage == "" {
		return v, apperrors.Input("Please enter dosage")
	}
	d, err := strconv.Atoi(strings.TrimSpace(in.Duration))
	if err != nil || d <= 0 {
		return v, apperrors.Input("Please enter valid duration in days")
	}
	v.duration = d
	t, ok := NormalizeTime(in.NotificationTime)
	if !ok {
		return v, apperrors.Input("Please select a valid notification time")
	}
	v.time = t
	if v.food == "" {
		v.food = Before
	}
	if _, ok := ParseFoodTiming(string(v.food)); !ok {
		return v, apperrors.Input("Please select when to take the medicine")
	}
	return v, nil
}
