// Package dates holds calendar-day helpers shared by vaccines and reminders.
package dates

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the calendar day of clock's instant in loc.
func Today(clock Clock, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(clock.Now().In(loc))
}

// Parse reads a YYYY-MM-DD date. A time suffix after the date part is dropped.
func Parse(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i == 10 {
		s = s[:i]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b civil.Date) int {
	return b.DaysSince(a)
}

// Ptr returns a pointer to d.
func Ptr(d civil.Date) *civil.Date {
	return &d
}
