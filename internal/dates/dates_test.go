package dates

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want civil.Date
	}{
		{"2024-01-15", civil.Date{Year: 2024, Month: time.January, Day: 15}},
		{"2024-01-15T08:00:00Z", civil.Date{Year: 2024, Month: time.January, Day: 15}},
		{" 2024-02-29 ", civil.Date{Year: 2024, Month: time.February, Day: 29}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "15/01/2024", "2023-02-29", "tomorrow"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	instant := time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC)
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)

	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 1}, Today(FixedClock(instant), time.UTC))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 2}, Today(FixedClock(instant), kathmandu))
}

func TestDaysBetweenAcrossMonths(t *testing.T) {
	a := civil.Date{Year: 2024, Month: time.January, Day: 31}
	b := civil.Date{Year: 2024, Month: time.March, Day: 1}

	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
