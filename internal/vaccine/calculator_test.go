package vaccine

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flu = Definition{ID: "flu1", Name: "Influenza", Manufacturer: "Sanofi", MaxDoses: 2, DoseIntervalDays: 180}

func day(y int, m time.Month, d int) *civil.Date {
	return &civil.Date{Year: y, Month: m, Day: d}
}

func TestNextDoseForCompleteCourse(t *testing.T) {
	for _, given := range []*civil.Date{nil, day(2024, 1, 15)} {
		next := NextDoseFor(Record{Vaccine: "flu1", DoseNumber: 2, DateGiven: given}, flu)
		assert.True(t, next.Complete)
		assert.Nil(t, next.DueDate)
	}

	// past the max is still complete
	next := NextDoseFor(Record{Vaccine: "flu1", DoseNumber: 5}, flu)
	assert.True(t, next.Complete)
}

func TestNextDoseForKnownDate(t *testing.T) {
	next := NextDoseFor(Record{Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 1, 15), Verified: true}, flu)

	require.False(t, next.Complete)
	assert.Equal(t, 2, next.DoseNumber)
	require.NotNil(t, next.DueDate)
	assert.Equal(t, "2024-07-13", next.DueDate.String())
}

func TestNextDoseForUnknownDate(t *testing.T) {
	next := NextDoseFor(Record{Vaccine: "flu1", DoseNumber: 1, Verified: false}, flu)

	assert.False(t, next.Complete)
	assert.Equal(t, 2, next.DoseNumber)
	assert.Nil(t, next.DueDate)
}

func TestNextDoseForPlannedDoseUsesDate(t *testing.T) {
	next := NextDoseFor(Record{Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 12, 1), Verified: false}, flu)

	require.NotNil(t, next.DueDate)
	assert.Equal(t, "2025-05-30", next.DueDate.String())
}

func TestNextDoseForCrossesLeapDay(t *testing.T) {
	def := Definition{ID: "hep", MaxDoses: 3, DoseIntervalDays: 30}
	next := NextDoseFor(Record{DoseNumber: 1, DateGiven: day(2024, 2, 10)}, def)

	require.NotNil(t, next.DueDate)
	assert.Equal(t, "2024-03-11", next.DueDate.String())
}

func TestUpcoming(t *testing.T) {
	hep := Definition{ID: "hepb", Name: "Hepatitis B", MaxDoses: 3, DoseIntervalDays: 30}
	records := []Record{
		{ID: "r1", Vaccine: "flu1", VaccineName: "Influenza", DoseNumber: 1, DateGiven: day(2024, 1, 15)},
		{ID: "r2", Vaccine: "flu1", VaccineName: "Influenza", DoseNumber: 2, DateGiven: day(2024, 7, 13)},
		{ID: "r3", Vaccine: "unknown", VaccineName: "Mystery", DoseNumber: 1},
		{ID: "r4", Vaccine: "legacy", VaccineID: "hepb", VaccineName: "", DoseNumber: 1},
	}

	upcoming := Upcoming(records, []Definition{flu, hep})

	require.Len(t, upcoming, 2)
	assert.Equal(t, "r1", upcoming[0].RecordID)
	assert.Equal(t, "flu1", upcoming[0].VaccineID)
	assert.Equal(t, 2, upcoming[0].NextDoseNumber)
	assert.Equal(t, "2024-07-13", upcoming[0].NextDueDate.String())

	assert.Equal(t, "r4", upcoming[1].RecordID)
	assert.Equal(t, "Hepatitis B", upcoming[1].VaccineName)
	assert.Nil(t, upcoming[1].NextDueDate)
}

func TestUpcomingKeepsOneEntryPerRecord(t *testing.T) {
	records := []Record{
		{ID: "a", Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 1, 1)},
		{ID: "b", Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 2, 1)},
	}

	assert.Len(t, Upcoming(records, []Definition{flu}), 2)
}

func TestDedupeByVaccine(t *testing.T) {
	in := []UpcomingVaccine{
		{RecordID: "a", VaccineID: "hepb", PatientName: "Asha", NextDoseNumber: 2, NextDueDate: day(2024, 3, 1)},
		{RecordID: "b", VaccineID: "flu1", PatientName: "Asha", NextDoseNumber: 2},
		{RecordID: "c", VaccineID: "hepb", PatientName: "Asha", NextDoseNumber: 3, NextDueDate: day(2024, 4, 1)},
		{RecordID: "d", VaccineID: "hepb", PatientName: "Bikash", NextDoseNumber: 2},
		{RecordID: "e", VaccineID: "flu1", PatientName: "Asha", NextDoseNumber: 2, NextDueDate: day(2024, 5, 1)},
		{RecordID: "f", VaccineID: "flu1", PatientName: "Asha", NextDoseNumber: 2, NextDueDate: day(2024, 4, 1)},
	}

	out := DedupeByVaccine(in)

	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].RecordID, "higher dose wins")
	assert.Equal(t, "f", out[1].RecordID, "earliest known date wins a tie")
	assert.Equal(t, "d", out[2].RecordID, "patients are kept apart")
}
