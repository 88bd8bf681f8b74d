package vaccine

import (
	"testing"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecords = `[
  {"id": "r1", "user": 4, "vaccine": "flu1", "vaccine_name": "Influenza", "dose_number": 1,
   "date_given": "2024-01-15", "administered_by": "Dr. Shrestha", "notes": null, "verified": true,
   "created_at": "2024-01-15T09:00:00Z", "patient_name": "Asha", "next_due_date": "2024-07-13", "next_dose_number": 2},
  {"id": "r2", "user": null, "vaccine": "hepb", "vaccine_id": "hepb", "vaccine_name": "Hepatitis B", "dose_number": 1,
   "date_given": null, "administered_by": null, "notes": "planned", "verified": false,
   "created_at": "2024-02-01"}
]`

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords([]byte(validRecords))
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "r1", r.ID)
	require.NotNil(t, r.User)
	assert.Equal(t, 4, *r.User)
	assert.Equal(t, "2024-01-15", r.DateGiven.String())
	assert.Equal(t, "Dr. Shrestha", *r.AdministeredBy)
	assert.Nil(t, r.Notes)
	assert.True(t, r.Verified)
	assert.Equal(t, "Asha", r.PatientName)
	assert.Equal(t, "2024-07-13", r.NextDueDate.String())
	assert.Equal(t, 2, *r.NextDoseNumber)

	r = records[1]
	assert.Nil(t, r.User)
	assert.Nil(t, r.DateGiven)
	assert.Equal(t, "", r.PatientName)
	assert.Equal(t, "hepb", r.Ref())
	assert.Nil(t, r.NextDueDate)
	assert.Nil(t, r.NextDoseNumber)
}

func TestParseRecordsRejectsWholeBatch(t *testing.T) {
	tests := map[string]string{
		"missing key":       `[{"id":"r1","vaccine":"flu1","vaccine_name":"Influenza","dose_number":1,"date_given":null,"administered_by":null,"notes":null,"verified":true,"created_at":"x"}]`,
		"wrong type":        `[{"id":1,"user":null,"vaccine":"flu1","vaccine_name":"Influenza","dose_number":1,"date_given":null,"administered_by":null,"notes":null,"verified":true,"created_at":"x"}]`,
		"null not allowed":  `[{"id":"r1","user":null,"vaccine":"flu1","vaccine_name":"Influenza","dose_number":1,"date_given":null,"administered_by":null,"notes":null,"verified":null,"created_at":"x"}]`,
		"bad date":          `[{"id":"r1","user":null,"vaccine":"flu1","vaccine_name":"Influenza","dose_number":1,"date_given":"15/01/2024","administered_by":null,"notes":null,"verified":true,"created_at":"x"}]`,
		"dose below one":    `[{"id":"r1","user":null,"vaccine":"flu1","vaccine_name":"Influenza","dose_number":0,"date_given":null,"administered_by":null,"notes":null,"verified":true,"created_at":"x"}]`,
		"fractional dose":   `[{"id":"r1","user":null,"vaccine":"flu1","vaccine_name":"Influenza","dose_number":1.5,"date_given":null,"administered_by":null,"notes":null,"verified":true,"created_at":"x"}]`,
		"not an array":      `{"data": []}`,
		"garbage":           `<html>`,
		"one bad among two": `[` + validRecords[1:len(validRecords)-1] + `, {"id": "r3"}]`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			records, err := ParseRecords([]byte(body))
			assert.Nil(t, records)
			assert.ErrorIs(t, err, apperrors.ErrShape)
			assert.Equal(t, apperrors.KindShape, apperrors.GetKind(err))
		})
	}
}

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions([]byte(`[{"id":"flu1","name":"Influenza","manufacturer":"Sanofi","max_doses":2,"dose_interval_days":180}]`))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, flu, defs[0])

	_, err = ParseDefinitions([]byte(`[{"id":"flu1","name":"Influenza","max_doses":2,"dose_interval_days":180}]`))
	assert.ErrorIs(t, err, apperrors.ErrShape)
}

func TestParseUpcoming(t *testing.T) {
	out, err := ParseUpcoming([]byte(`[
		{"vaccine_id":"flu1","vaccine_name":"Influenza","next_dose_number":2,"next_due_date":"2024-07-13"},
		{"vaccine_id":"hepb","vaccine_name":"Hepatitis B","next_dose_number":3,"next_due_date":null}
	]`))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-07-13", out[0].NextDueDate.String())
	assert.Nil(t, out[1].NextDueDate)

	_, err = ParseUpcoming([]byte(`[{"vaccine_id":"flu1","vaccine_name":"Influenza","next_dose_number":2}]`))
	assert.ErrorIs(t, err, apperrors.ErrShape)
}
