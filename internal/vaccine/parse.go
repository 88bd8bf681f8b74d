package vaccine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gmsas95/arogya-cli/internal/dates"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
)

// fields is one JSON object with per-key type checks. The first failure sticks.
type fields struct {
	raw   map[string]json.RawMessage
	index int
	err   error
}

func (f *fields) fail(key, want string) {
	if f.err == nil {
		f.err = fmt.Errorf("item %d: %q must be %s", f.index, key, want)
	}
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func (f *fields) str(key string) string {
	v, ok := f.raw[key]
	if !ok {
		f.fail(key, "present")
		return ""
	}
	var s string
	if isNull(v) || json.Unmarshal(v, &s) != nil {
		f.fail(key, "a string")
	}
	return s
}

func (f *fields) optStr(key string) string {
	if _, ok := f.raw[key]; !ok {
		return ""
	}
	return f.str(key)
}

func (f *fields) nullStr(key string) *string {
	v, ok := f.raw[key]
	if !ok {
		f.fail(key, "present")
		return nil
	}
	if isNull(v) {
		return nil
	}
	s := f.str(key)
	return &s
}

func (f *fields) num(key string) int {
	v, ok := f.raw[key]
	if !ok {
		f.fail(key, "present")
		return 0
	}
	var n float64
	if isNull(v) || json.Unmarshal(v, &n) != nil {
		f.fail(key, "a number")
		return 0
	}
	if n != float64(int(n)) {
		f.fail(key, "a whole number")
	}
	return int(n)
}

func (f *fields) optNum(key string) *int {
	if _, ok := f.raw[key]; !ok {
		return nil
	}
	n := f.num(key)
	return &n
}

func (f *fields) nullNum(key string) *int {
	v, ok := f.raw[key]
	if !ok {
		f.fail(key, "present")
		return nil
	}
	if isNull(v) {
		return nil
	}
	n := f.num(key)
	return &n
}

func (f *fields) boolean(key string) bool {
	v, ok := f.raw[key]
	if !ok {
		f.fail(key, "present")
		return false
	}
	var b bool
	if isNull(v) || json.Unmarshal(v, &b) != nil {
		f.fail(key, "a boolean")
	}
	return b
}

func (f *fields) date(s *string, key string) *civil.Date {
	if s == nil {
		return nil
	}
	d, err := dates.Parse(*s)
	if err != nil {
		f.fail(key, "a YYYY-MM-DD date")
		return nil
	}
	return &d
}

func (f *fields) nullDate(key string) *civil.Date {
	return f.date(f.nullStr(key), key)
}

func (f *fields) optNullDate(key string) *civil.Date {
	if _, ok := f.raw[key]; !ok {
		return nil
	}
	return f.nullDate(key)
}

func splitArray(body []byte, what string) ([]map[string]json.RawMessage, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("decode %s: %w", what, err), apperrors.ErrShape.Code, what)
	}
	return items, nil
}

func shapeErr(what string, err error) error {
	return apperrors.Wrap(err, apperrors.ErrShape.Code, what)
}

// ParseDefinitions decodes a catalog response, rejecting the batch on any malformed entry.
func ParseDefinitions(body []byte) ([]Definition, error) {
	items, err := splitArray(body, "vaccine catalog")
	if err != nil {
		return nil, err
	}
	defs := make([]Definition, 0, len(items))
	for i, raw := range items {
		f := &fields{raw: raw, index: i}
		d := Definition{
			ID:               f.str("id"),
			Name:             f.str("name"),
			Manufacturer:     f.str("manufacturer"),
			MaxDoses:         f.num("max_doses"),
			DoseIntervalDays: f.num("dose_interval_days"),
		}
		if f.err != nil {
			return nil, shapeErr("vaccine catalog", f.err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// ParseRecords decodes a vaccination list, rejecting the batch on any malformed record.
func ParseRecords(body []byte) ([]Record, error) {
	items, err := splitArray(body, "vaccination records")
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for i, raw := range items {
		f := &fields{raw: raw, index: i}
		r := Record{
			ID:             f.str("id"),
			User:           f.nullNum("user"),
			Vaccine:        f.str("vaccine"),
			VaccineID:      f.optStr("vaccine_id"),
			VaccineName:    f.str("vaccine_name"),
			DoseNumber:     f.num("dose_number"),
			DateGiven:      f.nullDate("date_given"),
			AdministeredBy: f.nullStr("administered_by"),
			Notes:          f.nullStr("notes"),
			Verified:       f.boolean("verified"),
			CreatedAt:      f.str("created_at"),
			PatientName:    f.optStr("patient_name"),
			NextDueDate:    f.optNullDate("next_due_date"),
			NextDoseNumber: f.optNum("next_dose_number"),
		}
		if f.err == nil && r.DoseNumber < 1 {
			f.fail("dose_number", "at least 1")
		}
		if f.err != nil {
			return nil, shapeErr("vaccination records", f.err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ParseUpcoming decodes the server-aggregated notifications list.
func ParseUpcoming(body []byte) ([]UpcomingVaccine, error) {
	items, err := splitArray(body, "vaccination notifications")
	if err != nil {
		return nil, err
	}
	out := make([]UpcomingVaccine, 0, len(items))
	for i, raw := range items {
		f := &fields{raw: raw, index: i}
		u := UpcomingVaccine{
			VaccineID:      f.str("vaccine_id"),
			VaccineName:    f.str("vaccine_name"),
			NextDoseNumber: f.num("next_dose_number"),
			NextDueDate:    f.nullDate("next_due_date"),
		}
		if f.err != nil {
			return nil, shapeErr("vaccination notifications", f.err)
		}
		out = append(out, u)
	}
	return out, nil
}
