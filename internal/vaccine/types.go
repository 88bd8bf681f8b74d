// Package vaccine tracks vaccination doses: catalog, records, next-dose calculation and upcoming notices.
package vaccine

import (
	"cloud.google.com/go/civil"
)

// Definition is a catalog entry in the backend's vaccine reference list.
type Definition struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Manufacturer     string `json:"manufacturer"`
	MaxDoses         int    `json:"max_doses"`
	DoseIntervalDays int    `json:"dose_interval_days"`
}

// Record is one administered or planned dose.
type Record struct {
	ID             string      `json:"id"`
	User           *int        `json:"user"`
	Vaccine        string      `json:"vaccine"`
	VaccineID      string      `json:"vaccine_id,omitempty"`
	VaccineName    string      `json:"vaccine_name"`
	DoseNumber     int         `json:"dose_number"`
	DateGiven      *civil.Date `json:"date_given"`
	AdministeredBy *string     `json:"administered_by"`
	Notes          *string     `json:"notes"`
	Verified       bool        `json:"verified"`
	CreatedAt      string      `json:"created_at"`
	PatientName    string      `json:"patient_name"`
	NextDueDate    *civil.Date `json:"next_due_date,omitempty"`
	NextDoseNumber *int        `json:"next_dose_number,omitempty"`
}

// Ref is the catalog key a record points at.
func (r Record) Ref() string {
	if r.VaccineID != "" {
		return r.VaccineID
	}
	return r.Vaccine
}

// UpcomingVaccine is a dose still owed. A nil DueDate means schedule anytime.
type UpcomingVaccine struct {
	VaccineID      string      `json:"vaccine_id"`
	VaccineName    string      `json:"vaccine_name"`
	NextDoseNumber int         `json:"next_dose_number"`
	NextDueDate    *civil.Date `json:"next_due_date"`

	// local aggregation only
	RecordID    string `json:"-"`
	PatientName string `json:"-"`
}

// NextDose is the calculator result for a single record.
type NextDose struct {
	Complete   bool
	DoseNumber int
	DueDate    *civil.Date
}

// Query filters the record list on the backend. Empty values are dropped.
type Query map[string]string

// LogInput is user input for a new record.
type LogInput struct {
	Vaccine        string
	DoseNumber     int
	DateGiven      string // YYYY-MM-DD, empty when unknown
	AdministeredBy string
	Notes          string
	Verified       bool
	PatientName    string
}

// EditInput patches the mutable fields of an existing record. Nil leaves the field unchanged.
type EditInput struct {
	DateGiven      *string
	DoseNumber     *int
	AdministeredBy *string
	Notes          *string
	Verified       *bool
}
