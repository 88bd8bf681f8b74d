package vaccine

import (
	"strings"

	"cloud.google.com/go/civil"
)

type Tab string

const (
	TabAll        Tab = "all"
	TabVaccinated Tab = "vaccinated"
	TabPending    Tab = "pending"
)

// Filter narrows a record list the way the history screen does.
type Filter struct {
	Tab    Tab
	Search string
	On     *civil.Date
}

func (f Filter) Match(r Record) bool {
	switch f.Tab {
	case TabVaccinated:
		if !r.Verified {
			return false
		}
	case TabPending:
		if r.Verified {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(r.VaccineName), q) &&
			!strings.Contains(strings.ToLower(r.PatientName), q) &&
			!strings.Contains(strings.ToLower(r.Vaccine), q) {
			return false
		}
	}

	if f.On != nil {
		if r.DateGiven == nil || *r.DateGiven != *f.On {
			return false
		}
	}
	return true
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns the tab badge numbers.
func Counts(records []Record) (vaccinated, pending int) {
	for _, r := range records {
		if r.Verified {
			vaccinated++
		} else {
			pending++
		}
	}
	return vaccinated, pending
}

// ParseTab accepts the CLI spelling of a tab. Unknown values mean all.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(s)) {
	case TabVaccinated:
		return TabVaccinated
	case TabPending:
		return TabPending
	default:
		return TabAll
	}
}
