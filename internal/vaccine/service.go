package vaccine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gmsas95/arogya-cli/internal/dates"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"go.uber.org/zap"
)

// Accessor is the remote record store.
type Accessor interface {
	Vaccines(ctx context.Context) ([]Definition, error)
	ListVaccinations(ctx context.Context, q Query) ([]Record, error)
	CreateVaccination(ctx context.Context, rec Record) error
	UpdateVaccination(ctx context.Context, id string, rec Record) error
	DeleteVaccination(ctx context.Context, id string) error
	VaccinationNotifications(ctx context.Context) ([]UpcomingVaccine, error)
}

// Options tune aggregation and the notion of today.
type Options struct {
	DueSoonDays     int
	DedupeByVaccine bool
	Clock           dates.Clock
	Location        *time.Location
}

// Service combines the accessor with local dose calculation.
// Every method returns an explicit error. Use FailSoft for the silent view.
type Service struct {
	acc        Accessor
	logger     *zap.Logger
	classifier Classifier
	dedupe     bool
	clock      dates.Clock
	loc        *time.Location
}

func NewService(acc Accessor, logger *zap.Logger, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = dates.SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		acc:        acc,
		logger:     logger,
		classifier: Classifier{DueSoonDays: opts.DueSoonDays},
		dedupe:     opts.DedupeByVaccine,
		clock:      opts.Clock,
		loc:        opts.Location,
	}
}

// Today is the current calendar day in the configured zone.
func (s *Service) Today() civil.Date {
	return dates.Today(s.clock, s.loc)
}

func (s *Service) Catalog(ctx context.Context) ([]Definition, error) {
	return s.acc.Vaccines(ctx)
}

func (s *Service) Records(ctx context.Context, q Query) ([]Record, error) {
	return s.acc.ListVaccinations(ctx, q)
}

// Find returns the record with id from the unfiltered list.
func (s *Service) Find(ctx context.Context, id string) (Record, error) {
	records, err := s.acc.ListVaccinations(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, apperrors.New(apperrors.ErrNotFound.Code, fmt.Sprintf("vaccination record %s not found", id))
}

func validateFields(vaccine string, dose int, date string) (*civil.Date, error) {
	if strings.TrimSpace(vaccine) == "" {
		return nil, apperrors.Input("Please select a vaccine")
	}
	if dose < 1 {
		return nil, apperrors.Input("Dose number must be at least 1")
	}
	if strings.TrimSpace(date) == "" {
		return nil, nil
	}
	d, err := dates.Parse(date)
	if err != nil {
		return nil, apperrors.Input("Please enter a valid date (YYYY-MM-DD)")
	}
	return &d, nil
}

func checkDose(def Definition, dose int) error {
	if dose > def.MaxDoses {
		return apperrors.Input(fmt.Sprintf("Dose number must be between 1 and %d for %s", def.MaxDoses, def.Name))
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Log validates a new dose then writes it. Field checks run before any I/O.
func (s *Service) Log(ctx context.Context, in LogInput) (Record, error) {
	given, err := validateFields(in.Vaccine, in.DoseNumber, in.DateGiven)
	if err != nil {
		return Record{}, err
	}

	defs, err := s.acc.Vaccines(ctx)
	if err != nil {
		return Record{}, err
	}
	def, ok := NewCatalog(defs).Lookup(Record{Vaccine: strings.TrimSpace(in.Vaccine)})
	if !ok {
		return Record{}, apperrors.Input("Please select a vaccine")
	}
	if err := checkDose(def, in.DoseNumber); err != nil {
		return Record{}, err
	}

	rec := Record{
		Vaccine:        def.ID,
		VaccineName:    def.Name,
		DoseNumber:     in.DoseNumber,
		DateGiven:      given,
		AdministeredBy: optional(in.AdministeredBy),
		Notes:          optional(in.Notes),
		Verified:       in.Verified,
		CreatedAt:      s.Today().String(),
		PatientName:    strings.TrimSpace(in.PatientName),
	}
	if err := s.acc.CreateVaccination(ctx, rec); err != nil {
		return Record{}, err
	}
	s.logger.Info("Vaccination logged",
		zap.String("vaccine", def.ID),
		zap.Int("dose", rec.DoseNumber),
		zap.Bool("verified", rec.Verified))
	return rec, nil
}

// Edit applies in to the stored record and writes it back. Last write wins.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (Record, error) {
	rec, err := s.Find(ctx, id)
	if err != nil {
		return Record{}, err
	}

	dose := rec.DoseNumber
	if in.DoseNumber != nil {
		dose = *in.DoseNumber
	}
	date := ""
	if in.DateGiven != nil {
		date = *in.DateGiven
	} else if rec.DateGiven != nil {
		date = rec.DateGiven.String()
	}
	given, err := validateFields(rec.Ref(), dose, date)
	if err != nil {
		return Record{}, err
	}

	if defs, err := s.acc.Vaccines(ctx); err == nil {
		if def, ok := NewCatalog(defs).Lookup(rec); ok {
			if err := checkDose(def, dose); err != nil {
				return Record{}, err
			}
		}
	}

	rec.DoseNumber = dose
	rec.DateGiven = given
	if in.AdministeredBy != nil {
		rec.AdministeredBy = optional(*in.AdministeredBy)
	}
	if in.Notes != nil {
		rec.Notes = optional(*in.Notes)
	}
	if in.Verified != nil {
		rec.Verified = *in.Verified
	}

	if err := s.acc.UpdateVaccination(ctx, id, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Input("Please choose a record to delete")
	}
	return s.acc.DeleteVaccination(ctx, id)
}

// Upcoming aggregates catalog and records locally.
func (s *Service) Upcoming(ctx context.Context) ([]UpcomingVaccine, error) {
	defs, err := s.acc.Vaccines(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.acc.ListVaccinations(ctx, nil)
	if err != nil {
		return nil, err
	}
	upcoming := Upcoming(records, defs)
	if s.dedupe {
		upcoming = DedupeByVaccine(upcoming)
	}
	return upcoming, nil
}

// ServerUpcoming uses the backend's own aggregation.
func (s *Service) ServerUpcoming(ctx context.Context) ([]UpcomingVaccine, error) {
	return s.acc.VaccinationNotifications(ctx)
}

// Classify uses the configured due-soon window.
func (s *Service) Classify(upcoming []UpcomingVaccine) []Notice {
	return s.classifier.Notices(s.Today(), upcoming)
}

// Notices is Upcoming classified against today.
func (s *Service) Notices(ctx context.Context) ([]Notice, error) {
	upcoming, err := s.Upcoming(ctx)
	if err != nil {
		return nil, err
	}
	return s.Classify(upcoming), nil
}

// FailSoft returns the silent view used by list screens.
func (s *Service) FailSoft() *FailSoft {
	return &FailSoft{svc: s}
}

// FailSoft logs accessor failures and returns empty results.
// Input validation errors still surface since they stop the operation before I/O.
type FailSoft struct {
	svc *Service
}

func (f *FailSoft) swallow(op string, err error) {
	f.svc.logger.Error("Vaccination request failed",
		zap.String("op", op),
		zap.String("kind", string(apperrors.GetKind(err))),
		zap.Error(err))
}

func (f *FailSoft) write(op string, err error) error {
	if err == nil || apperrors.GetKind(err) == apperrors.KindInput {
		return err
	}
	f.swallow(op, err)
	return nil
}

func (f *FailSoft) Catalog(ctx context.Context) []Definition {
	defs, err := f.svc.Catalog(ctx)
	if err != nil {
		f.swallow("catalog", err)
		return []Definition{}
	}
	return defs
}

func (f *FailSoft) Records(ctx context.Context, q Query) []Record {
	records, err := f.svc.Records(ctx, q)
	if err != nil {
		f.swallow("list", err)
		return []Record{}
	}
	return records
}

func (f *FailSoft) Upcoming(ctx context.Context) []UpcomingVaccine {
	upcoming, err := f.svc.Upcoming(ctx)
	if err != nil {
		f.swallow("upcoming", err)
		return []UpcomingVaccine{}
	}
	return upcoming
}

func (f *FailSoft) ServerUpcoming(ctx context.Context) []UpcomingVaccine {
	upcoming, err := f.svc.ServerUpcoming(ctx)
	if err != nil {
		f.swallow("notifications", err)
		return []UpcomingVaccine{}
	}
	return upcoming
}

func (f *FailSoft) Notices(ctx context.Context) []Notice {
	return f.svc.Classify(f.Upcoming(ctx))
}

func (f *FailSoft) Log(ctx context.Context, in LogInput) error {
	_, err := f.svc.Log(ctx, in)
	return f.write("create", err)
}

func (f *FailSoft) Edit(ctx context.Context, id string, in EditInput) error {
	_, err := f.svc.Edit(ctx, id, in)
	return f.write("update", err)
}

func (f *FailSoft) Remove(ctx context.Context, id string) error {
	return f.write("delete", f.svc.Remove(ctx, id))
}
