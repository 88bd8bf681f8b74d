package vaccine

import (
	"context"
	"testing"
	"time"

	"github.com/gmsas95/arogya-cli/internal/dates"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAccessor struct {
	defs    []Definition
	records []Record
	server  []UpcomingVaccine
	err     error

	created []Record
	updated map[string]Record
	deleted []string
	calls   int
}

func (f *fakeAccessor) Vaccines(ctx context.Context) ([]Definition, error) {
	f.calls++
	return f.defs, f.err
}

func (f *fakeAccessor) ListVaccinations(ctx context.Context, q Query) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeAccessor) CreateVaccination(ctx context.Context, rec Record) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeAccessor) UpdateVaccination(ctx context.Context, id string, rec Record) error {
	f.calls++
	if f.updated == nil {
		f.updated = map[string]Record{}
	}
	f.updated[id] = rec
	return f.err
}

func (f *fakeAccessor) DeleteVaccination(ctx context.Context, id string) error {
	f.calls++
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeAccessor) VaccinationNotifications(ctx context.Context) ([]UpcomingVaccine, error) {
	f.calls++
	return f.server, f.err
}

func newTestService(t *testing.T, acc Accessor, opts Options) *Service {
	logger, _ := zap.NewDevelopment()
	if opts.Clock == nil {
		opts.Clock = dates.FixedClock(time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC))
		opts.Location = time.UTC
	}
	return NewService(acc, logger, opts)
}

// Service Tests

func TestServiceNoticesEndToEnd(t *testing.T) {
	acc := &fakeAccessor{
		defs: []Definition{flu},
		records: []Record{
			{ID: "r1", Vaccine: "flu1", VaccineName: "Influenza", DoseNumber: 1, DateGiven: day(2024, 1, 15), Verified: true},
			{ID: "r2", Vaccine: "flu1", VaccineName: "Influenza", DoseNumber: 2, DateGiven: day(2024, 7, 1), Verified: true},
		},
	}
	svc := newTestService(t, acc, Options{})

	notices, err := svc.Notices(context.Background())
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, 2, notices[0].Upcoming.NextDoseNumber)
	assert.Equal(t, "2024-07-13", notices[0].Upcoming.NextDueDate.String())
	assert.Equal(t, "Due in 3 days", notices[0].Status)
}

func TestServiceDedupeOption(t *testing.T) {
	acc := &fakeAccessor{
		defs: []Definition{flu},
		records: []Record{
			{ID: "a", Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 1, 1)},
			{ID: "b", Vaccine: "flu1", DoseNumber: 1, DateGiven: day(2024, 2, 1)},
		},
	}

	all, err := newTestService(t, acc, Options{}).Upcoming(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deduped, err := newTestService(t, acc, Options{DedupeByVaccine: true}).Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, deduped, 1)
	assert.Equal(t, "a", deduped[0].RecordID)
}

func TestServiceExplicitErrors(t *testing.T) {
	acc := &fakeAccessor{err: apperrors.From(apperrors.ErrTransport, context.DeadlineExceeded)}
	svc := newTestService(t, acc, Options{})

	_, err := svc.Records(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrTransport)

	_, err = svc.Upcoming(context.Background())
	assert.Equal(t, apperrors.KindTransport, apperrors.GetKind(err))
}

func TestFailSoftSwallowsTransportFailures(t *testing.T) {
	acc := &fakeAccessor{defs: []Definition{flu}, err: apperrors.From(apperrors.ErrTransport, context.DeadlineExceeded)}
	soft := newTestService(t, acc, Options{}).FailSoft()
	ctx := context.Background()

	records := soft.Records(ctx, Query{"patient": "Asha"})
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Empty(t, soft.Upcoming(ctx))
	assert.Empty(t, soft.Notices(ctx))
	assert.Empty(t, soft.ServerUpcoming(ctx))
	assert.Empty(t, soft.Catalog(ctx))
	assert.NoError(t, soft.Remove(ctx, "r1"))
}

func TestFailSoftCreateIsFireAndForget(t *testing.T) {
	// creation fails after validation passed
	failing := &failingCreate{fakeAccessor: &fakeAccessor{defs: []Definition{flu}}}
	soft := newTestService(t, failing, Options{}).FailSoft()

	err := soft.Log(context.Background(), LogInput{Vaccine: "flu1", DoseNumber: 1, DateGiven: "2024-07-01"})
	assert.NoError(t, err)
}

type failingCreate struct{ *fakeAccessor }

func (f *failingCreate) CreateVaccination(ctx context.Context, rec Record) error {
	return apperrors.From(apperrors.ErrTransport, context.DeadlineExceeded)
}

func TestFailSoftStillSurfacesInputErrors(t *testing.T) {
	acc := &fakeAccessor{defs: []Definition{flu}}
	soft := newTestService(t, acc, Options{}).FailSoft()

	err := soft.Log(context.Background(), LogInput{Vaccine: "", DoseNumber: 1})
	require.Error(t, err)
	assert.Equal(t, "Please select a vaccine", apperrors.UserMessage(err))
	assert.Equal(t, 0, acc.calls, "no I/O before field validation")
}

func TestServiceLog(t *testing.T) {
	acc := &fakeAccessor{defs: []Definition{flu}}
	svc := newTestService(t, acc, Options{})

	rec, err := svc.Log(context.Background(), LogInput{
		Vaccine:        "flu1",
		DoseNumber:     1,
		DateGiven:      "2024-07-01",
		AdministeredBy: "  ",
		Notes:          "left arm",
		Verified:       true,
		PatientName:    "Asha",
	})
	require.NoError(t, err)
	require.Len(t, acc.created, 1)

	assert.Equal(t, "Influenza", rec.VaccineName)
	assert.Equal(t, "2024-07-01", rec.DateGiven.String())
	assert.Nil(t, rec.AdministeredBy)
	assert.Equal(t, "left arm", *rec.Notes)
	assert.Equal(t, "2024-07-10", rec.CreatedAt)
}

func TestServiceLogValidation(t *testing.T) {
	acc := &fakeAccessor{defs: []Definition{flu}}
	svc := newTestService(t, acc, Options{})

	tests := []struct {
		in      LogInput
		message string
	}{
		{LogInput{Vaccine: "", DoseNumber: 1}, "Please select a vaccine"},
		{LogInput{Vaccine: "flu1", DoseNumber: 0}, "Dose number must be at least 1"},
		{LogInput{Vaccine: "flu1", DoseNumber: 1, DateGiven: "July first"}, "Please enter a valid date (YYYY-MM-DD)"},
		{LogInput{Vaccine: "flu1", DoseNumber: 3}, "Dose number must be between 1 and 2 for Influenza"},
		{LogInput{Vaccine: "polio", DoseNumber: 1}, "Please select a vaccine"},
	}

	for _, tt := range tests {
		_, err := svc.Log(context.Background(), tt.in)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindInput, apperrors.GetKind(err))
		assert.Equal(t, tt.message, apperrors.UserMessage(err))
	}
	assert.Empty(t, acc.created)
}

func TestServiceEdit(t *testing.T) {
	acc := &fakeAccessor{
		defs:    []Definition{flu},
		records: []Record{{ID: "r1", Vaccine: "flu1", VaccineName: "Influenza", DoseNumber: 1, CreatedAt: "2024-01-01"}},
	}
	svc := newTestService(t, acc, Options{})

	date := "2024-06-30"
	notes := "second visit"
	verified := true
	rec, err := svc.Edit(context.Background(), "r1", EditInput{DateGiven: &date, Notes: &notes, Verified: &verified})
	require.NoError(t, err)

	stored := acc.updated["r1"]
	assert.Equal(t, rec, stored)
	assert.Equal(t, "2024-06-30", stored.DateGiven.String())
	assert.Equal(t, "second visit", *stored.Notes)
	assert.True(t, stored.Verified)
	assert.Equal(t, "2024-01-01", stored.CreatedAt)

	dose := 4
	_, err = svc.Edit(context.Background(), "r1", EditInput{DoseNumber: &dose})
	assert.Equal(t, apperrors.KindInput, apperrors.GetKind(err))

	_, err = svc.Edit(context.Background(), "missing", EditInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestServiceServerUpcoming(t *testing.T) {
	acc := &fakeAccessor{server: []UpcomingVaccine{{VaccineID: "flu1", VaccineName: "Influenza", NextDoseNumber: 2}}}
	svc := newTestService(t, acc, Options{})

	out, err := svc.ServerUpcoming(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)

	notices := svc.Classify(out)
	assert.Equal(t, NotUrgent, notices[0].Urgency)
}
