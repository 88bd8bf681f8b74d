package reminder

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gmsas95/arogya-cli/internal/dates"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"go.uber.org/zap"
)

// Scheduler registers keyed daily reminders.
type Scheduler interface {
	Schedule(key, title, body, timeOfDay string) error
	Cancel(key string) bool
}

type Options struct {
	Clock    dates.Clock
	Location *time.Location
}

// Service ties plan persistence to the reminder schedule.
type Service struct {
	plans   *PlanStore
	sched   Scheduler
	clock   dates.Clock
	loc     *time.Location
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewService(plans *PlanStore, sched Scheduler, opts Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = dates.SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if m == nil {
		m = metrics.Default()
	}
	return &Service{
		plans:   plans,
		sched:   sched,
		clock:   opts.Clock,
		loc:     opts.Location,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) Today() civil.Date {
	return dates.Today(s.clock, s.loc)
}

func (s *Service) schedule(p *MedicinePlan) error {
	if err := s.sched.Schedule(p.Key(), ReminderTitle, p.ReminderBody(), p.NotificationTime); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to schedule reminder")
	}
	return nil
}

// Create saves a new plan and schedules its reminder.
func (s *Service) Create(ctx context.Context, in PlanInput) (*MedicinePlan, error) {
	v, err := in.validate()
	if err != nil {
		return nil, err
	}
	today := s.Today()
	p := &MedicinePlan{
		Name:                 v.name,
		Dosage:               v.dosage,
		Duration:             v.duration,
		FoodTiming:           v.food,
		NotificationTime:     v.time,
		NotificationsEnabled: true,
		LastProcessed:        &today,
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to save medicine plan")
	}
	if err := s.schedule(p); err != nil {
		return p, err
	}
	s.logger.Info("Medicine plan created",
		zap.Uint("id", p.ID),
		zap.String("name", p.Name),
		zap.String("time", p.NotificationTime))
	return p, nil
}

// Update replaces the editable fields and re-registers the reminder.
func (s *Service) Update(ctx context.Context, id uint, in PlanInput) (*MedicinePlan, error) {
	v, err := in.validate()
	if err != nil {
		return nil, err
	}
	p, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.sched.Cancel(p.Key())
	s.sched.Cancel(p.legacyKey())

	p.Name = v.name
	p.Dosage = v.dosage
	p.Duration = v.duration
	p.FoodTiming = v.food
	p.NotificationTime = v.time
	if err := s.plans.Save(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to save medicine plan")
	}
	if p.Active() {
		if err := s.schedule(p); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*MedicinePlan, error) {
	return s.plans.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]MedicinePlan, error) {
	return s.plans.List(ctx)
}

// Search matches plan names case-insensitively. An empty query lists everything.
func (s *Service) Search(ctx context.Context, query string) ([]MedicinePlan, error) {
	return s.plans.Search(ctx, query)
}

// Delete removes the plan and its reminder.
func (s *Service) Delete(ctx context.Context, id uint) error {
	p, err := s.plans.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}
	s.sched.Cancel(p.Key())
	s.sched.Cancel(p.legacyKey())
	s.logger.Info("Medicine plan deleted", zap.Uint("id", id))
	return nil
}

// ToggleNotifications flips the reminder on or off. Completed plans stay unscheduled.
func (s *Service) ToggleNotifications(ctx context.Context, id uint) (*MedicinePlan, error) {
	p, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.NotificationsEnabled = !p.NotificationsEnabled
	if err := s.plans.Save(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to update notification settings")
	}
	if p.Active() {
		if err := s.schedule(p); err != nil {
			return p, err
		}
	} else {
		s.sched.Cancel(p.Key())
	}
	return p, nil
}

// ProcessDailyUpdates decrements each plan's remaining days by the calendar days since
// it was last processed. Plans that reach zero lose their reminder but keep the enabled flag.
func (s *Service) ProcessDailyUpdates(ctx context.Context) (int, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return 0, err
	}
	today := s.Today()
	updated := 0

	for i := range plans {
		p := &plans[i]
		elapsed := 0
		if p.LastProcessed != nil {
			elapsed = dates.DaysBetween(*p.LastProcessed, today)
			if elapsed <= 0 {
				continue
			}
		}

		p.Duration = max(0, p.Duration-elapsed)
		p.LastProcessed = &today
		if err := s.plans.Save(ctx, p); err != nil {
			s.logger.Error("Failed to save daily update", zap.Uint("id", p.ID), zap.Error(err))
			continue
		}
		if p.Duration == 0 {
			s.sched.Cancel(p.Key())
		}
		updated++
	}

	s.metrics.RecordDailyUpdates(updated)
	if updated > 0 {
		s.logger.Info("Processed daily medication updates", zap.Int("plans", updated))
	}
	return updated, nil
}

// Restore registers the reminder of every active plan. Called when the daemon starts.
func (s *Service) Restore(ctx context.Context) (int, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range plans {
		p := &plans[i]
		if !p.Active() {
			continue
		}
		if err := s.schedule(p); err != nil {
			s.logger.Error("Failed to restore reminder", zap.Uint("id", p.ID), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}

type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(plans)}
	for i := range plans {
		switch {
		case plans[i].Completed():
			st.Completed++
		case plans[i].Active():
			st.Active++
		}
	}
	return st, nil
}
