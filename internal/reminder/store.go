package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"gorm.io/gorm"
)

// PlanStore persists medicine plans
type PlanStore struct {
	db *gorm.DB
}

// NewPlanStore creates a plan store and migrates its table
func NewPlanStore(db *gorm.DB) (*PlanStore, error) {
	if err := db.AutoMigrate(&MedicinePlan{}); err != nil {
		return nil, fmt.Errorf("failed to migrate plan schema: %w", err)
	}
	return &PlanStore{db: db}, nil
}

func serialize(p *MedicinePlan) {
	p.LastProcessedOn = ""
	if p.LastProcessed != nil {
		p.LastProcessedOn = p.LastProcessed.String()
	}
}

func deserialize(p *MedicinePlan) {
	p.LastProcessed = nil
	if p.LastProcessedOn == "" {
		return
	}
	if d, err := civil.ParseDate(p.LastProcessedOn); err == nil {
		p.LastProcessed = &d
	}
}

func (s *PlanStore) Create(ctx context.Context, p *MedicinePlan) error {
	serialize(p)
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *PlanStore) Save(ctx context.Context, p *MedicinePlan) error {
	serialize(p)
	return s.db.WithContext(ctx).Save(p).Error
}

// Get returns ErrNotFound when no plan has id.
func (s *PlanStore) Get(ctx context.Context, id uint) (*MedicinePlan, error) {
	var p MedicinePlan
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.From(apperrors.ErrNotFound, fmt.Errorf("plan %d", id))
	}
	if err != nil {
		return nil, err
	}
	deserialize(&p)
	return &p, nil
}

func (s *PlanStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&MedicinePlan{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.From(apperrors.ErrNotFound, fmt.Errorf("plan %d", id))
	}
	return nil
}

// List returns every plan, newest first.
func (s *PlanStore) List(ctx context.Context) ([]MedicinePlan, error) {
	return s.find(s.db.WithContext(ctx))
}

// Search matches plan names case-insensitively.
func (s *PlanStore) Search(ctx context.Context, query string) ([]MedicinePlan, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.List(ctx)
	}
	return s.find(s.db.WithContext(ctx).Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%"))
}

func (s *PlanStore) find(tx *gorm.DB) ([]MedicinePlan, error) {
	var plans []MedicinePlan
	if err := tx.Order("created_at DESC, id DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	for i := range plans {
		deserialize(&plans[i])
	}
	return plans, nil
}
