package repository

import (
	"context"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpportunityRepository handles database operations for opportunities
type OpportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, opportunity *domain.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	err := r.db.WithContext(ctx).First(&opportunity, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &opportunity, nil
}

// ExistsByCodeAndCustomer reports whether an opportunity with the code
// already exists for the customer (idempotent-skip check).
func (r *OpportunityRepository) ExistsByCodeAndCustomer(ctx context.Context, code, customerName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Where("code = ? AND customer_name = ?", code, customerName).
		Count(&count).Error
	return count > 0, err
}

func (r *OpportunityRepository) List(ctx context.Context, page, pageSize int) ([]domain.Opportunity, int64, error) {
	var opportunities []domain.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Opportunity{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&opportunities).Error
	return opportunities, total, err
}
