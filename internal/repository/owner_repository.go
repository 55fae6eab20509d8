package repository

import (
	"context"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerRepository is the read-mostly consultant directory
type OwnerRepository struct {
	db *gorm.DB
}

// NewOwnerRepository creates a new OwnerRepository
func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	return r.db.WithContext(ctx).Create(owner).Error
}

func (r *OwnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	var owner domain.Owner
	err := r.db.WithContext(ctx).First(&owner, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	var owner domain.Owner
	err := r.db.WithContext(ctx).First(&owner, "LOWER(email) = LOWER(?)", email).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *OwnerRepository) List(ctx context.Context) ([]domain.Owner, error) {
	var owners []domain.Owner
	err := r.db.WithContext(ctx).Order("surname ASC, name ASC").Find(&owners).Error
	return owners, err
}
