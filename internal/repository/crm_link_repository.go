package repository

import (
	"context"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CRMLinkRepository stores the local-to-remote object mapping
type CRMLinkRepository struct {
	db *gorm.DB
}

// NewCRMLinkRepository creates a new CRMLinkRepository
func NewCRMLinkRepository(db *gorm.DB) *CRMLinkRepository {
	return &CRMLinkRepository{db: db}
}

func (r *CRMLinkRepository) Create(ctx context.Context, link *domain.CRMLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// GetByTicket returns the CRM link for a ticket, if any
func (r *CRMLinkRepository) GetByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.CRMLink, error) {
	var link domain.CRMLink
	err := r.db.WithContext(ctx).First(&link, "ticket_id = ?", ticketID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
