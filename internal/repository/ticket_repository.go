package repository

import (
	"context"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketRepository handles database operations for tickets
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.db.WithContext(ctx).First(&ticket, "code = ?", code).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ExistsByCodeAndCustomer reports whether a ticket with the generated
// code already exists for the customer. Used for idempotent skips before
// re-materializing a workflow.
func (r *TicketRepository) ExistsByCodeAndCustomer(ctx context.Context, code, customerName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("code = ? AND customer_name = ?", code, customerName).
		Count(&count).Error
	return count > 0, err
}

// ListWithFilters returns a paginated ticket list
func (r *TicketRepository) ListWithFilters(ctx context.Context, status domain.WorkStatus, customerName string, page, pageSize int) ([]domain.Ticket, int64, error) {
	var tickets []domain.Ticket
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Ticket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customerName != "" {
		query = query.Where("customer_name = ?", customerName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&tickets).Error
	return tickets, total, err
}

// ListAll returns every ticket. Used by the status aggregator sweep.
func (r *TicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

// ListByCodePrefixAndCustomer finds tickets whose code starts with the
// given prefix for one customer, newest first.
func (r *TicketRepository) ListByCodePrefixAndCustomer(ctx context.Context, prefix, customerName string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := r.db.WithContext(ctx).
		Where("code LIKE ? AND customer_name = ?", prefix+"%", customerName).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// CountOpenByServiceCode counts non-closed tickets whose code embeds the
// service code. Guards catalog deletions.
func (r *TicketRepository) CountOpenByServiceCode(ctx context.Context, serviceCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("code LIKE ? AND status <> ?", "TCK-"+serviceCode+"-%", domain.WorkStatusClosed).
		Count(&count).Error
	return count, err
}

// SetStatus updates only the lifecycle status of a ticket
func (r *TicketRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.WorkStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
