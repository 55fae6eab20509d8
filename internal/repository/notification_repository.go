package repository

import (
	"context"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository logs outbound notifications
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByTask returns the notification history for a task, newest first
func (r *NotificationRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// List returns a paginated notification log, optionally filtered by kind
func (r *NotificationRepository) List(ctx context.Context, kind domain.NotificationKind, page, pageSize int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&notifications).Error
	return notifications, total, err
}
