package repository

import (
	"context"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByTicket returns a ticket's tasks in execution order
func (r *TaskRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("sort_order ASC, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// CountByTicket returns total and closed task counts for a ticket
func (r *TaskRepository) CountByTicket(ctx context.Context, ticketID uuid.UUID) (total int64, closed int64, err error) {
	err = r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("ticket_id = ?", ticketID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("ticket_id = ? AND status = ?", ticketID, domain.WorkStatusClosed).
		Count(&closed).Error
	return total, closed, err
}

// CountOpenByTicket counts a ticket's non-closed tasks
func (r *TaskRepository) CountOpenByTicket(ctx context.Context, ticketID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("ticket_id = ? AND status <> ?", ticketID, domain.WorkStatusClosed).
		Count(&count).Error
	return count, err
}

// ListOverdue returns open tasks whose due date has passed, preloading
// the phase template for threshold lookup and the owner for delivery.
func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", domain.WorkStatusClosed, now).
		Preload("PhaseTemplate").
		Preload("Owner").
		Order("due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListDueWithin returns open tasks due after now but within the horizon
func (r *TaskRepository) ListDueWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("status <> ? AND due_date IS NOT NULL AND due_date > ? AND due_date <= ?",
			domain.WorkStatusClosed, now, now.Add(horizon)).
		Preload("PhaseTemplate").
		Preload("Owner").
		Order("due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

// MarkWarned records the warning watermark on a task
func (r *TaskRepository) MarkWarned(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", id).
		Update("last_warned_at", at).Error
}

// MarkEscalated records the escalation watermark on a task
func (r *TaskRepository) MarkEscalated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", id).
		Update("last_escalated_at", at).Error
}
