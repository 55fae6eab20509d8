package service

import (
	"context"
	"fmt"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// SLAService is the escalation scanner. It sweeps open tasks, classifies
// them against their phase template thresholds and sends warning or
// escalation notifications, de-duplicated through persisted watermarks.
type SLAService struct {
	taskRepo         *repository.TaskRepository
	catalogRepo      *repository.CatalogRepository
	notificationSvc  *NotificationService
	renotifyInterval time.Duration
	logger           *zap.Logger
}

func NewSLAService(
	taskRepo *repository.TaskRepository,
	catalogRepo *repository.CatalogRepository,
	notificationSvc *NotificationService,
	cfg *config.SLAConfig,
	logger *zap.Logger,
) *SLAService {
	return &SLAService{
		taskRepo:         taskRepo,
		catalogRepo:      catalogRepo,
		notificationSvc:  notificationSvc,
		renotifyInterval: cfg.RenotifyInterval(),
		logger:           logger,
	}
}

// Classify reports the deadline risk of a task at the given instant
func (s *SLAService) Classify(task *domain.Task, now time.Time) domain.SLAState {
	if task.Status == domain.WorkStatusClosed || task.DueDate == nil {
		return domain.SLAStateOnTrack
	}
	if task.DueDate.Before(now) {
		return domain.SLAStateOverdue
	}
	if !task.DueDate.After(now.AddDate(0, 0, domain.WarningLookaheadDays)) {
		return domain.SLAStateWarning
	}
	return domain.SLAStateOnTrack
}

// CheckOverdueTasks scans open tasks past their due date and escalates
// the ones overdue by at least their template's escalation threshold.
// One failed send never stops the sweep.
func (s *SLAService) CheckOverdueTasks(ctx context.Context) (*domain.SweepResult, error) {
	now := time.Now().UTC()

	overdue, err := s.taskRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	result := &domain.SweepResult{
		Checked:   len(overdue),
		Timestamp: now,
	}

	for i := range overdue {
		task := &overdue[i]
		daysOverdue := int(now.Sub(*task.DueDate).Hours() / 24)

		_, escalationDays := s.resolveThresholds(ctx, task)
		if daysOverdue < escalationDays {
			continue
		}
		if !s.shouldNotify(task.LastEscalatedAt, now) {
			continue
		}

		delivered, err := s.notificationSvc.SendSLAEscalation(ctx, task, daysOverdue)
		if err != nil {
			s.logger.Error("escalation notification failed",
				zap.String("task_title", task.Title),
				zap.Error(err))
			continue
		}
		if !delivered {
			continue
		}

		if err := s.taskRepo.MarkEscalated(ctx, task.ID, now); err != nil {
			s.logger.Error("failed to record escalation watermark",
				zap.String("task_title", task.Title),
				zap.Error(err))
		}
		result.Sent++

		s.logger.Info("escalation sent",
			zap.String("task_title", task.Title),
			zap.Int("days_overdue", daysOverdue))
	}

	return result, nil
}

// CheckWarningTasks scans open tasks due within the lookahead window and
// warns the ones within their template's warning threshold
func (s *SLAService) CheckWarningTasks(ctx context.Context) (*domain.SweepResult, error) {
	now := time.Now().UTC()
	horizon := time.Duration(domain.WarningLookaheadDays) * 24 * time.Hour

	upcoming, err := s.taskRepo.ListDueWithin(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}

	result := &domain.SweepResult{
		Checked:   len(upcoming),
		Timestamp: now,
	}

	for i := range upcoming {
		task := &upcoming[i]
		daysUntilDue := int(task.DueDate.Sub(now).Hours() / 24)

		warningDays, _ := s.resolveThresholds(ctx, task)
		if daysUntilDue > warningDays {
			continue
		}
		if !s.shouldNotify(task.LastWarnedAt, now) {
			continue
		}

		delivered, err := s.notificationSvc.SendSLAWarning(ctx, task, daysUntilDue)
		if err != nil {
			s.logger.Error("warning notification failed",
				zap.String("task_title", task.Title),
				zap.Error(err))
			continue
		}
		if !delivered {
			continue
		}

		if err := s.taskRepo.MarkWarned(ctx, task.ID, now); err != nil {
			s.logger.Error("failed to record warning watermark",
				zap.String("task_title", task.Title),
				zap.Error(err))
		}
		result.Sent++

		s.logger.Info("warning sent",
			zap.String("task_title", task.Title),
			zap.Int("days_until_due", daysUntilDue))
	}

	return result, nil
}

// resolveThresholds returns the (warning, escalation) day offsets for a
// task. The phase template reference captured at materialization wins;
// tasks from before that reference existed fall back to matching the
// template by base description, then to the defaults.
func (s *SLAService) resolveThresholds(ctx context.Context, task *domain.Task) (int, int) {
	var template *domain.PhaseTemplate

	if task.PhaseTemplate != nil {
		template = task.PhaseTemplate
	} else if task.PhaseTemplateID != nil {
		t, err := s.catalogRepo.GetPhaseTemplate(ctx, *task.PhaseTemplateID)
		if err != nil {
			s.logger.Warn("failed to load phase template", zap.Error(err))
		}
		template = t
	} else {
		t, err := s.catalogRepo.FindPhaseTemplateByDescription(ctx, task.BaseDescription())
		if err != nil {
			s.logger.Warn("failed to match phase template by description", zap.Error(err))
		}
		template = t
	}

	if template == nil {
		return domain.DefaultWarningDays, domain.DefaultEscalationDays
	}

	warning := template.WarningDays
	if warning <= 0 {
		warning = domain.DefaultWarningDays
	}
	escalation := template.EscalationDays
	if escalation <= 0 {
		escalation = domain.DefaultEscalationDays
	}
	return warning, escalation
}

// shouldNotify applies the re-notify watermark. A zero interval restores
// the legacy behavior of notifying on every sweep.
func (s *SLAService) shouldNotify(last *time.Time, now time.Time) bool {
	if last == nil || s.renotifyInterval == 0 {
		return true
	}
	return now.Sub(*last) >= s.renotifyInterval
}
