package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/mail"
	"github.com/enduser-digital/intelligence-api/internal/mapper"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// serviceAccent is the branding accent applied to notification emails by
// service line
type serviceAccent struct {
	Label string
	Color string
}

var defaultAccent = serviceAccent{Label: "Servizio", Color: "#667eea"}

var serviceAccents = map[string]serviceAccent{
	"KHW": {Label: "Know How", Color: "#28a745"},
	"PBX": {Label: "Patent Box", Color: "#17a2b8"},
	"F40": {Label: "Formazione 4.0", Color: "#ffc107"},
	"T50": {Label: "Transizione 5.0", Color: "#6f42c1"},
	"BND": {Label: "Bandi", Color: "#fd7e14"},
}

// accentForCode picks the accent from the service code embedded in a
// ticket code (TCK-<SVC>-...)
func accentForCode(code string) serviceAccent {
	for prefix, accent := range serviceAccents {
		if strings.Contains(code, prefix) {
			return accent
		}
	}
	return defaultAccent
}

// NotificationService delivers workflow emails and keeps the outbound
// notification log. Every send is bounded by the configured timeout so a
// stuck SMTP conversation cannot stall a sweep.
type NotificationService struct {
	sender           mail.Sender
	notificationRepo *repository.NotificationRepository
	ownerRepo        *repository.OwnerRepository
	dashboardBaseURL string
	sendTimeout      time.Duration
	logger           *zap.Logger
}

func NewNotificationService(
	sender mail.Sender,
	notificationRepo *repository.NotificationRepository,
	ownerRepo *repository.OwnerRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		sender:           sender,
		notificationRepo: notificationRepo,
		ownerRepo:        ownerRepo,
		dashboardBaseURL: strings.TrimRight(cfg.App.DashboardBaseURL, "/"),
		sendTimeout:      cfg.SMTP.SendTimeoutDuration(),
		logger:           logger,
	}
}

// SendTicketAssigned emails the ticket owner after materialization.
// Returns false without error when the ticket has no resolvable
// recipient; materialization never depends on deliverability.
func (s *NotificationService) SendTicketAssigned(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	if ticket.OwnerID == nil {
		return false, nil
	}

	owner, err := s.ownerRepo.GetByID(ctx, *ticket.OwnerID)
	if err != nil {
		return false, fmt.Errorf("failed to get ticket owner: %w", err)
	}
	if owner == nil || owner.Email == "" {
		s.logger.Warn("ticket owner has no email, skipping notification",
			zap.String("ticket_code", ticket.Code))
		return false, nil
	}

	accent := accentForCode(ticket.Code)
	subject := fmt.Sprintf("Intelligence - Nuovo Ticket %s: %s", accent.Label, ticket.Title)
	body := s.ticketAssignedBody(ticket, owner, accent)

	delivered := s.deliver(ctx, owner.Email, subject, body)
	s.record(ctx, domain.NotificationKindTicketAssigned, &ticket.ID, nil, owner.Email, subject, delivered)
	return delivered, nil
}

// SendSLAWarning emails the task owner about an approaching deadline
func (s *NotificationService) SendSLAWarning(ctx context.Context, task *domain.Task, daysUntilDue int) (bool, error) {
	owner, err := s.taskRecipient(ctx, task)
	if err != nil || owner == nil {
		return false, err
	}

	subject := fmt.Sprintf("WARNING - Task in Scadenza: %s", task.Title)
	body := s.slaBody(task, owner,
		"WARNING TASK",
		fmt.Sprintf("Task in Scadenza tra %d giorni", daysUntilDue),
		fmt.Sprintf("Il seguente task scadrà tra <strong>%d giorni</strong>:", daysUntilDue),
		"#ffc107")

	delivered := s.deliver(ctx, owner.Email, subject, body)
	s.record(ctx, domain.NotificationKindSLAWarning, nil, &task.ID, owner.Email, subject, delivered)
	return delivered, nil
}

// SendSLAEscalation emails the task owner about a missed deadline
func (s *NotificationService) SendSLAEscalation(ctx context.Context, task *domain.Task, daysOverdue int) (bool, error) {
	owner, err := s.taskRecipient(ctx, task)
	if err != nil || owner == nil {
		return false, err
	}

	subject := fmt.Sprintf("ESCALATION - Task Scaduto: %s", task.Title)
	body := s.slaBody(task, owner,
		"ESCALATION TASK",
		fmt.Sprintf("Task Scaduto da %d giorni", daysOverdue),
		fmt.Sprintf("Il seguente task è scaduto da <strong>%d giorni</strong> e richiede intervento immediato:", daysOverdue),
		"#dc3545")

	delivered := s.deliver(ctx, owner.Email, subject, body)
	s.record(ctx, domain.NotificationKindSLAEscalation, nil, &task.ID, owner.Email, subject, delivered)
	return delivered, nil
}

// List returns a page of the outbound notification log, optionally
// filtered by kind
func (s *NotificationService) List(ctx context.Context, kind domain.NotificationKind, page, pageSize int) (*domain.PaginatedResponse, error) {
	notifications, total, err := s.notificationRepo.List(ctx, kind, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *NotificationService) taskRecipient(ctx context.Context, task *domain.Task) (*domain.Owner, error) {
	if task.OwnerID == nil {
		s.logger.Warn("task has no owner, skipping notification",
			zap.String("task_title", task.Title))
		return nil, nil
	}

	owner, err := s.ownerRepo.GetByID(ctx, *task.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task owner: %w", err)
	}
	if owner == nil || owner.Email == "" {
		s.logger.Warn("task owner has no email, skipping notification",
			zap.String("task_title", task.Title))
		return nil, nil
	}
	return owner, nil
}

// deliver sends with the configured timeout and reports success. Failed
// sends are logged and swallowed; the caller records the outcome.
func (s *NotificationService) deliver(ctx context.Context, to, subject, body string) bool {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, to, subject, body); err != nil {
		s.logger.Error("notification send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return false
	}
	return true
}

func (s *NotificationService) record(ctx context.Context, kind domain.NotificationKind, ticketID, taskID *uuid.UUID, recipient, subject string, delivered bool) {
	notification := &domain.Notification{
		Kind:      kind,
		TicketID:  ticketID,
		TaskID:    taskID,
		Recipient: recipient,
		Subject:   subject,
		Delivered: delivered,
	}
	if delivered {
		now := time.Now().UTC()
		notification.SentAt = &now
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("failed to record notification", zap.Error(err))
	}
}

func (s *NotificationService) ticketAssignedBody(ticket *domain.Ticket, owner *domain.Owner, accent serviceAccent) string {
	dueDate := "Non specificata"
	if ticket.DueDate != nil {
		dueDate = ticket.DueDate.Format("02/01/2006")
	}
	customer := ticket.CustomerName
	if customer == "" {
		customer = "N/A"
	}
	account := ticket.Account
	if account == "" {
		account = "N/A"
	}

	return fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<div style="background: linear-gradient(135deg, %[1]s 0%%, #764ba2 100%%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
			<h1 style="margin: 0;">Intelligence Platform</h1>
			<h2 style="margin: 10px 0 0 0;">Nuovo Ticket %[2]s</h2>
		</div>
		<div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 8px 8px;">
			<p>Ciao <strong>%[3]s</strong>,</p>
			<p>Ti è stato assegnato un nuovo ticket %[2]s:</p>
			<div style="background: white; border-radius: 8px; padding: 20px; margin: 20px 0; border-left: 4px solid %[1]s;">
				<h3 style="margin-top: 0; color: #333;">%[4]s</h3>
				<p><strong>Codice:</strong> %[5]s</p>
				<p><strong>Cliente:</strong> %[6]s</p>
				<p><strong>Account:</strong> %[7]s</p>
				<p><strong>Scadenza:</strong> %[8]s</p>
			</div>
			<p style="text-align: center; margin: 30px 0;">
				<a href="%[9]s/dashboard/ticket/%[10]s"
				   style="background: %[1]s; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
					Visualizza Ticket %[2]s
				</a>
			</p>
			<hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
			<p style="font-size: 12px; color: #666;">
				Ricevi questa email perché sei il responsabile di questo ticket %[2]s.
			</p>
		</div>
	</div>`,
		accent.Color, accent.Label, owner.Name, ticket.Title, ticket.Code,
		customer, account, dueDate, s.dashboardBaseURL, ticket.ID)
}

func (s *NotificationService) slaBody(task *domain.Task, owner *domain.Owner, heading, subheading, lead, color string) string {
	dueDate := "N/A"
	if task.DueDate != nil {
		dueDate = task.DueDate.Format("02/01/2006 15:04")
	}
	customer := task.CustomerName
	if customer == "" {
		customer = "N/A"
	}

	return fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<div style="background: linear-gradient(135deg, %[1]s 0%%, #764ba2 100%%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
			<h1 style="margin: 0;">%[2]s</h1>
			<h2 style="margin: 10px 0 0 0;">%[3]s</h2>
		</div>
		<div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 8px 8px;">
			<p>Ciao <strong>%[4]s</strong>,</p>
			<p>%[5]s</p>
			<div style="background: white; border-radius: 8px; padding: 20px; margin: 20px 0; border-left: 4px solid %[1]s;">
				<h3 style="margin-top: 0; color: %[1]s;">%[6]s</h3>
				<p><strong>Cliente:</strong> %[7]s</p>
				<p><strong>Scadenza:</strong> %[8]s</p>
			</div>
			<p style="text-align: center; margin: 30px 0;">
				<a href="%[9]s/dashboard/task/%[10]s"
				   style="background: %[1]s; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
					Gestisci Task
				</a>
			</p>
			<hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
			<p style="font-size: 12px; color: #666;">
				Questa è una notifica automatica sulle scadenze dei task.
			</p>
		</div>
	</div>`,
		color, heading, subheading, owner.Name, lead, task.Title,
		customer, dueDate, s.dashboardBaseURL, task.ID)
}
