package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/crm"
	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/mapper"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// engagement materialization constants. The 24-month engagement is a
// fixed-shape workflow, not catalog-driven.
const (
	engagementTicketTitle = "Incarico 24 mesi"
	engagementCodePrefix  = "TCK-I24"
	engagementSLADays     = 3
)

var engagementTaskTitles = []string{
	"Predisposizione incarico",
	"Invio incarico",
	"Firma incarico",
}

// CRMMirror is the slice of the CRM client the workflow engine uses.
// Mirroring is best-effort everywhere: a failed remote call is logged
// and local materialization continues without the remote id.
type CRMMirror interface {
	CreateActivity(ctx context.Context, payload *crm.ActivityPayload) (int64, error)
	CreateOpportunity(ctx context.Context, payload *crm.OpportunityPayload) (int64, error)
}

// WorkflowService materializes tickets and tasks from the catalog. It is
// the write side of the system: opportunity instantiation, engagement
// creation, task lifecycle, and opportunity derivation.
type WorkflowService struct {
	ticketRepo      *repository.TicketRepository
	taskRepo        *repository.TaskRepository
	opportunityRepo *repository.OpportunityRepository
	catalogRepo     *repository.CatalogRepository
	ownerRepo       *repository.OwnerRepository
	crmLinkRepo     *repository.CRMLinkRepository
	companySvc      *CompanyService
	detectionSvc    *DetectionService
	notificationSvc *NotificationService
	crmClient       CRMMirror
	crmCfg          *config.CRMConfig
	logger          *zap.Logger
	db              *gorm.DB
}

func NewWorkflowService(
	ticketRepo *repository.TicketRepository,
	taskRepo *repository.TaskRepository,
	opportunityRepo *repository.OpportunityRepository,
	catalogRepo *repository.CatalogRepository,
	ownerRepo *repository.OwnerRepository,
	crmLinkRepo *repository.CRMLinkRepository,
	companySvc *CompanyService,
	detectionSvc *DetectionService,
	notificationSvc *NotificationService,
	crmClient CRMMirror,
	crmCfg *config.CRMConfig,
	logger *zap.Logger,
	db *gorm.DB,
) *WorkflowService {
	return &WorkflowService{
		ticketRepo:      ticketRepo,
		taskRepo:        taskRepo,
		opportunityRepo: opportunityRepo,
		catalogRepo:     catalogRepo,
		ownerRepo:       ownerRepo,
		crmLinkRepo:     crmLinkRepo,
		companySvc:      companySvc,
		detectionSvc:    detectionSvc,
		notificationSvc: notificationSvc,
		crmClient:       crmClient,
		crmCfg:          crmCfg,
		logger:          logger,
		db:              db,
	}
}

// GenerateFromOpportunity materializes one ticket per milestone of the
// opportunity's project type, each with one task per phase template.
// Ticket codes embed the opportunity short id, so re-running against the
// same opportunity skips everything already materialized.
func (s *WorkflowService) GenerateFromOpportunity(ctx context.Context, opportunityID uuid.UUID) (*domain.GenerateResult, error) {
	opportunity, err := s.opportunityRepo.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if opportunity == nil {
		return nil, fmt.Errorf("%w: opportunity %s", ErrNotFound, opportunityID)
	}

	company, err := s.companySvc.ResolveByName(ctx, opportunity.CustomerName)
	if err != nil {
		return nil, err
	}

	projectType := opportunity.ProjectType()
	milestones, err := s.catalogRepo.ListMilestonesForProjectType(ctx, projectType)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	if len(milestones) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProjectType, projectType)
	}

	owner, err := s.resolveTicketOwner(ctx, projectType, opportunity)
	if err != nil {
		return nil, err
	}

	account, err := s.resolveAccount(ctx, opportunity.CustomerName, owner)
	if err != nil {
		return nil, err
	}

	detectedServices, err := s.detectionSvc.ExtractServiceLabels(ctx, opportunity.Description)
	if err != nil {
		return nil, err
	}

	suffix := domain.ShortID(opportunity.ID)
	now := time.Now().UTC()

	result := &domain.GenerateResult{}
	var createdTickets []*domain.Ticket

	for seq, milestone := range milestones {
		code := fmt.Sprintf("TCK-%s-%s-%02d", projectType, suffix, seq+1)

		exists, err := s.ticketRepo.ExistsByCodeAndCustomer(ctx, code, opportunity.CustomerName)
		if err != nil {
			return nil, fmt.Errorf("failed to check ticket code: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}

		crmActivityID := s.mirrorActivity(ctx, opportunity, company, &milestone)

		slaDays := milestone.SLADays
		if slaDays <= 0 {
			slaDays = domain.DefaultMilestoneSLADays
		}
		dueDate := now.AddDate(0, 0, slaDays)

		ticket := &domain.Ticket{
			Code:             code,
			Title:            fmt.Sprintf("%s - %s", milestone.Name, code),
			Description:      "Creato da fase CRM",
			Status:           domain.WorkStatusOpen,
			Priority:         2,
			DueDate:          &dueDate,
			Account:          account,
			CustomerName:     opportunity.CustomerName,
			CompanyID:        &company.ID,
			MilestoneID:      &milestone.ID,
			OpportunityID:    &opportunity.ID,
			CRMActivityID:    crmActivityID,
			DetectedServices: detectedServices,
		}
		if owner != nil {
			ticket.OwnerID = &owner.ID
			ticket.OwnerName = owner.FullName()
		}

		taskCount, err := s.materializeTicket(ctx, ticket, milestone.ID, owner, now)
		if err != nil {
			// A concurrent run can claim the code between the existence
			// check and the insert; the unique index makes that a skip,
			// not a failure.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Info("ticket code already claimed, skipping",
					zap.String("code", code))
				result.Skipped++
				continue
			}
			return nil, err
		}

		result.TaskCount += taskCount
		result.Tickets = append(result.Tickets, mapper.ToTicketDTO(ticket))
		createdTickets = append(createdTickets, ticket)
	}

	s.logger.Info("workflow materialized",
		zap.String("opportunity_code", opportunity.Code),
		zap.String("project_type", projectType),
		zap.Int("tickets", len(result.Tickets)),
		zap.Int("tasks", result.TaskCount),
		zap.Int("skipped", result.Skipped))

	// Notifications go out after all writes, so a broken SMTP server
	// cannot leave the materialization half done.
	for _, ticket := range createdTickets {
		if _, err := s.notificationSvc.SendTicketAssigned(ctx, ticket); err != nil {
			s.logger.Error("ticket notification failed",
				zap.String("ticket_code", ticket.Code),
				zap.Error(err))
		}
	}

	return result, nil
}

// materializeTicket persists a ticket and its catalog tasks in one
// transaction. A failed task insert rolls back the ticket row, so the
// code is never claimed without its tasks.
func (s *WorkflowService) materializeTicket(ctx context.Context, ticket *domain.Ticket, milestoneID uuid.UUID, owner *domain.Owner, now time.Time) (int, error) {
	templates, err := s.catalogRepo.ListPhaseTemplates(ctx, milestoneID)
	if err != nil {
		return 0, fmt.Errorf("failed to list phase templates: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket %s: %w", ticket.Code, err)
		}
		return s.materializeTasks(tx, ticket, milestoneID, templates, owner, now)
	})
	if err != nil {
		return 0, err
	}
	return len(templates), nil
}

// materializeTasks creates one task per phase template of the milestone,
// chained through predecessor references in catalog order
func (s *WorkflowService) materializeTasks(tx *gorm.DB, ticket *domain.Ticket, milestoneID uuid.UUID, templates []domain.PhaseTemplate, owner *domain.Owner, now time.Time) error {
	taskByTemplate := make(map[uuid.UUID]uuid.UUID, len(templates))
	var predecessorID *uuid.UUID

	for i := range templates {
		template := &templates[i]

		slaDays := template.SLADays
		if slaDays <= 0 {
			slaDays = domain.DefaultTaskSLADays
		}
		dueDate := now.AddDate(0, 0, slaDays)

		order := template.Order
		if order <= 0 {
			order = i + 1
		}

		task := &domain.Task{
			TicketID:        ticket.ID,
			PhaseTemplateID: &template.ID,
			MilestoneID:     &milestoneID,
			Title:           template.Description,
			Description:     template.TaskDescription(),
			Status:          domain.WorkStatusOpen,
			Priority:        2,
			DueDate:         &dueDate,
			Order:           order,
			PredecessorID:   predecessorID,
			CustomerName:    ticket.CustomerName,
		}
		if owner != nil {
			task.OwnerID = &owner.ID
		}
		if template.ParentID != nil {
			if parentTaskID, ok := taskByTemplate[*template.ParentID]; ok {
				task.ParentID = &parentTaskID
			}
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task for ticket %s: %w", ticket.Code, err)
		}

		taskByTemplate[template.ID] = task.ID
		predecessorID = &task.ID
	}

	return nil
}

// CreateEngagement materializes the fixed 24-month engagement ticket
// from a triggering CRM activity. The code embeds the activity id's last
// four digits; an existing code means the engagement was already created.
func (s *WorkflowService) CreateEngagement(ctx context.Context, req *domain.CreateEngagementRequest) (*domain.TicketDTO, error) {
	suffix := fmt.Sprintf("%d", req.CRMActivityID)
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	code := fmt.Sprintf("%s-%s-00", engagementCodePrefix, suffix)

	existing, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check engagement code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: engagement %s already exists", ErrConflict, code)
	}

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, engagementSLADays)

	ticket := &domain.Ticket{
		Code:             code,
		Title:            engagementTicketTitle,
		Description:      req.Description,
		Status:           domain.WorkStatusOpen,
		Priority:         1,
		DueDate:          &dueDate,
		OwnerName:        req.OwnerName,
		Account:          req.OwnerName,
		CustomerName:     req.CustomerName,
		CRMActivityID:    req.CRMActivityID,
		DetectedServices: []string{},
	}
	if req.OwnerID != "" {
		ownerID, err := uuid.Parse(req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid owner id", ErrInvalidInput)
		}
		ticket.OwnerID = &ownerID
		if owner, err := s.ownerRepo.GetByID(ctx, ownerID); err == nil && owner != nil {
			ticket.OwnerName = owner.FullName()
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create engagement ticket: %w", err)
		}
		for i, title := range engagementTaskTitles {
			task := &domain.Task{
				TicketID:     ticket.ID,
				Title:        title,
				Description:  title,
				Status:       domain.WorkStatusOpen,
				Priority:     2,
				DueDate:      &dueDate,
				Order:        i + 1,
				OwnerID:      ticket.OwnerID,
				CustomerName: ticket.CustomerName,
			}
			if err := tx.Create(task).Error; err != nil {
				return fmt.Errorf("failed to create engagement task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: engagement %s already exists", ErrConflict, code)
		}
		return nil, err
	}

	s.logger.Info("engagement materialized",
		zap.String("ticket_code", code),
		zap.Int64("crm_activity_id", req.CRMActivityID))

	if _, err := s.notificationSvc.SendTicketAssigned(ctx, ticket); err != nil {
		s.logger.Error("engagement notification failed",
			zap.String("ticket_code", code),
			zap.Error(err))
	}

	dto := mapper.ToTicketDTO(ticket)
	return &dto, nil
}

// CreateOpportunitiesFromTicket derives one opportunity per detected
// service of a fully closed ticket. Derivation is refused while the
// ticket has open tasks or lacks a customer or owner.
func (s *WorkflowService) CreateOpportunitiesFromTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.OpportunityDTO, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
	}

	if strings.TrimSpace(ticket.CustomerName) == "" {
		return nil, fmt.Errorf("%w: ticket %s", ErrMissingCustomer, ticket.Code)
	}
	if ticket.OwnerID == nil && ticket.OwnerName == "" {
		return nil, fmt.Errorf("%w: ticket %s", ErrMissingOwner, ticket.Code)
	}

	openCount, err := s.taskRepo.CountOpenByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count open tasks: %w", err)
	}
	if openCount > 0 {
		return nil, fmt.Errorf("%w: ticket %s has %d open tasks", ErrOpenTasks, ticket.Code, openCount)
	}

	company, err := s.companySvc.ResolveByName(ctx, ticket.CustomerName)
	if err != nil {
		return nil, err
	}

	codes, err := s.detectionSvc.ResolveServiceCodes(ctx, "", ticket.DetectedServices)
	if err != nil {
		return nil, err
	}

	suffix := ticketSuffix(ticket)
	now := time.Now().UTC()
	var created []domain.OpportunityDTO

	for _, serviceCode := range codes {
		opportunityCode := fmt.Sprintf("%s-%s", serviceCode, suffix)

		exists, err := s.opportunityRepo.ExistsByCodeAndCustomer(ctx, opportunityCode, ticket.CustomerName)
		if err != nil {
			return nil, fmt.Errorf("failed to check opportunity code: %w", err)
		}
		if exists {
			s.logger.Info("opportunity already exists, skipping",
				zap.String("code", opportunityCode))
			continue
		}

		opportunity := &domain.Opportunity{
			Code:          opportunityCode,
			Title:         fmt.Sprintf("[%s] - %s", serviceCode, ticket.CustomerName),
			CustomerName:  ticket.CustomerName,
			CompanyID:     &company.ID,
			Description:   fmt.Sprintf("Opportunità per servizio %s. Origine ticket: %s", serviceCode, ticket.Code),
			Status:        1,
			Phase:         s.crmCfg.DefaultOpportunityPhase,
			Category:      s.crmCfg.DefaultOpportunityCategory,
			CloseDate:     &now,
			OwnerID:       ticket.OwnerID,
			SalesPersonID: ticket.OwnerID,
		}

		crmOpportunityID := s.mirrorOpportunity(ctx, opportunity, company)
		opportunity.CRMID = crmOpportunityID

		if err := s.opportunityRepo.Create(ctx, opportunity); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Info("opportunity code already claimed, skipping",
					zap.String("code", opportunityCode))
				continue
			}
			return nil, fmt.Errorf("failed to create opportunity %s: %w", opportunityCode, err)
		}

		if crmOpportunityID != 0 {
			link := &domain.CRMLink{
				TicketID:         ticket.ID,
				CRMOpportunityID: crmOpportunityID,
				CRMActivityID:    ticket.CRMActivityID,
				CRMCompanyID:     company.CRMID,
			}
			if err := s.crmLinkRepo.Create(ctx, link); err != nil {
				s.logger.Error("failed to record CRM link",
					zap.String("opportunity_code", opportunityCode),
					zap.Error(err))
			}
		}

		created = append(created, mapper.ToOpportunityDTO(opportunity))
	}

	s.logger.Info("opportunities derived from ticket",
		zap.String("ticket_code", ticket.Code),
		zap.Int("created", len(created)))

	return created, nil
}

// UpdateTaskStatus changes a task's lifecycle status. Closing the last
// open task of a ticket triggers opportunity derivation; derivation
// failures are logged and never roll back the status change.
func (s *WorkflowService) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status domain.WorkStatus) (*domain.TaskDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}

	task.Status = status
	if status == domain.WorkStatusClosed {
		if task.ClosedAt == nil {
			now := time.Now().UTC()
			task.ClosedAt = &now
		}
	} else {
		task.ClosedAt = nil
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if status == domain.WorkStatusClosed {
		s.processTaskClosure(ctx, task)
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// processTaskClosure runs the closure side effects once the updated task
// left no open siblings behind
func (s *WorkflowService) processTaskClosure(ctx context.Context, task *domain.Task) {
	openCount, err := s.taskRepo.CountOpenByTicket(ctx, task.TicketID)
	if err != nil {
		s.logger.Error("failed to count open tasks after closure", zap.Error(err))
		return
	}
	if openCount > 0 {
		return
	}

	created, err := s.CreateOpportunitiesFromTicket(ctx, task.TicketID)
	if err != nil {
		s.logger.Warn("opportunity derivation skipped",
			zap.String("task_title", task.Title),
			zap.Error(err))
		return
	}

	s.logger.Info("last task closed, opportunities derived",
		zap.Int("created", len(created)))
}

// resolveTicketOwner picks the owner for materialized tickets: the
// consultant assigned to the service line, else the opportunity's sales
// person, else the opportunity owner.
func (s *WorkflowService) resolveTicketOwner(ctx context.Context, projectType string, opportunity *domain.Opportunity) (*domain.Owner, error) {
	owner, err := s.catalogRepo.OwnerForServiceCode(ctx, projectType)
	if err != nil {
		return nil, fmt.Errorf("failed to look up service owner: %w", err)
	}
	if owner != nil {
		return owner, nil
	}

	for _, id := range []*uuid.UUID{opportunity.SalesPersonID, opportunity.OwnerID} {
		if id == nil {
			continue
		}
		owner, err := s.ownerRepo.GetByID(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
		if owner != nil {
			return owner, nil
		}
	}

	s.logger.Warn("no owner resolved for project type",
		zap.String("project_type", projectType))
	return nil, nil
}

// resolveAccount carries the account name over from the customer's
// engagement ticket when one exists
func (s *WorkflowService) resolveAccount(ctx context.Context, customerName string, owner *domain.Owner) (string, error) {
	engagements, err := s.ticketRepo.ListByCodePrefixAndCustomer(ctx, engagementCodePrefix, customerName)
	if err != nil {
		return "", fmt.Errorf("failed to look up engagement ticket: %w", err)
	}
	if len(engagements) > 0 && engagements[0].Account != "" {
		return engagements[0].Account, nil
	}
	if owner != nil {
		return owner.FullName(), nil
	}
	return "", nil
}

// mirrorActivity creates the remote CRM activity for a milestone ticket.
// Returns 0 when mirroring is disabled or fails.
func (s *WorkflowService) mirrorActivity(ctx context.Context, opportunity *domain.Opportunity, company *domain.Company, milestone *domain.Milestone) int64 {
	if s.crmClient == nil || !s.crmCfg.Enabled {
		return 0
	}

	now := time.Now().UTC().Format(time.RFC3339)
	payload := &crm.ActivityPayload{
		Subject:         fmt.Sprintf("%s (%s)", milestone.Name, milestone.ProjectType),
		Title:           milestone.Name,
		Description:     fmt.Sprintf("Generata attività per fase '%s'", milestone.Name),
		ActivityDate:    now,
		ActivityEndDate: now,
		CompanyID:       company.CRMID,
		OpportunityID:   opportunity.CRMID,
		State:           2,
		Type:            7,
		SubTypeID:       s.crmCfg.DefaultActivitySubTypeID,
	}

	remoteID, err := s.crmClient.CreateActivity(ctx, payload)
	if err != nil {
		s.logger.Warn("CRM activity mirror failed, continuing locally",
			zap.String("milestone", milestone.Name),
			zap.Error(err))
		return 0
	}
	return remoteID
}

// mirrorOpportunity creates the remote CRM opportunity. Returns 0 when
// mirroring is disabled or fails.
func (s *WorkflowService) mirrorOpportunity(ctx context.Context, opportunity *domain.Opportunity, company *domain.Company) int64 {
	if s.crmClient == nil || !s.crmCfg.Enabled {
		return 0
	}

	payload := &crm.OpportunityPayload{
		Title:       opportunity.Title,
		Code:        opportunity.Code,
		CrossID:     company.CRMID,
		Description: opportunity.Description,
		Phase:       opportunity.Phase,
		Category:    opportunity.Category,
		Status:      opportunity.Status,
		Amount:      opportunity.Amount,
		CloseDate:   time.Now().UTC().Format(time.RFC3339),
	}

	remoteID, err := s.crmClient.CreateOpportunity(ctx, payload)
	if err != nil {
		s.logger.Warn("CRM opportunity mirror failed, continuing locally",
			zap.String("opportunity_code", opportunity.Code),
			zap.Error(err))
		return 0
	}
	return remoteID
}

// ListOpportunities returns a page of opportunities
func (s *WorkflowService) ListOpportunities(ctx context.Context, page, pageSize int) (*domain.PaginatedResponse, error) {
	opportunities, total, err := s.opportunityRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opportunities))
	for i := range opportunities {
		dtos[i] = mapper.ToOpportunityDTO(&opportunities[i])
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

// ticketSuffix extracts the short id segment of a ticket code
// (TCK-<SVC>-<suffix>-<NN>), falling back to the ticket uuid fragment
func ticketSuffix(ticket *domain.Ticket) string {
	parts := strings.Split(ticket.Code, "-")
	if len(parts) >= 4 {
		return parts[2]
	}
	return domain.ShortID(ticket.ID)
}
