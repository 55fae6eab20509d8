package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/mapper"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// CatalogService exposes the service / milestone / phase-template catalog
// that the workflow instantiator materializes tickets from.
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	ticketRepo  *repository.TicketRepository
	logger      *zap.Logger
}

func NewCatalogService(
	catalogRepo *repository.CatalogRepository,
	ticketRepo *repository.TicketRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		ticketRepo:  ticketRepo,
		logger:      logger,
	}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]domain.ServiceDTO, error) {
	services, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	dtos := make([]domain.ServiceDTO, len(services))
	for i := range services {
		dtos[i] = mapper.ToServiceDTO(&services[i])
	}
	return dtos, nil
}

func (s *CatalogService) GetServiceByCode(ctx context.Context, code string) (*domain.ServiceDTO, error) {
	svc, err := s.catalogRepo.GetServiceByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	dto := mapper.ToServiceDTO(svc)
	return &dto, nil
}

func (s *CatalogService) CreateService(ctx context.Context, svc *domain.Service) (*domain.ServiceDTO, error) {
	svc.Code = strings.ToUpper(strings.TrimSpace(svc.Code))
	if svc.Code == "" || strings.TrimSpace(svc.Name) == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrInvalidInput)
	}

	existing, err := s.catalogRepo.GetServiceByCode(ctx, svc.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check service code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: service code %s already exists", ErrConflict, svc.Code)
	}

	if err := s.catalogRepo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	dto := mapper.ToServiceDTO(svc)
	return &dto, nil
}

// DeleteService removes a service from the catalog. Deletion is refused
// while open tickets still reference the service code.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	services, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	var target *domain.Service
	for i := range services {
		if services[i].ID == id {
			target = &services[i]
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}

	openCount, err := s.ticketRepo.CountOpenByServiceCode(ctx, target.Code)
	if err != nil {
		return fmt.Errorf("failed to count open tickets: %w", err)
	}
	if openCount > 0 {
		return fmt.Errorf("%w: %d open tickets reference %s", ErrServiceInUse, openCount, target.Code)
	}

	if err := s.catalogRepo.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.logger.Info("service deleted",
		zap.String("code", target.Code))
	return nil
}

// ListMilestones returns the ordered milestone plan for a project type
func (s *CatalogService) ListMilestones(ctx context.Context, projectType string) ([]domain.MilestoneDTO, error) {
	milestones, err := s.catalogRepo.ListMilestonesForProjectType(ctx, strings.ToUpper(strings.TrimSpace(projectType)))
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	dtos := make([]domain.MilestoneDTO, len(milestones))
	for i := range milestones {
		dtos[i] = mapper.ToMilestoneDTO(&milestones[i])
	}
	return dtos, nil
}

func (s *CatalogService) CreateMilestone(ctx context.Context, milestone *domain.Milestone) (*domain.MilestoneDTO, error) {
	milestone.ProjectType = strings.ToUpper(strings.TrimSpace(milestone.ProjectType))
	if milestone.ProjectType == "" || strings.TrimSpace(milestone.Name) == "" {
		return nil, fmt.Errorf("%w: project type and name are required", ErrInvalidInput)
	}
	if milestone.SLADays <= 0 {
		milestone.SLADays = domain.DefaultMilestoneSLADays
	}

	if err := s.catalogRepo.CreateMilestone(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	dto := mapper.ToMilestoneDTO(milestone)
	return &dto, nil
}

// ListPhaseTemplates returns the ordered task blueprints of a milestone
func (s *CatalogService) ListPhaseTemplates(ctx context.Context, milestoneID uuid.UUID) ([]domain.PhaseTemplateDTO, error) {
	templates, err := s.catalogRepo.ListPhaseTemplates(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phase templates: %w", err)
	}

	dtos := make([]domain.PhaseTemplateDTO, len(templates))
	for i := range templates {
		dtos[i] = mapper.ToPhaseTemplateDTO(&templates[i])
	}
	return dtos, nil
}

func (s *CatalogService) CreatePhaseTemplate(ctx context.Context, template *domain.PhaseTemplate) (*domain.PhaseTemplateDTO, error) {
	if strings.TrimSpace(template.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if template.SLADays <= 0 {
		template.SLADays = domain.DefaultTaskSLADays
	}

	if err := s.catalogRepo.CreatePhaseTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create phase template: %w", err)
	}
	dto := mapper.ToPhaseTemplateDTO(template)
	return &dto, nil
}

// AssignServiceOwner maps a service to the consultant who owns tickets
// materialized for it
func (s *CatalogService) AssignServiceOwner(ctx context.Context, serviceCode string, ownerID uuid.UUID) error {
	svc, err := s.catalogRepo.GetServiceByCode(ctx, strings.ToUpper(strings.TrimSpace(serviceCode)))
	if err != nil {
		return fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return ErrNotFound
	}

	if err := s.catalogRepo.AssignServiceOwner(ctx, svc.ID, ownerID); err != nil {
		return fmt.Errorf("failed to assign service owner: %w", err)
	}
	return nil
}
