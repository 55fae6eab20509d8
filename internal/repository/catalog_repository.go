package repository

import (
	"context"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads the Service -> Milestone -> PhaseTemplate
// hierarchy. Catalog rows are admin-managed configuration and read-only
// for the workflow instantiator.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListServices returns all service lines ordered by code
func (r *CatalogRepository) ListServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	err := r.db.WithContext(ctx).Order("code ASC").Find(&services).Error
	return services, err
}

// GetServiceByCode returns the service with the given project-type code
func (r *CatalogRepository) GetServiceByCode(ctx context.Context, code string) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).First(&service, "code = ?", code).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetServiceByName returns the service with the given display name
func (r *CatalogRepository) GetServiceByName(ctx context.Context, name string) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).First(&service, "LOWER(name) = LOWER(?)", name).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// CreateService adds a service line to the catalog
func (r *CatalogRepository) CreateService(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

// DeleteService removes a service line. Callers must check for open
// workflow references first.
func (r *CatalogRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Service{}, "id = ?", id).Error
}

// ListMilestonesForProjectType returns milestones for a project-type code
// in non-decreasing order. Ties break on creation time then id so the
// sequencing is deterministic.
func (r *CatalogRepository) ListMilestonesForProjectType(ctx context.Context, projectType string) ([]domain.Milestone, error) {
	var milestones []domain.Milestone
	err := r.db.WithContext(ctx).
		Where("project_type = ?", projectType).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&milestones).Error
	return milestones, err
}

// CreateMilestone adds a milestone to the catalog
func (r *CatalogRepository) CreateMilestone(ctx context.Context, milestone *domain.Milestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

// ListPhaseTemplates returns a milestone's phase templates in order,
// with the same deterministic tiebreak as milestones.
func (r *CatalogRepository) ListPhaseTemplates(ctx context.Context, milestoneID uuid.UUID) ([]domain.PhaseTemplate, error) {
	var templates []domain.PhaseTemplate
	err := r.db.WithContext(ctx).
		Where("milestone_id = ?", milestoneID).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&templates).Error
	return templates, err
}

// CreatePhaseTemplate adds a phase template to the catalog
func (r *CatalogRepository) CreatePhaseTemplate(ctx context.Context, template *domain.PhaseTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// GetPhaseTemplate returns a phase template by id
func (r *CatalogRepository) GetPhaseTemplate(ctx context.Context, id uuid.UUID) (*domain.PhaseTemplate, error) {
	var template domain.PhaseTemplate
	err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// FindPhaseTemplateByDescription matches a template by its base
// description. Fallback for tasks created before the template FK existed.
func (r *CatalogRepository) FindPhaseTemplateByDescription(ctx context.Context, description string) (*domain.PhaseTemplate, error) {
	var template domain.PhaseTemplate
	err := r.db.WithContext(ctx).First(&template, "description = ?", description).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// OwnerForServiceCode resolves the consultant assigned to a service code
// through the service assignment mapping. Returns nil when no assignment
// exists.
func (r *CatalogRepository) OwnerForServiceCode(ctx context.Context, code string) (*domain.Owner, error) {
	var assignment domain.ServiceAssignment
	err := r.db.WithContext(ctx).
		Joins("JOIN services ON services.id = service_assignments.service_id").
		Where("services.code = ?", code).
		Preload("Owner").
		First(&assignment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return assignment.Owner, nil
}

// AssignServiceOwner maps a service to its responsible consultant
func (r *CatalogRepository) AssignServiceOwner(ctx context.Context, serviceID, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&domain.ServiceAssignment{
		ServiceID: serviceID,
		OwnerID:   ownerID,
	}).Error
}
