package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// @Summary List catalog services
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.ServiceDTO
// @Security ApiKeyAuth
// @Router /services [get]
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalogService.ListServices(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// @Summary Get a service by code
// @Tags Catalog
// @Produce json
// @Param code path string true "Service code"
// @Success 200 {object} domain.ServiceDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /services/{code} [get]
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	dto, err := h.catalogService.GetServiceByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Create a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateServiceRequest true "Service"
// @Success 201 {object} domain.ServiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /services [post]
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.catalogService.CreateService(r.Context(), &domain.Service{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		IsEngagement:      req.IsEngagement,
		LinkedServiceCode: req.LinkedServiceCode,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Delete a service
// @Tags Catalog
// @Param id path string true "Service ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	if err := h.catalogService.DeleteService(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary List milestones for a project type
// @Tags Catalog
// @Produce json
// @Param projectType query string true "Project type code"
// @Success 200 {array} domain.MilestoneDTO
// @Security ApiKeyAuth
// @Router /milestones [get]
func (h *CatalogHandler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	projectType := r.URL.Query().Get("projectType")
	if projectType == "" {
		respondWithError(w, http.StatusBadRequest, "projectType query parameter is required")
		return
	}

	milestones, err := h.catalogService.ListMilestones(r.Context(), projectType)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, milestones)
}

// @Summary Create a milestone
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateMilestoneRequest true "Milestone"
// @Success 201 {object} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /milestones [post]
func (h *CatalogHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.catalogService.CreateMilestone(r.Context(), &domain.Milestone{
		Name:           req.Name,
		ProjectType:    req.ProjectType,
		Order:          req.Order,
		SLADays:        req.SLADays,
		WarningDays:    req.WarningDays,
		EscalationDays: req.EscalationDays,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary List phase templates of a milestone
// @Tags Catalog
// @Produce json
// @Param id path string true "Milestone ID"
// @Success 200 {array} domain.PhaseTemplateDTO
// @Security ApiKeyAuth
// @Router /milestones/{id}/phase-templates [get]
func (h *CatalogHandler) ListPhaseTemplates(w http.ResponseWriter, r *http.Request) {
	milestoneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	templates, err := h.catalogService.ListPhaseTemplates(r.Context(), milestoneID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// @Summary Create a phase template
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreatePhaseTemplateRequest true "Phase template"
// @Success 201 {object} domain.PhaseTemplateDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /phase-templates [post]
func (h *CatalogHandler) CreatePhaseTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePhaseTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	milestoneID, err := uuid.Parse(req.MilestoneID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	dto, err := h.catalogService.CreatePhaseTemplate(r.Context(), &domain.PhaseTemplate{
		Code:                req.Code,
		Type:                req.Type,
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		MilestoneID:         milestoneID,
		Order:               req.Order,
		SLADays:             req.SLADays,
		WarningDays:         req.WarningDays,
		EscalationDays:      req.EscalationDays,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Assign the owning consultant of a service
// @Tags Catalog
// @Accept json
// @Param code path string true "Service code"
// @Param request body domain.AssignServiceOwnerRequest true "Owner"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /services/{code}/owner [put]
func (h *CatalogHandler) AssignServiceOwner(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignServiceOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid owner id")
		return
	}

	if err := h.catalogService.AssignServiceOwner(r.Context(), chi.URLParam(r, "code"), ownerID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
