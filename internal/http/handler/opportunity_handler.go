package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/service"
	"go.uber.org/zap"
)

type OpportunityHandler struct {
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

func NewOpportunityHandler(workflowService *service.WorkflowService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// @Summary List opportunities
// @Tags Opportunities
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} domain.PaginatedResponse
// @Security ApiKeyAuth
// @Router /opportunities [get]
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.workflowService.ListOpportunities(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Materialize the workflow for an opportunity
// @Description Creates one ticket per milestone of the opportunity's project type, each with its phase-template tasks. Re-running skips tickets already materialized.
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 201 {object} domain.GenerateResult
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /opportunities/{id}/generate-activities [post]
func (h *OpportunityHandler) GenerateActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid opportunity id")
		return
	}

	result, err := h.workflowService.GenerateFromOpportunity(r.Context(), id)
	if err != nil {
		h.logger.Error("workflow generation failed",
			zap.String("opportunity_id", id.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
