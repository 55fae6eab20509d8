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

type TaskHandler struct {
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

func NewTaskHandler(workflowService *service.WorkflowService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// @Summary Update a task's status
// @Description Closing the last open task of a ticket triggers opportunity derivation.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.UpdateTaskStatusRequest true "New status"
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req domain.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.workflowService.UpdateTaskStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
