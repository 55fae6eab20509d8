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

type TicketHandler struct {
	statusService   *service.StatusService
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

func NewTicketHandler(
	statusService *service.StatusService,
	workflowService *service.WorkflowService,
	logger *zap.Logger,
) *TicketHandler {
	return &TicketHandler{
		statusService:   statusService,
		workflowService: workflowService,
		logger:          logger,
	}
}

// @Summary List tickets
// @Tags Tickets
// @Produce json
// @Param status query string false "Filter by status (open, suspended, closed)"
// @Param customerName query string false "Filter by customer name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} domain.PaginatedResponse
// @Security ApiKeyAuth
// @Router /tickets [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.WorkStatus(r.URL.Query().Get("status"))
	customerName := r.URL.Query().Get("customerName")

	result, err := h.statusService.ListTickets(r.Context(), status, customerName, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get a ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} domain.TicketDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	dto, err := h.statusService.GetTicket(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary List the tasks of a ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {array} domain.TaskDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tickets/{id}/tasks [get]
func (h *TicketHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	tasks, err := h.statusService.ListTicketTasks(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// @Summary Get task completion counts for a ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} domain.TicketCompletion
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tickets/{id}/completion [get]
func (h *TicketHandler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	completion, err := h.statusService.TicketCompletion(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, completion)
}

// @Summary Close every ticket whose tasks are all closed
// @Tags Tickets
// @Produce json
// @Success 200 {object} domain.AutoCloseResult
// @Security ApiKeyAuth
// @Router /tickets/auto-close [post]
func (h *TicketHandler) AutoClose(w http.ResponseWriter, r *http.Request) {
	result, err := h.statusService.AutoCloseCompletedTickets(r.Context())
	if err != nil {
		h.logger.Error("auto-close failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create the 24-month engagement ticket from a CRM activity
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body domain.CreateEngagementRequest true "Engagement"
// @Success 201 {object} domain.TicketDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /engagements [post]
func (h *TicketHandler) CreateEngagement(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.workflowService.CreateEngagement(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Derive opportunities from a fully closed ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 201 {array} domain.OpportunityDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /tickets/{id}/opportunities [post]
func (h *TicketHandler) CreateOpportunities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	created, err := h.workflowService.CreateOpportunitiesFromTicket(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
