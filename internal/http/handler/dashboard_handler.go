package handler

import (
	"net/http"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService    *service.DashboardService
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewDashboardHandler(
	dashboardService *service.DashboardService,
	notificationService *service.NotificationService,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:    dashboardService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// @Summary Get dashboard progress rollups
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardData
// @Security ApiKeyAuth
// @Router /dashboard/progress [get]
func (h *DashboardHandler) Progress(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.ProgressData(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard data", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// @Summary List outbound notifications
// @Tags Dashboard
// @Produce json
// @Param kind query string false "Filter by kind (ticket_assigned, sla_warning, sla_escalation)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} domain.PaginatedResponse
// @Security ApiKeyAuth
// @Router /notifications [get]
func (h *DashboardHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	kind := domain.NotificationKind(r.URL.Query().Get("kind"))

	result, err := h.notificationService.List(r.Context(), kind, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
