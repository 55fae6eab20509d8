package handler

import (
	"net/http"

	"github.com/enduser-digital/intelligence-api/internal/service"
	"go.uber.org/zap"
)

type SLAHandler struct {
	slaService *service.SLAService
	logger     *zap.Logger
}

func NewSLAHandler(slaService *service.SLAService, logger *zap.Logger) *SLAHandler {
	return &SLAHandler{
		slaService: slaService,
		logger:     logger,
	}
}

// @Summary Scan overdue tasks and send escalations
// @Tags SLA
// @Produce json
// @Success 200 {object} domain.SweepResult
// @Security ApiKeyAuth
// @Router /sla/check-overdue [get]
func (h *SLAHandler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	result, err := h.slaService.CheckOverdueTasks(r.Context())
	if err != nil {
		h.logger.Error("overdue check failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Scan tasks close to their deadline and send warnings
// @Tags SLA
// @Produce json
// @Success 200 {object} domain.SweepResult
// @Security ApiKeyAuth
// @Router /sla/check-warnings [get]
func (h *SLAHandler) CheckWarnings(w http.ResponseWriter, r *http.Request) {
	result, err := h.slaService.CheckWarningTasks(r.Context())
	if err != nil {
		h.logger.Error("warning check failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Run the full SLA sweep (warnings + escalations)
// @Tags SLA
// @Produce json
// @Success 200 {object} map[string]domain.SweepResult
// @Security ApiKeyAuth
// @Router /sla/run-escalation [post]
func (h *SLAHandler) RunEscalation(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.slaService.CheckWarningTasks(r.Context())
	if err != nil {
		h.logger.Error("warning check failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	escalations, err := h.slaService.CheckOverdueTasks(r.Context())
	if err != nil {
		h.logger.Error("overdue check failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"warnings":    warnings,
		"escalations": escalations,
	})
}
