package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/database"
	"github.com/enduser-digital/intelligence-api/internal/http/handler"
	"github.com/enduser-digital/intelligence-api/internal/http/middleware"

	_ "github.com/enduser-digital/intelligence-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	rateLimiter        *middleware.RateLimiter
	catalogHandler     *handler.CatalogHandler
	ticketHandler      *handler.TicketHandler
	taskHandler        *handler.TaskHandler
	opportunityHandler *handler.OpportunityHandler
	slaHandler         *handler.SLAHandler
	dashboardHandler   *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	catalogHandler *handler.CatalogHandler,
	ticketHandler *handler.TicketHandler,
	taskHandler *handler.TaskHandler,
	opportunityHandler *handler.OpportunityHandler,
	slaHandler *handler.SLAHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		rateLimiter:        rateLimiter,
		catalogHandler:     catalogHandler,
		ticketHandler:      ticketHandler,
		taskHandler:        taskHandler,
		opportunityHandler: opportunityHandler,
		slaHandler:         slaHandler,
		dashboardHandler:   dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe (checks database connectivity)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes, guarded by the shared API key
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(&rt.cfg.ApiKey, rt.logger))

		// Catalog
		r.Route("/services", func(r chi.Router) {
			r.Get("/", rt.catalogHandler.ListServices)
			r.Post("/", rt.catalogHandler.CreateService)
			r.Get("/{code}", rt.catalogHandler.GetService)
			r.Put("/{code}/owner", rt.catalogHandler.AssignServiceOwner)
			r.Delete("/{id}", rt.catalogHandler.DeleteService)
		})
		r.Route("/milestones", func(r chi.Router) {
			r.Get("/", rt.catalogHandler.ListMilestones)
			r.Post("/", rt.catalogHandler.CreateMilestone)
			r.Get("/{id}/phase-templates", rt.catalogHandler.ListPhaseTemplates)
		})
		r.Post("/phase-templates", rt.catalogHandler.CreatePhaseTemplate)

		// Tickets
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", rt.ticketHandler.List)
			r.Post("/auto-close", rt.ticketHandler.AutoClose)
			r.Get("/{id}", rt.ticketHandler.Get)
			r.Get("/{id}/tasks", rt.ticketHandler.ListTasks)
			r.Get("/{id}/completion", rt.ticketHandler.GetCompletion)
			r.Post("/{id}/opportunities", rt.ticketHandler.CreateOpportunities)
		})

		// Engagements
		r.Post("/engagements", rt.ticketHandler.CreateEngagement)

		// Tasks
		r.Patch("/tasks/{id}/status", rt.taskHandler.UpdateStatus)

		// Opportunities
		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", rt.opportunityHandler.List)
			r.Post("/{id}/generate-activities", rt.opportunityHandler.GenerateActivities)
		})

		// SLA scanner
		r.Route("/sla", func(r chi.Router) {
			r.Get("/check-overdue", rt.slaHandler.CheckOverdue)
			r.Get("/check-warnings", rt.slaHandler.CheckWarnings)
			r.Post("/run-escalation", rt.slaHandler.RunEscalation)
		})

		// Dashboard
		r.Get("/dashboard/progress", rt.dashboardHandler.Progress)
		r.Get("/notifications", rt.dashboardHandler.ListNotifications)
	})

	return r
}
