package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/enduser-digital/intelligence-api/docs"
	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/crm"
	"github.com/enduser-digital/intelligence-api/internal/database"
	"github.com/enduser-digital/intelligence-api/internal/http/handler"
	"github.com/enduser-digital/intelligence-api/internal/http/middleware"
	"github.com/enduser-digital/intelligence-api/internal/http/router"
	"github.com/enduser-digital/intelligence-api/internal/jobs"
	"github.com/enduser-digital/intelligence-api/internal/logger"
	"github.com/enduser-digital/intelligence-api/internal/mail"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/internal/service"
)

// @title Intelligence API
// @version 1.0
// @description Workflow materialization and SLA tracking backend for the Intelligence Platform, mirrored against CRM InCloud

// @contact.name API Support
// @contact.email support@enduser-digital.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API Key for operational endpoints

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "production":
		docs.SwaggerInfo.Host = "intelligence.enduser-digital.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	crmLinkRepo := repository.NewCRMLinkRepository(db)

	// External collaborators
	var crmClient service.CRMMirror
	if cfg.CRM.Enabled {
		crmClient = crm.NewClient(&cfg.CRM, log)
		log.Info("CRM mirror enabled", zap.String("base_url", cfg.CRM.BaseURL))
	} else {
		log.Info("CRM mirror disabled, materialization stays local")
	}
	mailSender := mail.NewSender(&cfg.SMTP, log)

	// Initialize services
	companyService := service.NewCompanyService(companyRepo, log)
	detectionService := service.NewDetectionService(catalogRepo, log)
	notificationService := service.NewNotificationService(mailSender, notificationRepo, ownerRepo, cfg, log)
	catalogService := service.NewCatalogService(catalogRepo, ticketRepo, log)
	workflowService := service.NewWorkflowService(
		ticketRepo, taskRepo, opportunityRepo, catalogRepo, ownerRepo, crmLinkRepo,
		companyService, detectionService, notificationService, crmClient, &cfg.CRM, log, db,
	)
	statusService := service.NewStatusService(ticketRepo, taskRepo, log)
	slaService := service.NewSLAService(taskRepo, catalogRepo, notificationService, &cfg.SLA, log)
	dashboardService := service.NewDashboardService(ticketRepo, taskRepo, catalogRepo, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	ticketHandler := handler.NewTicketHandler(statusService, workflowService, log)
	taskHandler := handler.NewTaskHandler(workflowService, log)
	opportunityHandler := handler.NewOpportunityHandler(workflowService, log)
	slaHandler := handler.NewSLAHandler(slaService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, notificationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		catalogHandler,
		ticketHandler,
		taskHandler,
		opportunityHandler,
		slaHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.SLA.JobsEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterSLAJobs(
			scheduler,
			slaService,
			statusService,
			log,
			cfg.SLA.SweepCron,
			cfg.SLA.AutoCloseCron,
			cfg.SLA.JobTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register SLA jobs", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.Strings("jobs", scheduler.JobNames()),
				zap.String("sweep_cron", cfg.SLA.SweepCron),
				zap.String("auto_close_cron", cfg.SLA.AutoCloseCron),
			)
		}
	} else {
		log.Info("SLA background jobs disabled, HTTP triggers remain available")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
