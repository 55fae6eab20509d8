package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/database"
	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with the full schema.
// Each test gets its own isolated database, so there is nothing to clean
// up between tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open in-memory database")

	// A single connection keeps every session on the same in-memory DB
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")
	return db
}

// CreateCompany inserts a customer company
func CreateCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	company := &domain.Company{
		Name:      name,
		VATNumber: "12345678901",
		CRMID:     9001,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateOwner inserts a consultant with the given email
func CreateOwner(t *testing.T, db *gorm.DB, name, surname, email string) *domain.Owner {
	owner := &domain.Owner{
		Name:    name,
		Surname: surname,
		Email:   email,
	}
	require.NoError(t, db.Create(owner).Error)
	return owner
}

// CreateService inserts a catalog service line
func CreateService(t *testing.T, db *gorm.DB, code, name string, isEngagement bool) *domain.Service {
	service := &domain.Service{
		Code:         code,
		Name:         name,
		IsEngagement: isEngagement,
	}
	require.NoError(t, db.Create(service).Error)
	return service
}

// CreateMilestone inserts a milestone for a project type
func CreateMilestone(t *testing.T, db *gorm.DB, projectType, name string, order, slaDays int) *domain.Milestone {
	milestone := &domain.Milestone{
		Name:           name,
		ProjectType:    projectType,
		Order:          order,
		SLADays:        slaDays,
		WarningDays:    domain.DefaultWarningDays,
		EscalationDays: domain.DefaultEscalationDays,
	}
	require.NoError(t, db.Create(milestone).Error)
	return milestone
}

// CreatePhaseTemplate inserts a task blueprint under a milestone
func CreatePhaseTemplate(t *testing.T, db *gorm.DB, milestoneID uuid.UUID, description string, order, slaDays int) *domain.PhaseTemplate {
	template := &domain.PhaseTemplate{
		Code:           description,
		Type:           "standard",
		Description:    description,
		MilestoneID:    milestoneID,
		Order:          order,
		SLADays:        slaDays,
		WarningDays:    domain.DefaultWarningDays,
		EscalationDays: domain.DefaultEscalationDays,
	}
	require.NoError(t, db.Create(template).Error)
	return template
}

// CreateOpportunity inserts an opportunity whose code prefix selects the
// project type
func CreateOpportunity(t *testing.T, db *gorm.DB, code, customerName string) *domain.Opportunity {
	opportunity := &domain.Opportunity{
		Code:         code,
		Title:        "Opportunity " + code,
		CustomerName: customerName,
		Status:       1,
	}
	require.NoError(t, db.Create(opportunity).Error)
	return opportunity
}

// CreateTicket inserts a ticket in the given lifecycle status
func CreateTicket(t *testing.T, db *gorm.DB, code, customerName string, status domain.WorkStatus) *domain.Ticket {
	ticket := &domain.Ticket{
		Code:         code,
		Title:        "Ticket " + code,
		Status:       status,
		Priority:     2,
		CustomerName: customerName,
	}
	require.NoError(t, repository.NewTicketRepository(db).Create(context.Background(), ticket))
	return ticket
}

// CreateTask inserts a task under a ticket, due at the given instant
func CreateTask(t *testing.T, db *gorm.DB, ticketID uuid.UUID, title string, status domain.WorkStatus, dueDate *time.Time) *domain.Task {
	task := &domain.Task{
		TicketID:    ticketID,
		Title:       title,
		Description: title,
		Status:      status,
		Priority:    2,
		DueDate:     dueDate,
		Order:       1,
	}
	require.NoError(t, repository.NewTaskRepository(db).Create(context.Background(), task))
	return task
}
