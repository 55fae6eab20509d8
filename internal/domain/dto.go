package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list endpoints with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ServiceDTO is the API representation of a service line
type ServiceDTO struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	IsEngagement      bool      `json:"isEngagement"`
	LinkedServiceCode string    `json:"linkedServiceCode,omitempty"`
}

// MilestoneDTO is the API representation of a milestone
type MilestoneDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ProjectType    string    `json:"projectType"`
	Order          int       `json:"order"`
	SLADays        int       `json:"slaDays"`
	WarningDays    int       `json:"warningDays"`
	EscalationDays int       `json:"escalationDays"`
}

// PhaseTemplateDTO is the API representation of a phase template
type PhaseTemplateDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Code                string     `json:"code"`
	Type                string     `json:"type"`
	Description         string     `json:"description"`
	DetailedDescription string     `json:"detailedDescription,omitempty"`
	MilestoneID         uuid.UUID  `json:"milestoneId"`
	ParentID            *uuid.UUID `json:"parentId,omitempty"`
	Order               int        `json:"order"`
	SLADays             int        `json:"slaDays"`
	WarningDays         int        `json:"warningDays"`
	EscalationDays      int        `json:"escalationDays"`
}

// TicketDTO is the API representation of a ticket
type TicketDTO struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           WorkStatus `json:"status"`
	Priority         int        `json:"priority"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	OwnerID          *uuid.UUID `json:"ownerId,omitempty"`
	OwnerName        string     `json:"ownerName,omitempty"`
	Account          string     `json:"account,omitempty"`
	CustomerName     string     `json:"customerName,omitempty"`
	CompanyID        *uuid.UUID `json:"companyId,omitempty"`
	MilestoneID      *uuid.UUID `json:"milestoneId,omitempty"`
	OpportunityID    *uuid.UUID `json:"opportunityId,omitempty"`
	DetectedServices []string   `json:"detectedServices,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// TaskDTO is the API representation of a task
type TaskDTO struct {
	ID              uuid.UUID  `json:"id"`
	TicketID        uuid.UUID  `json:"ticketId"`
	PhaseTemplateID *uuid.UUID `json:"phaseTemplateId,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          WorkStatus `json:"status"`
	Priority        int        `json:"priority"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Order           int        `json:"order"`
	PredecessorID   *uuid.UUID `json:"predecessorId,omitempty"`
	OwnerID         *uuid.UUID `json:"ownerId,omitempty"`
	CustomerName    string     `json:"customerName,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// OpportunityDTO is the API representation of an opportunity
type OpportunityDTO struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	CustomerName string     `json:"customerName"`
	Description  string     `json:"description,omitempty"`
	Status       int        `json:"status"`
	Phase        int        `json:"phase"`
	Amount       float64    `json:"amount"`
	CloseDate    *time.Time `json:"closeDate,omitempty"`
	CRMID        int64      `json:"crmId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NotificationDTO is the API representation of a notification log entry
type NotificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	Kind      NotificationKind `json:"kind"`
	TicketID  *uuid.UUID       `json:"ticketId,omitempty"`
	TaskID    *uuid.UUID       `json:"taskId,omitempty"`
	Recipient string           `json:"recipient"`
	Subject   string           `json:"subject"`
	Delivered bool             `json:"delivered"`
	SentAt    *time.Time       `json:"sentAt,omitempty"`
}

// TicketCompletion reports how many tasks of a ticket are closed
type TicketCompletion struct {
	Total  int `json:"total"`
	Closed int `json:"closed"`
}

// EngagementSummary is the dashboard rollup over 24-month engagements
type EngagementSummary struct {
	Total        int `json:"total"`
	TotalPhases  int `json:"totalPhases"`
	ClosedPhases int `json:"closedPhases"`
}

// DashboardData is the aggregate payload backing the dashboard
type DashboardData struct {
	Engagements EngagementSummary   `json:"engagements"`
	Services    []ServiceCompletion `json:"services"`
}

// ServiceCompletion is a per-service dashboard rollup
type ServiceCompletion struct {
	ServiceCode  string `json:"serviceCode"`
	ServiceName  string `json:"serviceName"`
	TicketCount  int    `json:"ticketCount"`
	TotalPhases  int    `json:"totalPhases"`
	ClosedPhases int    `json:"closedPhases"`
}

// GenerateResult summarizes one workflow instantiation
type GenerateResult struct {
	Tickets   []TicketDTO `json:"tickets"`
	TaskCount int         `json:"taskCount"`
	Skipped   int         `json:"skipped"`
}

// SweepResult summarizes one SLA scan
type SweepResult struct {
	Checked   int       `json:"checked"`
	Sent      int       `json:"sent"`
	Timestamp time.Time `json:"timestamp"`
}

// AutoCloseResult reports tickets closed by the status aggregator
type AutoCloseResult struct {
	Closed int         `json:"closed"`
	IDs    []uuid.UUID `json:"ids"`
}

// CreateEngagementRequest triggers materialization of the standard
// 24-month engagement ticket from a CRM activity.
type CreateEngagementRequest struct {
	CRMActivityID int64  `json:"crmActivityId" validate:"required"`
	CustomerName  string `json:"customerName" validate:"required,max=200"`
	OwnerID       string `json:"ownerId" validate:"omitempty,uuid"`
	OwnerName     string `json:"ownerName" validate:"max=200"`
	Description   string `json:"description" validate:"max=2000"`
}

// CreateServiceRequest registers a catalog service line
type CreateServiceRequest struct {
	Code              string `json:"code" validate:"required,max=10"`
	Name              string `json:"name" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=2000"`
	IsEngagement      bool   `json:"isEngagement"`
	LinkedServiceCode string `json:"linkedServiceCode" validate:"max=10"`
}

// CreateMilestoneRequest adds a milestone to a project type's plan
type CreateMilestoneRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	ProjectType    string `json:"projectType" validate:"required,max=10"`
	Order          int    `json:"order" validate:"required,min=1"`
	SLADays        int    `json:"slaDays" validate:"min=0"`
	WarningDays    int    `json:"warningDays" validate:"min=0"`
	EscalationDays int    `json:"escalationDays" validate:"min=0"`
}

// CreatePhaseTemplateRequest adds a task blueprint to a milestone
type CreatePhaseTemplateRequest struct {
	Code                string `json:"code" validate:"max=50"`
	Type                string `json:"type" validate:"max=50"`
	Description         string `json:"description" validate:"required,max=500"`
	DetailedDescription string `json:"detailedDescription"`
	MilestoneID         string `json:"milestoneId" validate:"required,uuid"`
	Order               int    `json:"order" validate:"min=0"`
	SLADays             int    `json:"slaDays" validate:"min=0"`
	WarningDays         int    `json:"warningDays" validate:"min=0"`
	EscalationDays      int    `json:"escalationDays" validate:"min=0"`
}

// AssignServiceOwnerRequest maps a service line to its consultant
type AssignServiceOwnerRequest struct {
	OwnerID string `json:"ownerId" validate:"required,uuid"`
}

// UpdateTaskStatusRequest changes a task's lifecycle status
type UpdateTaskStatusRequest struct {
	Status WorkStatus `json:"status" validate:"required,oneof=open suspended closed"`
}
