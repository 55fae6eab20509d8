package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a uuid when the database does not (sqlite in tests)
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// WorkStatus is the shared lifecycle status for tickets and tasks.
// It replaces the legacy split between integer ticket states (0/1/2) and
// the Italian string statuses ("aperto"/"chiuso") carried over from the CRM.
type WorkStatus string

const (
	WorkStatusOpen      WorkStatus = "open"
	WorkStatusSuspended WorkStatus = "suspended"
	WorkStatusClosed    WorkStatus = "closed"
)

// IsValid checks if the WorkStatus is a valid enum value
func (ws WorkStatus) IsValid() bool {
	switch ws {
	case WorkStatusOpen, WorkStatusSuspended, WorkStatusClosed:
		return true
	}
	return false
}

// SLAState classifies deadline risk for an open task. It is computed by
// the SLA scanner from due dates and template thresholds, never persisted.
type SLAState string

const (
	SLAStateOnTrack SLAState = "on_track"
	SLAStateWarning SLAState = "warning"
	SLAStateOverdue SLAState = "overdue"
)

// Default SLA thresholds applied when a task cannot be traced back to a
// phase template.
const (
	DefaultTaskSLADays      = 3
	DefaultMilestoneSLADays = 5
	DefaultWarningDays      = 2
	DefaultEscalationDays   = 3
	WarningLookaheadDays    = 2
)

// CompanyMatchMinSimilarity is the acceptance threshold for fuzzy company
// name matching. Matches scoring below it are rejected, not silently used.
const CompanyMatchMinSimilarity = 0.4

// Service represents a product or service line offered by the consultancy
// (known as "sub type" in the CRM). The code is the short project-type
// identifier milestones are keyed on, e.g. "F40", "KHW", "T50".
type Service struct {
	BaseModel
	Code              string `gorm:"type:varchar(10);not null;uniqueIndex"`
	Name              string `gorm:"type:varchar(200);not null"`
	Description       string `gorm:"type:text"`
	IsEngagement      bool   `gorm:"not null;default:false;column:is_engagement"`
	LinkedServiceCode string `gorm:"type:varchar(10);column:linked_service_code"`
}

// ServiceAssignment maps a service to the consultant responsible for it.
// The workflow instantiator uses it to pick ticket owners dynamically.
type ServiceAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index;column:service_id"`
	Service   *Service  `gorm:"foreignKey:ServiceID"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;column:owner_id"`
	Owner     *Owner    `gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a uuid when the database does not
func (sa *ServiceAssignment) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	return nil
}

// Milestone is an ordered phase of a project type. One ticket is
// materialized per milestone when a workflow is instantiated.
type Milestone struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null"`
	ProjectType    string `gorm:"type:varchar(10);not null;index;column:project_type"`
	Order          int    `gorm:"not null;column:sort_order"`
	SLADays        int    `gorm:"not null;default:5;column:sla_days"`
	WarningDays    int    `gorm:"not null;default:2;column:warning_days"`
	EscalationDays int    `gorm:"not null;default:3;column:escalation_days"`
}

// PhaseTemplate is a task blueprint within a milestone. Materialized tasks
// inherit description, ordering and SLA thresholds from it.
type PhaseTemplate struct {
	BaseModel
	Code                string         `gorm:"type:varchar(50);not null"`
	Type                string         `gorm:"type:varchar(50);not null"`
	Description         string         `gorm:"type:varchar(500);not null"`
	DetailedDescription string         `gorm:"type:text;column:detailed_description"`
	MilestoneID         uuid.UUID      `gorm:"type:uuid;not null;index;column:milestone_id"`
	Milestone           *Milestone     `gorm:"foreignKey:MilestoneID"`
	ParentID            *uuid.UUID     `gorm:"type:uuid;column:parent_id"`
	Parent              *PhaseTemplate `gorm:"foreignKey:ParentID"`
	Order               int            `gorm:"not null;column:sort_order"`
	SLADays             int            `gorm:"not null;default:3;column:sla_days"`
	WarningDays         int            `gorm:"not null;default:2;column:warning_days"`
	EscalationDays      int            `gorm:"not null;default:1;column:escalation_days"`
}

// DetailSeparator joins a template description with its detailed
// description in materialized task descriptions. Kept byte-identical to
// the historical value because existing task rows embed it.
const DetailSeparator = " --- DETTAGLI: "

// TaskDescription builds the full description for a task materialized
// from this template.
func (pt *PhaseTemplate) TaskDescription() string {
	if pt.DetailedDescription == "" {
		return pt.Description
	}
	return pt.Description + DetailSeparator + pt.DetailedDescription
}

// Company represents a customer organization, loosely synced from the CRM
type Company struct {
	BaseModel
	Name      string `gorm:"type:varchar(200);not null;index"`
	VATNumber string `gorm:"type:varchar(20);column:vat_number"`
	Address   string `gorm:"type:varchar(500)"`
	Sector    string `gorm:"type:varchar(100)"`
	CRMID     int64  `gorm:"column:crm_id;index"`
}

// Owner is a consultant in the user directory
type Owner struct {
	BaseModel
	Name    string `gorm:"type:varchar(100);not null"`
	Surname string `gorm:"type:varchar(100)"`
	Email   string `gorm:"type:varchar(255);uniqueIndex"`
	CRMID   int64  `gorm:"column:crm_id;index"`
}

// FullName returns the owner's display name
func (o *Owner) FullName() string {
	return strings.TrimSpace(o.Name + " " + o.Surname)
}

// Opportunity is a sales opportunity mirrored against the CRM. Its code
// carries the project-type prefix the instantiator resolves milestones by,
// e.g. "F40-3fa8".
type Opportunity struct {
	BaseModel
	Code          string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Title         string     `gorm:"type:varchar(200);not null"`
	CustomerName  string     `gorm:"type:varchar(200);not null;index;column:customer_name"`
	CompanyID     *uuid.UUID `gorm:"type:uuid;column:company_id"`
	Company       *Company   `gorm:"foreignKey:CompanyID"`
	Description   string     `gorm:"type:text"`
	Status        int        `gorm:"not null;default:1"`
	Phase         int        `gorm:"not null;default:0"`
	Category      int        `gorm:"not null;default:0"`
	Amount        float64    `gorm:"type:decimal(15,2);not null;default:0"`
	CloseDate     *time.Time `gorm:"type:date;column:close_date"`
	OwnerID       *uuid.UUID `gorm:"type:uuid;column:owner_id"`
	Owner         *Owner     `gorm:"foreignKey:OwnerID"`
	SalesPersonID *uuid.UUID `gorm:"type:uuid;column:sales_person_id"`
	SalesPerson   *Owner     `gorm:"foreignKey:SalesPersonID"`
	CRMID         int64      `gorm:"column:crm_id;index"`
}

// ProjectType returns the service code prefix of the opportunity code
// (the part before the first dash), or the whole code when there is none.
func (o *Opportunity) ProjectType() string {
	if i := strings.Index(o.Code, "-"); i > 0 {
		return o.Code[:i]
	}
	return o.Code
}

// Ticket is a materialized workflow instance for one milestone against one
// customer. Code pattern: TCK-<ServiceCode>-<suffix>-<NN>.
type Ticket struct {
	BaseModel
	Code             string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Title            string       `gorm:"type:varchar(200);not null"`
	Description      string       `gorm:"type:text"`
	Status           WorkStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	Priority         int          `gorm:"not null;default:2"`
	DueDate          *time.Time   `gorm:"column:due_date"`
	OwnerID          *uuid.UUID   `gorm:"type:uuid;column:owner_id"`
	Owner            *Owner       `gorm:"foreignKey:OwnerID"`
	OwnerName        string       `gorm:"type:varchar(200);column:owner_name"`
	Account          string       `gorm:"type:varchar(200)"`
	CustomerName     string       `gorm:"type:varchar(200);index;column:customer_name"`
	CompanyID        *uuid.UUID   `gorm:"type:uuid;column:company_id"`
	Company          *Company     `gorm:"foreignKey:CompanyID"`
	MilestoneID      *uuid.UUID   `gorm:"type:uuid;column:milestone_id"`
	Milestone        *Milestone   `gorm:"foreignKey:MilestoneID"`
	OpportunityID    *uuid.UUID   `gorm:"type:uuid;column:opportunity_id"`
	Opportunity      *Opportunity `gorm:"foreignKey:OpportunityID"`
	CRMActivityID    int64        `gorm:"column:crm_activity_id"`
	DetectedServices []string     `gorm:"serializer:json;column:detected_services"`
	Tasks            []Task       `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

// ShortID returns the 4-char uuid fragment embedded in generated codes
func ShortID(id uuid.UUID) string {
	s := strings.ReplaceAll(id.String(), "-", "")
	if len(s) < 4 {
		return s
	}
	return s[:4]
}

// Task is a materialized unit of work from one phase template.
// The phase template reference is captured at creation time so SLA
// thresholds can be resolved without joining on description text.
type Task struct {
	BaseModel
	TicketID        uuid.UUID      `gorm:"type:uuid;not null;index;column:ticket_id"`
	Ticket          *Ticket        `gorm:"foreignKey:TicketID"`
	PhaseTemplateID *uuid.UUID     `gorm:"type:uuid;index;column:phase_template_id"`
	PhaseTemplate   *PhaseTemplate `gorm:"foreignKey:PhaseTemplateID"`
	MilestoneID     *uuid.UUID     `gorm:"type:uuid;column:milestone_id"`
	Title           string         `gorm:"type:varchar(200);not null"`
	Description     string         `gorm:"type:text"`
	Status          WorkStatus     `gorm:"type:varchar(20);not null;default:'open';index"`
	Priority        int            `gorm:"not null;default:2"`
	DueDate         *time.Time     `gorm:"index;column:due_date"`
	Order           int            `gorm:"not null;default:1;column:sort_order"`
	PredecessorID   *uuid.UUID     `gorm:"type:uuid;column:predecessor_id"`
	ParentID        *uuid.UUID     `gorm:"type:uuid;column:parent_id"`
	OwnerID         *uuid.UUID     `gorm:"type:uuid;column:owner_id"`
	Owner           *Owner         `gorm:"foreignKey:OwnerID"`
	CustomerName    string         `gorm:"type:varchar(200);column:customer_name"`
	ClosedAt        *time.Time     `gorm:"column:closed_at"`
	LastWarnedAt    *time.Time     `gorm:"column:last_warned_at"`
	LastEscalatedAt *time.Time     `gorm:"column:last_escalated_at"`
}

// BaseDescription strips the detailed-description suffix, leaving the
// template description the task was materialized from. Needed for legacy
// rows created before the phase template FK existed.
func (t *Task) BaseDescription() string {
	if i := strings.Index(t.Description, DetailSeparator); i >= 0 {
		return t.Description[:i]
	}
	return t.Description
}

// CRMLink records the remote CRM objects mirrored for a local ticket.
// Mirroring is best-effort, so a ticket may have no link at all.
type CRMLink struct {
	BaseModel
	TicketID         uuid.UUID `gorm:"type:uuid;not null;index;column:ticket_id"`
	Ticket           *Ticket   `gorm:"foreignKey:TicketID"`
	CRMOpportunityID int64     `gorm:"column:crm_opportunity_id"`
	CRMActivityID    int64     `gorm:"column:crm_activity_id"`
	CRMCompanyID     int64     `gorm:"column:crm_company_id"`
}

// TableName overrides the default table name
func (CRMLink) TableName() string {
	return "crm_links"
}

// NotificationKind distinguishes the outbound notification types
type NotificationKind string

const (
	NotificationKindTicketAssigned NotificationKind = "ticket_assigned"
	NotificationKindSLAWarning     NotificationKind = "sla_warning"
	NotificationKindSLAEscalation  NotificationKind = "sla_escalation"
)

// Notification is a log entry for an outbound email notification
type Notification struct {
	BaseModel
	Kind       NotificationKind `gorm:"type:varchar(50);not null;index"`
	TicketID   *uuid.UUID       `gorm:"type:uuid;index;column:ticket_id"`
	TaskID     *uuid.UUID       `gorm:"type:uuid;index;column:task_id"`
	Recipient  string           `gorm:"type:varchar(255);not null"`
	Subject    string           `gorm:"type:varchar(500);not null"`
	Delivered  bool             `gorm:"not null;default:false"`
	SentAt     *time.Time       `gorm:"column:sent_at"`
	FailReason string           `gorm:"type:varchar(500);column:fail_reason"`
}
