// Package mapper converts persistence entities into API DTOs.
package mapper

import (
	"github.com/enduser-digital/intelligence-api/internal/domain"
)

func ToServiceDTO(s *domain.Service) domain.ServiceDTO {
	return domain.ServiceDTO{
		ID:                s.ID,
		Code:              s.Code,
		Name:              s.Name,
		Description:       s.Description,
		IsEngagement:      s.IsEngagement,
		LinkedServiceCode: s.LinkedServiceCode,
	}
}

func ToMilestoneDTO(m *domain.Milestone) domain.MilestoneDTO {
	return domain.MilestoneDTO{
		ID:             m.ID,
		Name:           m.Name,
		ProjectType:    m.ProjectType,
		Order:          m.Order,
		SLADays:        m.SLADays,
		WarningDays:    m.WarningDays,
		EscalationDays: m.EscalationDays,
	}
}

func ToPhaseTemplateDTO(t *domain.PhaseTemplate) domain.PhaseTemplateDTO {
	return domain.PhaseTemplateDTO{
		ID:                  t.ID,
		Code:                t.Code,
		Type:                t.Type,
		Description:         t.Description,
		DetailedDescription: t.DetailedDescription,
		MilestoneID:         t.MilestoneID,
		ParentID:            t.ParentID,
		Order:               t.Order,
		SLADays:             t.SLADays,
		WarningDays:         t.WarningDays,
		EscalationDays:      t.EscalationDays,
	}
}

func ToTicketDTO(t *domain.Ticket) domain.TicketDTO {
	return domain.TicketDTO{
		ID:               t.ID,
		Code:             t.Code,
		Title:            t.Title,
		Description:      t.Description,
		Status:           t.Status,
		Priority:         t.Priority,
		DueDate:          t.DueDate,
		OwnerID:          t.OwnerID,
		OwnerName:        t.OwnerName,
		Account:          t.Account,
		CustomerName:     t.CustomerName,
		CompanyID:        t.CompanyID,
		MilestoneID:      t.MilestoneID,
		OpportunityID:    t.OpportunityID,
		DetectedServices: t.DetectedServices,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func ToTaskDTO(t *domain.Task) domain.TaskDTO {
	return domain.TaskDTO{
		ID:              t.ID,
		TicketID:        t.TicketID,
		PhaseTemplateID: t.PhaseTemplateID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		DueDate:         t.DueDate,
		Order:           t.Order,
		PredecessorID:   t.PredecessorID,
		OwnerID:         t.OwnerID,
		CustomerName:    t.CustomerName,
		ClosedAt:        t.ClosedAt,
		CreatedAt:       t.CreatedAt,
	}
}

func ToOpportunityDTO(o *domain.Opportunity) domain.OpportunityDTO {
	return domain.OpportunityDTO{
		ID:           o.ID,
		Code:         o.Code,
		Title:        o.Title,
		CustomerName: o.CustomerName,
		Description:  o.Description,
		Status:       o.Status,
		Phase:        o.Phase,
		Amount:       o.Amount,
		CloseDate:    o.CloseDate,
		CRMID:        o.CRMID,
		CreatedAt:    o.CreatedAt,
	}
}

func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		Kind:      n.Kind,
		TicketID:  n.TicketID,
		TaskID:    n.TaskID,
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Delivered: n.Delivered,
		SentAt:    n.SentAt,
	}
}
