package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/mapper"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// StatusService is the ticket status aggregator: completion rollups and
// the auto-close pass, the only path that closes a ticket.
type StatusService struct {
	ticketRepo *repository.TicketRepository
	taskRepo   *repository.TaskRepository
	logger     *zap.Logger
}

func NewStatusService(
	ticketRepo *repository.TicketRepository,
	taskRepo *repository.TaskRepository,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		ticketRepo: ticketRepo,
		taskRepo:   taskRepo,
		logger:     logger,
	}
}

func (s *StatusService) GetTicket(ctx context.Context, id uuid.UUID) (*domain.TicketDTO, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	dto := mapper.ToTicketDTO(ticket)
	return &dto, nil
}

func (s *StatusService) ListTickets(ctx context.Context, status domain.WorkStatus, customerName string, page, pageSize int) (*domain.PaginatedResponse, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	tickets, total, err := s.ticketRepo.ListWithFilters(ctx, status, customerName, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	dtos := make([]domain.TicketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = mapper.ToTicketDTO(&tickets[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListTicketTasks returns the tasks of a ticket in materialization order
func (s *StatusService) ListTicketTasks(ctx context.Context, ticketID uuid.UUID) ([]domain.TaskDTO, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	tasks, err := s.taskRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = mapper.ToTaskDTO(&tasks[i])
	}
	return dtos, nil
}

// TicketCompletion reports {total, closed} task counts for one ticket
func (s *StatusService) TicketCompletion(ctx context.Context, ticketID uuid.UUID) (*domain.TicketCompletion, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	total, closed, err := s.taskRepo.CountByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &domain.TicketCompletion{
		Total:  int(total),
		Closed: int(closed),
	}, nil
}

// AutoCloseCompletedTickets closes every ticket whose tasks all are
// closed. Tickets with zero tasks are never considered complete, and
// already-closed tickets are skipped, so a second run in a row changes
// nothing.
func (s *StatusService) AutoCloseCompletedTickets(ctx context.Context) (*domain.AutoCloseResult, error) {
	tickets, err := s.ticketRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	result := &domain.AutoCloseResult{}

	for i := range tickets {
		ticket := &tickets[i]
		if ticket.Status == domain.WorkStatusClosed {
			continue
		}

		total, closed, err := s.taskRepo.CountByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks for ticket %s: %w", ticket.Code, err)
		}
		if total == 0 || closed < total {
			continue
		}

		if err := s.ticketRepo.SetStatus(ctx, ticket.ID, domain.WorkStatusClosed); err != nil {
			return nil, fmt.Errorf("failed to close ticket %s: %w", ticket.Code, err)
		}

		s.logger.Info("ticket auto-closed",
			zap.String("ticket_code", ticket.Code),
			zap.Int64("tasks", total))

		result.Closed++
		result.IDs = append(result.IDs, ticket.ID)
	}

	return result, nil
}
