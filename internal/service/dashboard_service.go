package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService computes the progress rollups backing the dashboard:
// engagement totals and per-service phase completion.
type DashboardService struct {
	ticketRepo  *repository.TicketRepository
	taskRepo    *repository.TaskRepository
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

func NewDashboardService(
	ticketRepo *repository.TicketRepository,
	taskRepo *repository.TaskRepository,
	catalogRepo *repository.CatalogRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		ticketRepo:  ticketRepo,
		taskRepo:    taskRepo,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// ProgressData builds the full dashboard payload in one pass over the
// ticket table
func (s *DashboardService) ProgressData(ctx context.Context) (*domain.DashboardData, error) {
	tickets, err := s.ticketRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	services, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	data := &domain.DashboardData{}
	rollups := make(map[string]*domain.ServiceCompletion)

	for i := range services {
		if services[i].IsEngagement {
			continue
		}
		rollups[services[i].Code] = &domain.ServiceCompletion{
			ServiceCode: services[i].Code,
			ServiceName: services[i].Name,
		}
	}

	for i := range tickets {
		ticket := &tickets[i]

		total, closed, err := s.taskRepo.CountByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks for ticket %s: %w", ticket.Code, err)
		}

		if strings.HasPrefix(ticket.Code, engagementCodePrefix) {
			data.Engagements.Total++
			data.Engagements.TotalPhases += int(total)
			data.Engagements.ClosedPhases += int(closed)
			continue
		}

		code := serviceCodeOf(ticket.Code)
		rollup, ok := rollups[code]
		if !ok {
			// Ticket for a service since removed from the catalog
			rollup = &domain.ServiceCompletion{ServiceCode: code, ServiceName: code}
			rollups[code] = rollup
		}
		rollup.TicketCount++
		rollup.TotalPhases += int(total)
		rollup.ClosedPhases += int(closed)
	}

	for _, rollup := range rollups {
		data.Services = append(data.Services, *rollup)
	}
	sort.Slice(data.Services, func(i, j int) bool {
		return data.Services[i].ServiceCode < data.Services[j].ServiceCode
	})

	return data, nil
}

// serviceCodeOf extracts the service segment of a ticket code
// (TCK-<SVC>-<suffix>-<NN>)
func serviceCodeOf(ticketCode string) string {
	parts := strings.Split(ticketCode, "-")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ticketCode
}
