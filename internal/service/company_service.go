package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// CompanyService resolves customer names to company records. CRM data is
// messy, so exact lookup is followed by trigram similarity matching.
type CompanyService struct {
	companyRepo *repository.CompanyRepository
	metric      *metrics.SorensenDice
	logger      *zap.Logger
}

func NewCompanyService(companyRepo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	metric := metrics.NewSorensenDice()
	metric.CaseSensitive = false
	metric.NgramSize = 3

	return &CompanyService{
		companyRepo: companyRepo,
		metric:      metric,
		logger:      logger,
	}
}

// GetByID returns a single company
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

// ResolveByName finds the company for a customer name. Exact match
// (case-insensitive, trimmed) wins; otherwise the best similarity match
// at or above the acceptance threshold is used. No acceptable match
// returns ErrCompanyNotFound rather than a silent near-miss.
func (s *CompanyService) ResolveByName(ctx context.Context, customerName string) (*domain.Company, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, fmt.Errorf("%w: empty customer name", ErrInvalidInput)
	}

	company, err := s.companyRepo.GetByExactName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}
	if company != nil {
		return company, nil
	}

	candidates, err := s.companyRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	var best *domain.Company
	bestScore := 0.0
	for i := range candidates {
		score := strutil.Similarity(name, candidates[i].Name, s.metric)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < domain.CompanyMatchMinSimilarity {
		s.logger.Warn("no company match for customer name",
			zap.String("customer_name", name),
			zap.Float64("best_score", bestScore))
		return nil, ErrCompanyNotFound
	}

	s.logger.Info("fuzzy company match",
		zap.String("customer_name", name),
		zap.String("matched", best.Name),
		zap.Float64("score", bestScore))

	return best, nil
}

// Create registers a company
func (s *CompanyService) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	if strings.TrimSpace(company.Name) == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}
