package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func newCompanyService(db *gorm.DB) *service.CompanyService {
	return service.NewCompanyService(repository.NewCompanyRepository(db), zap.NewNop())
}

func TestCompanyService_ResolveByName_Exact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCompanyService(db)
	ctx := context.Background()

	company := testutil.CreateCompany(t, db, "ACME SPA")
	testutil.CreateCompany(t, db, "Beta SRL")

	resolved, err := svc.ResolveByName(ctx, "ACME SPA")
	require.NoError(t, err)
	assert.Equal(t, company.ID, resolved.ID)

	// Exact matching ignores case and surrounding whitespace
	resolved, err = svc.ResolveByName(ctx, "  acme spa  ")
	require.NoError(t, err)
	assert.Equal(t, company.ID, resolved.ID)
}

func TestCompanyService_ResolveByName_Fuzzy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCompanyService(db)
	ctx := context.Background()

	company := testutil.CreateCompany(t, db, "ACME SPA INDUSTRIES")
	testutil.CreateCompany(t, db, "Beta SRL")

	// CRM free text often carries a shortened company name
	resolved, err := svc.ResolveByName(ctx, "ACME SPA")
	require.NoError(t, err)
	assert.Equal(t, company.ID, resolved.ID)
}

func TestCompanyService_ResolveByName_BelowThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCompanyService(db)
	ctx := context.Background()

	testutil.CreateCompany(t, db, "ACME SPA")

	// A weak match is rejected, never silently used
	_, err := svc.ResolveByName(ctx, "Rossi Consulting Group")
	assert.ErrorIs(t, err, service.ErrCompanyNotFound)
}

func TestCompanyService_ResolveByName_EmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCompanyService(db)

	_, err := svc.ResolveByName(context.Background(), "   ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCompanyService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCompanyService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.Company{Name: "Gamma SRL"})
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID.String())

	_, err = svc.Create(ctx, &domain.Company{Name: ""})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
