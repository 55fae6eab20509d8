package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func newCatalogService(db *gorm.DB) *service.CatalogService {
	return service.NewCatalogService(
		repository.NewCatalogRepository(db),
		repository.NewTicketRepository(db),
		zap.NewNop(),
	)
}

func TestCatalogService_CreateService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, &domain.Service{Code: "f40", Name: "Formazione 4.0"})
	require.NoError(t, err)
	assert.Equal(t, "F40", created.Code, "codes are stored uppercase")

	_, err = svc.CreateService(ctx, &domain.Service{Code: "F40", Name: "Duplicate"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.CreateService(ctx, &domain.Service{Code: "", Name: "No code"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCatalogService_GetServiceByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	testutil.CreateService(t, db, "PBX", "Patent Box", false)

	found, err := svc.GetServiceByCode(ctx, " pbx ")
	require.NoError(t, err)
	assert.Equal(t, "Patent Box", found.Name)

	_, err = svc.GetServiceByCode(ctx, "ZZZ")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_DeleteService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	busy := testutil.CreateService(t, db, "F40", "Formazione 4.0", false)
	idle := testutil.CreateService(t, db, "PBX", "Patent Box", false)
	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	// Open tickets referencing the code block deletion
	err := svc.DeleteService(ctx, busy.ID)
	assert.ErrorIs(t, err, service.ErrServiceInUse)

	require.NoError(t, svc.DeleteService(ctx, idle.ID))

	err = svc.DeleteService(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_CreateMilestone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	created, err := svc.CreateMilestone(ctx, &domain.Milestone{
		Name:        "Analisi",
		ProjectType: "f40",
		Order:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "F40", created.ProjectType)
	assert.Equal(t, domain.DefaultMilestoneSLADays, created.SLADays, "missing SLA falls back to the default")

	_, err = svc.CreateMilestone(ctx, &domain.Milestone{Name: "", ProjectType: "F40"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCatalogService_ListMilestones_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	testutil.CreateMilestone(t, db, "F40", "Chiusura", 3, 5)
	testutil.CreateMilestone(t, db, "F40", "Analisi", 1, 5)
	testutil.CreateMilestone(t, db, "F40", "Esecuzione", 2, 5)
	testutil.CreateMilestone(t, db, "PBX", "Altro piano", 1, 5)

	milestones, err := svc.ListMilestones(ctx, "f40")
	require.NoError(t, err)
	require.Len(t, milestones, 3)
	assert.Equal(t, "Analisi", milestones[0].Name)
	assert.Equal(t, "Esecuzione", milestones[1].Name)
	assert.Equal(t, "Chiusura", milestones[2].Name)
}

func TestCatalogService_CreatePhaseTemplate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	milestone := testutil.CreateMilestone(t, db, "F40", "Analisi", 1, 5)

	created, err := svc.CreatePhaseTemplate(ctx, &domain.PhaseTemplate{
		Description: "Raccolta documentazione",
		MilestoneID: milestone.ID,
		Order:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTaskSLADays, created.SLADays)

	_, err = svc.CreatePhaseTemplate(ctx, &domain.PhaseTemplate{MilestoneID: milestone.ID})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCatalogService_AssignServiceOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	testutil.CreateService(t, db, "F40", "Formazione 4.0", false)
	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "mario.rossi@test.local")

	require.NoError(t, svc.AssignServiceOwner(ctx, "f40", owner.ID))

	resolved, err := repository.NewCatalogRepository(db).OwnerForServiceCode(ctx, "F40")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, owner.ID, resolved.ID)

	err = svc.AssignServiceOwner(ctx, "ZZZ", owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
