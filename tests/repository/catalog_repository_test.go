package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func TestCatalogRepository_OwnerForServiceCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	ctx := context.Background()

	svc := testutil.CreateService(t, db, "F40", "Formazione 4.0", false)
	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "mario.rossi@test.local")
	require.NoError(t, db.Create(&domain.ServiceAssignment{
		ServiceID: svc.ID,
		OwnerID:   owner.ID,
	}).Error)

	resolved, err := repo.OwnerForServiceCode(ctx, "F40")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, owner.ID, resolved.ID)
	assert.Equal(t, "mario.rossi@test.local", resolved.Email)

	// No assignment resolves to nil without error
	testutil.CreateService(t, db, "PBX", "Patent Box", false)
	resolved, err = repo.OwnerForServiceCode(ctx, "PBX")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestCatalogRepository_FindPhaseTemplateByDescription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	ctx := context.Background()

	milestone := testutil.CreateMilestone(t, db, "F40", "Analisi", 1, 5)
	testutil.CreatePhaseTemplate(t, db, milestone.ID, "Raccolta documentazione", 1, 3)

	found, err := repo.FindPhaseTemplateByDescription(ctx, "Raccolta documentazione")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, milestone.ID, found.MilestoneID)

	found, err = repo.FindPhaseTemplateByDescription(ctx, "Inesistente")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCatalogRepository_ListPhaseTemplates_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	ctx := context.Background()

	milestone := testutil.CreateMilestone(t, db, "F40", "Analisi", 1, 5)
	other := testutil.CreateMilestone(t, db, "F40", "Esecuzione", 2, 5)
	testutil.CreatePhaseTemplate(t, db, milestone.ID, "Seconda fase", 2, 3)
	testutil.CreatePhaseTemplate(t, db, milestone.ID, "Prima fase", 1, 3)
	testutil.CreatePhaseTemplate(t, db, other.ID, "Fase di altro piano", 1, 3)

	templates, err := repo.ListPhaseTemplates(ctx, milestone.ID)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Prima fase", templates[0].Description)
	assert.Equal(t, "Seconda fase", templates[1].Description)
}

func TestCatalogRepository_GetServiceByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	ctx := context.Background()

	testutil.CreateService(t, db, "PBX", "Patent Box", false)

	found, err := repo.GetServiceByName(ctx, "Patent Box")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "PBX", found.Code)

	found, err = repo.GetServiceByName(ctx, "Inesistente")
	require.NoError(t, err)
	assert.Nil(t, found)
}
