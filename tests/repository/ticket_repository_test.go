package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func TestTicketRepository_GetByCode_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)

	ticket, err := repo.GetByCode(context.Background(), "TCK-F40-none-01")
	require.NoError(t, err)
	assert.Nil(t, ticket)

	ticket, err = repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestTicketRepository_ExistsByCodeAndCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)
	ctx := context.Background()

	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	exists, err := repo.ExistsByCodeAndCustomer(ctx, "TCK-F40-aaaa-01", "ACME SPA")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same code for another customer does not count
	exists, err = repo.ExistsByCodeAndCustomer(ctx, "TCK-F40-aaaa-01", "Other SRL")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByCodeAndCustomer(ctx, "TCK-F40-aaaa-02", "ACME SPA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTicketRepository_CountOpenByServiceCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)
	ctx := context.Background()

	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTicket(t, db, "TCK-F40-bbbb-01", "Other SRL", domain.WorkStatusClosed)
	testutil.CreateTicket(t, db, "TCK-PBX-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	count, err := repo.CountOpenByServiceCode(ctx, "F40")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "closed tickets and other services are excluded")

	count, err = repo.CountOpenByServiceCode(ctx, "T50")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTicketRepository_ListByCodePrefixAndCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)
	ctx := context.Background()

	testutil.CreateTicket(t, db, "TCK-I24-1111-00", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTicket(t, db, "TCK-I24-2222-00", "Other SRL", domain.WorkStatusOpen)
	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	tickets, err := repo.ListByCodePrefixAndCustomer(ctx, "TCK-I24", "ACME SPA")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "TCK-I24-1111-00", tickets[0].Code)
}

func TestTicketRepository_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	require.NoError(t, repo.SetStatus(ctx, ticket.ID, domain.WorkStatusClosed))

	reloaded, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, domain.WorkStatusClosed, reloaded.Status)
}

func TestTicketRepository_ListWithFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTicketRepository(db)
	ctx := context.Background()

	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTicket(t, db, "TCK-F40-bbbb-01", "ACME SPA", domain.WorkStatusClosed)
	testutil.CreateTicket(t, db, "TCK-PBX-cccc-01", "Other SRL", domain.WorkStatusOpen)

	tickets, total, err := repo.ListWithFilters(ctx, domain.WorkStatusOpen, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, tickets, 2)

	tickets, total, err = repo.ListWithFilters(ctx, "", "ACME SPA", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.ListWithFilters(ctx, "", "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
