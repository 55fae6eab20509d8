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

func newStatusService(db *gorm.DB) *service.StatusService {
	return service.NewStatusService(
		repository.NewTicketRepository(db),
		repository.NewTaskRepository(db),
		zap.NewNop(),
	)
}

func TestStatusService_TicketCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newStatusService(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTask(t, db, ticket.ID, "Fase 1", domain.WorkStatusClosed, nil)
	testutil.CreateTask(t, db, ticket.ID, "Fase 2", domain.WorkStatusClosed, nil)
	testutil.CreateTask(t, db, ticket.ID, "Fase 3", domain.WorkStatusOpen, nil)

	completion, err := svc.TicketCompletion(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, completion.Total)
	assert.Equal(t, 2, completion.Closed)
}

func TestStatusService_TicketCompletion_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newStatusService(db)

	_, err := svc.TicketCompletion(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStatusService_AutoCloseCompletedTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newStatusService(db)
	ctx := context.Background()

	// All tasks closed: eligible
	done := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTask(t, db, done.ID, "Fase 1", domain.WorkStatusClosed, nil)
	testutil.CreateTask(t, db, done.ID, "Fase 2", domain.WorkStatusClosed, nil)

	// One task still open: not eligible
	partial := testutil.CreateTicket(t, db, "TCK-F40-bbbb-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTask(t, db, partial.ID, "Fase 1", domain.WorkStatusClosed, nil)
	testutil.CreateTask(t, db, partial.ID, "Fase 2", domain.WorkStatusOpen, nil)

	// No tasks at all: never considered complete
	empty := testutil.CreateTicket(t, db, "TCK-F40-cccc-01", "ACME SPA", domain.WorkStatusOpen)

	result, err := svc.AutoCloseCompletedTickets(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Closed)
	require.Len(t, result.IDs, 1)
	assert.Equal(t, done.ID, result.IDs[0])

	var reloadedDone domain.Ticket
	require.NoError(t, db.First(&reloadedDone, "id = ?", done.ID).Error)
	assert.Equal(t, domain.WorkStatusClosed, reloadedDone.Status)

	var reloadedPartial domain.Ticket
	require.NoError(t, db.First(&reloadedPartial, "id = ?", partial.ID).Error)
	assert.Equal(t, domain.WorkStatusOpen, reloadedPartial.Status)

	var reloadedEmpty domain.Ticket
	require.NoError(t, db.First(&reloadedEmpty, "id = ?", empty.ID).Error)
	assert.Equal(t, domain.WorkStatusOpen, reloadedEmpty.Status)

	// A second pass changes nothing
	again, err := svc.AutoCloseCompletedTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Closed)
}

func TestStatusService_ListTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newStatusService(db)
	ctx := context.Background()

	testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	testutil.CreateTicket(t, db, "TCK-F40-bbbb-01", "ACME SPA", domain.WorkStatusClosed)
	testutil.CreateTicket(t, db, "TCK-PBX-cccc-01", "Beta SRL", domain.WorkStatusOpen)

	page, err := svc.ListTickets(ctx, domain.WorkStatusOpen, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.ListTickets(ctx, "", "ACME SPA", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.ListTickets(ctx, domain.WorkStatus("bogus"), "", 1, 20)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestStatusService_ListTicketTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newStatusService(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	first := testutil.CreateTask(t, db, ticket.ID, "Fase 1", domain.WorkStatusOpen, nil)
	second := testutil.CreateTask(t, db, ticket.ID, "Fase 2", domain.WorkStatusOpen, nil)
	require.NoError(t, db.Model(second).Update("sort_order", 2).Error)

	tasks, err := svc.ListTicketTasks(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)

	_, err = svc.ListTicketTasks(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
